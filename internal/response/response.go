// Package response 定义统一的HTTP响应格式和辅助函数
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weiwangfds/filevault/internal/errors"
	"github.com/weiwangfds/filevault/internal/i18n"
)

// Response 统一响应结构体
// @Description 统一API响应格式
type Response struct {
	// 请求是否成功
	Success bool `json:"success"`
	// 响应消息
	Message string `json:"message"`
	// 响应数据
	Data interface{} `json:"data,omitempty"`
}

// getLanguage 从请求头获取语言偏好
func getLanguage(c *gin.Context) string {
	lang := c.GetHeader("Accept-Language")
	if !i18n.GetInstance().IsSupportedLanguage(lang) {
		return i18n.GetInstance().GetDefaultLanguage()
	}
	return lang
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: i18n.GetInstance().Translate("success", getLanguage(c)),
		Data:    data,
	})
}

// SuccessWithMessage 带自定义消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created 资源创建成功响应
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error 错误响应
// 根据应用错误码映射HTTP状态码，非应用错误统一按内部错误处理
func Error(c *gin.Context, err error) {
	lang := getLanguage(c)

	if appErr, ok := errors.GetAppError(err); ok {
		c.JSON(httpStatusFromCode(appErr.Code), Response{
			Success: false,
			Message: errors.GetErrorMessageWithLang(appErr.Code, lang),
		})
		return
	}

	c.JSON(http.StatusInternalServerError, Response{
		Success: false,
		Message: errors.GetErrorMessageWithLang(errors.ErrInternalServer, lang),
	})
}

// ErrorWithMessage 带自定义消息的错误响应
func ErrorWithMessage(c *gin.Context, status int, message string) {
	c.JSON(status, Response{
		Success: false,
		Message: message,
	})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = errors.GetErrorMessageWithLang(errors.ErrInvalidParams, getLanguage(c))
	}
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Message: message,
	})
}

// Unauthorized 未授权响应
func Unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, Response{
		Success: false,
		Message: errors.GetErrorMessageWithLang(errors.ErrUnauthorized, getLanguage(c)),
	})
}

// NotFound 资源未找到响应
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = errors.GetErrorMessageWithLang(errors.ErrNotFound, getLanguage(c))
	}
	c.JSON(http.StatusNotFound, Response{
		Success: false,
		Message: message,
	})
}

// TooManyRequests 请求过于频繁响应
func TooManyRequests(c *gin.Context) {
	c.JSON(http.StatusTooManyRequests, Response{
		Success: false,
		Message: errors.GetErrorMessageWithLang(errors.ErrTooManyRequests, getLanguage(c)),
	})
}

// InternalServerError 服务器内部错误响应
func InternalServerError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, Response{
		Success: false,
		Message: errors.GetErrorMessageWithLang(errors.ErrInternalServer, getLanguage(c)),
	})
}

// httpStatusFromCode 错误码到HTTP状态码的映射
func httpStatusFromCode(code errors.ErrorCode) int {
	switch code {
	case errors.ErrInvalidParams, errors.ErrFileSizeTooLarge, errors.ErrFileTypeNotAllowed:
		return http.StatusBadRequest
	case errors.ErrUnauthorized, errors.ErrInvalidCredentials:
		return http.StatusUnauthorized
	case errors.ErrForbidden, errors.ErrEmailNotVerified:
		return http.StatusForbidden
	case errors.ErrNotFound, errors.ErrFileNotFoundOrDenied:
		return http.StatusNotFound
	case errors.ErrUserAlreadyExists:
		return http.StatusConflict
	case errors.ErrQuotaExceeded:
		return http.StatusRequestEntityTooLarge
	case errors.ErrTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
