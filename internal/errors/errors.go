// Package errors 定义应用程序统一的错误类型和错误码
// 所有内部错误在服务层被翻译为此处的错误分类后才能跨越HTTP边界
package errors

import (
	"fmt"

	"github.com/weiwangfds/filevault/internal/i18n"
)

// ErrorCode 错误码类型
type ErrorCode int

// 定义错误码常量
const (
	// 通用错误码 (1000-1999)
	ErrSuccess         ErrorCode = 0    // 成功
	ErrInternalServer  ErrorCode = 1000 // 服务器内部错误
	ErrInvalidParams   ErrorCode = 1001 // 参数错误
	ErrUnauthorized    ErrorCode = 1002 // 未授权
	ErrForbidden       ErrorCode = 1003 // 禁止访问
	ErrNotFound        ErrorCode = 1004 // 资源未找到
	ErrTooManyRequests ErrorCode = 1006 // 请求过于频繁

	// 文件相关错误码 (2000-2999)
	// 能力凭证不匹配、所有权不匹配和记录不存在统一返回ErrFileNotFoundOrDenied，
	// 对外不区分根因，避免暴露文件是否存在
	ErrFileNotFoundOrDenied ErrorCode = 2000 // 文件不存在或无权访问
	ErrFileUploadFailed     ErrorCode = 2002 // 文件上传失败
	ErrFileDeleteFailed     ErrorCode = 2003 // 文件删除失败
	ErrFileSizeTooLarge     ErrorCode = 2006 // 文件大小超限
	ErrFileTypeNotAllowed   ErrorCode = 2007 // 文件类型不允许
	ErrQuotaExceeded        ErrorCode = 2010 // 配额用尽（预留，当前不强制）

	// 对象存储相关错误码 (3000-3999)
	ErrStoragePutFailed    ErrorCode = 3000 // 对象写入失败
	ErrStorageURLFailed    ErrorCode = 3001 // 下载链接生成失败
	ErrStorageDeleteFailed ErrorCode = 3002 // 对象删除失败
	ErrStorageNotSupported ErrorCode = 3008 // 存储提供商不支持

	// 数据库相关错误码 (4000-4999)
	ErrDatabaseQuery  ErrorCode = 4001 // 数据库查询错误
	ErrDatabaseInsert ErrorCode = 4002 // 数据库插入错误
	ErrDatabaseDelete ErrorCode = 4004 // 数据库删除错误

	// 用户相关错误码 (5000-5999)
	ErrUserAlreadyExists  ErrorCode = 5000 // 用户已存在
	ErrInvalidCredentials ErrorCode = 5001 // 凭证无效
	ErrEmailNotVerified   ErrorCode = 5002 // 邮箱未验证
)

// AppError 应用错误结构体
// @Description 应用程序统一错误格式
type AppError struct {
	// 错误码
	Code ErrorCode `json:"code"`
	// 错误消息（对客户端安全）
	Message string `json:"message"`
	// 详细错误信息（仅用于日志，不返回给客户端）
	Details string `json:"-"`
	// 原始错误
	OriginalError error `json:"-"`
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// WithDetails 添加详细错误信息
func (e *AppError) WithDetails(details string) *AppError {
	return &AppError{
		Code:          e.Code,
		Message:       e.Message,
		Details:       details,
		OriginalError: e.OriginalError,
	}
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装原始错误
// 原始错误信息进入Details字段，仅出现在日志中
func Wrap(code ErrorCode, message string, err error) *AppError {
	appErr := &AppError{
		Code:          code,
		Message:       message,
		OriginalError: err,
	}
	if err != nil {
		appErr.Details = err.Error()
	}
	return appErr
}

// IsAppError 判断是否为应用错误
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetAppError 获取应用错误
func GetAppError(err error) (*AppError, bool) {
	appErr, ok := err.(*AppError)
	return appErr, ok
}

// IsCode 判断错误是否属于指定错误码
func IsCode(err error, code ErrorCode) bool {
	appErr, ok := GetAppError(err)
	return ok && appErr.Code == code
}

// 预定义的常用错误
var (
	// 通用错误
	ErrInternalServerError = New(ErrInternalServer, GetErrorMessage(ErrInternalServer))
	ErrInvalidParameters   = New(ErrInvalidParams, GetErrorMessage(ErrInvalidParams))
	ErrUnauthorizedAccess  = New(ErrUnauthorized, GetErrorMessage(ErrUnauthorized))

	// 文件相关错误
	ErrFileNotFoundOrDeniedError = New(ErrFileNotFoundOrDenied, GetErrorMessage(ErrFileNotFoundOrDenied))
	ErrFileUploadFailedError     = New(ErrFileUploadFailed, GetErrorMessage(ErrFileUploadFailed))
	ErrFileDeleteFailedError     = New(ErrFileDeleteFailed, GetErrorMessage(ErrFileDeleteFailed))
	ErrFileSizeTooLargeError     = New(ErrFileSizeTooLarge, GetErrorMessage(ErrFileSizeTooLarge))
	ErrFileTypeNotAllowedError   = New(ErrFileTypeNotAllowed, GetErrorMessage(ErrFileTypeNotAllowed))

	// 对象存储相关错误
	ErrStoragePutFailedError    = New(ErrStoragePutFailed, GetErrorMessage(ErrStoragePutFailed))
	ErrStorageURLFailedError    = New(ErrStorageURLFailed, GetErrorMessage(ErrStorageURLFailed))
	ErrStorageDeleteFailedError = New(ErrStorageDeleteFailed, GetErrorMessage(ErrStorageDeleteFailed))
	ErrStorageNotSupportedError = New(ErrStorageNotSupported, GetErrorMessage(ErrStorageNotSupported))

	// 用户相关错误
	ErrUserAlreadyExistsError  = New(ErrUserAlreadyExists, GetErrorMessage(ErrUserAlreadyExists))
	ErrInvalidCredentialsError = New(ErrInvalidCredentials, GetErrorMessage(ErrInvalidCredentials))
)

// 错误码到i18n键的映射
var errorCodeToKeyMap = map[ErrorCode]string{
	ErrSuccess:         "success",
	ErrInternalServer:  "internal_server_error",
	ErrInvalidParams:   "invalid_params",
	ErrUnauthorized:    "unauthorized",
	ErrForbidden:       "forbidden",
	ErrNotFound:        "not_found",
	ErrTooManyRequests: "too_many_requests",

	ErrFileNotFoundOrDenied: "file_not_found_or_denied",
	ErrFileUploadFailed:     "file_upload_failed",
	ErrFileDeleteFailed:     "file_delete_failed",
	ErrFileSizeTooLarge:     "file_size_too_large",
	ErrFileTypeNotAllowed:   "file_type_not_allowed",
	ErrQuotaExceeded:        "quota_exceeded",

	ErrStoragePutFailed:    "storage_put_failed",
	ErrStorageURLFailed:    "storage_url_failed",
	ErrStorageDeleteFailed: "storage_delete_failed",
	ErrStorageNotSupported: "storage_not_supported",

	ErrDatabaseQuery:  "database_query",
	ErrDatabaseInsert: "database_insert",
	ErrDatabaseDelete: "database_delete",

	ErrUserAlreadyExists:  "user_already_exists",
	ErrInvalidCredentials: "invalid_credentials",
	ErrEmailNotVerified:   "email_not_verified",
}

// GetErrorMessage 根据错误码获取错误消息（使用默认语言）
func GetErrorMessage(code ErrorCode) string {
	return GetErrorMessageWithLang(code, i18n.GetInstance().GetDefaultLanguage())
}

// GetErrorMessageWithLang 根据错误码和语言获取错误消息
func GetErrorMessageWithLang(code ErrorCode, lang string) string {
	key, exists := errorCodeToKeyMap[code]
	if !exists {
		key = "unknown_error"
	}
	return i18n.GetInstance().Translate(key, lang)
}
