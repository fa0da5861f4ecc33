package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/weiwangfds/filevault/internal/logger"
	"github.com/weiwangfds/filevault/internal/response"
	authservice "github.com/weiwangfds/filevault/internal/service/auth"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	authService authservice.AuthService
}

// NewAuthHandler 创建认证处理器实例
func NewAuthHandler(authService authservice.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// registerRequest 注册请求体
type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// loginRequest 登录请求体
type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register 用户注册
// @Summary 注册新用户
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body registerRequest true "注册信息"
// @Success 201 {object} response.Response "注册成功"
// @Failure 400 {object} response.Response "参数错误"
// @Failure 409 {object} response.Response "邮箱已被注册"
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "name, email and password are required")
		return
	}

	result, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	// 邮件投递不在服务范围内：调试模式下直接返回验证令牌，其余模式仅记录日志
	data := gin.H{"user": result.User}
	if gin.Mode() == gin.DebugMode {
		data["verification_token"] = result.VerificationToken
	} else {
		logger.Infof("Verification token issued for user %d", result.User.ID)
	}

	response.Created(c, "User registered successfully", data)
}

// Login 用户登录
// @Summary 用户登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body loginRequest true "登录凭证"
// @Success 200 {object} response.Response "JWT令牌和用户信息"
// @Failure 401 {object} response.Response "凭证无效"
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email and password are required")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// VerifyEmail 邮箱验证
// @Summary 通过验证令牌标记邮箱已验证
// @Tags 认证
// @Produce json
// @Param token query string true "验证令牌"
// @Success 200 {object} response.Response "验证成功"
// @Failure 400 {object} response.Response "令牌无效"
// @Router /api/v1/auth/verify-email [get]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	if err := h.authService.VerifyEmail(c.Request.Context(), c.Query("token")); err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, "Email verified successfully", nil)
}
