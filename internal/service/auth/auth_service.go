// Package auth 提供用户注册、登录和邮箱验证的业务逻辑
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/weiwangfds/filevault/config"
	"github.com/weiwangfds/filevault/internal/database"
	apperrors "github.com/weiwangfds/filevault/internal/errors"
	"github.com/weiwangfds/filevault/internal/logger"
	"github.com/weiwangfds/filevault/internal/repository"
)

// 密码最小长度
const minPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// UserInfo 对外暴露的用户信息
type UserInfo struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RegisterResult 注册结果
// VerificationToken由调用方决定是否暴露（邮件投递不在本服务范围内）
type RegisterResult struct {
	User              UserInfo `json:"user"`
	VerificationToken string   `json:"-"`
}

// LoginResult 登录结果
type LoginResult struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

// AuthService 认证服务接口
type AuthService interface {
	// Register 注册新用户
	Register(ctx context.Context, name, email, password string) (*RegisterResult, error)

	// Login 用户登录
	// 邮箱不存在和密码错误返回相同的错误，不泄露账户是否存在
	Login(ctx context.Context, email, password string) (*LoginResult, error)

	// VerifyEmail 通过验证令牌标记邮箱已验证
	VerifyEmail(ctx context.Context, token string) error
}

// authService 认证服务实现
type authService struct {
	users *repository.UserRepository
	cfg   config.JWTConfig
}

// NewAuthService 创建认证服务实例
func NewAuthService(users *repository.UserRepository, cfg config.JWTConfig) AuthService {
	return &authService{users: users, cfg: cfg}
}

// Register 注册新用户
func (s *authService) Register(ctx context.Context, name, email, password string) (*RegisterResult, error) {
	if name == "" {
		return nil, apperrors.ErrInvalidParameters.WithDetails("name is required")
	}
	if !emailPattern.MatchString(email) {
		return nil, apperrors.ErrInvalidParameters.WithDetails("invalid email format")
	}
	if len(password) < minPasswordLength {
		return nil, apperrors.ErrInvalidParameters.WithDetails("password must be at least 8 characters")
	}

	if _, err := s.users.FindByEmail(email); err == nil {
		return nil, apperrors.ErrUserAlreadyExistsError
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "failed to check existing user", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, "failed to hash password", err)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, "failed to generate verification token", err)
	}
	verificationToken := hex.EncodeToString(buf)

	user := &database.User{
		Name:              name,
		Email:             email,
		Password:          string(hashed),
		VerificationToken: verificationToken,
	}
	if err := s.users.Create(user); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseInsert, "failed to create user", err)
	}

	logger.Infof("User registered, id: %d", user.ID)
	return &RegisterResult{
		User:              UserInfo{ID: user.ID, Name: user.Name, Email: user.Email},
		VerificationToken: verificationToken,
	}, nil
}

// Login 用户登录
func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentialsError
		}
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentialsError
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     time.Now().Add(time.Duration(s.cfg.ExpireHours) * time.Hour).Unix(),
	})
	tokenString, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, "failed to sign token", err)
	}

	return &LoginResult{
		Token: tokenString,
		User:  UserInfo{ID: user.ID, Name: user.Name, Email: user.Email},
	}, nil
}

// VerifyEmail 通过验证令牌标记邮箱已验证
func (s *authService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return apperrors.ErrInvalidParameters.WithDetails("verification token is required")
	}

	user, err := s.users.FindByVerificationToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvalidParameters.WithDetails("invalid verification token")
		}
		return apperrors.Wrap(apperrors.ErrDatabaseQuery, "failed to look up verification token", err)
	}

	if err := s.users.MarkVerified(user.ID); err != nil {
		return apperrors.Wrap(apperrors.ErrDatabaseQuery, "failed to mark user verified", err)
	}

	logger.Infof("User email verified, id: %d", user.ID)
	return nil
}
