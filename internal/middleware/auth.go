// Package middleware 提供gin中间件
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/weiwangfds/filevault/internal/response"
)

// ContextUserIDKey 已验证用户ID在gin上下文中的键
const ContextUserIDKey = "user_id"

// Auth JWT认证中间件
// 验证通过后将user_id写入上下文，后续处理器以此为已信任的调用者身份
func Auth(secret string) gin.HandlerFunc {
	secretBytes := []byte(secret)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			response.Unauthorized(c)
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			// 只接受HMAC签名，防止算法混淆攻击
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return secretBytes, nil
		})
		if err != nil || !token.Valid {
			response.Unauthorized(c)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Unauthorized(c)
			c.Abort()
			return
		}
		userID, ok := claims["user_id"].(float64)
		if !ok {
			response.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, uint(userID))
		c.Next()
	}
}

// CurrentUserID 从上下文读取已验证的用户ID
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(ContextUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
