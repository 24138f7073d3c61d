package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"csoportal/backend/internal/auth/jwt"
)

// 上下文键
const (
	ContextStaffID = "staffID"
	ContextEmail   = "email"
	ContextRole    = "role"
)

// JWTAuth JWT 认证中间件
type JWTAuth struct {
	tokens *jwt.Manager
	log    *zap.Logger
}

// NewJWTAuth 创建 JWT 认证中间件
func NewJWTAuth(tokens *jwt.Manager, log *zap.Logger) *JWTAuth {
	return &JWTAuth{tokens: tokens, log: log}
}

// RequireAuth 要求有效的员工令牌
func (ja *JWTAuth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ja.extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "authentication required",
			})
			c.Abort()
			return
		}

		claims, err := ja.tokens.ValidateToken(token)
		if err != nil {
			ja.log.Warn("invalid token",
				zap.String("error", err.Error()),
				zap.String("ip", c.ClientIP()),
			)
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set(ContextStaffID, claims.StaffID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRole, claims.Role)

		c.Next()
	}
}

// OptionalAuth 可选认证，令牌有效时填充上下文
func (ja *JWTAuth) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ja.extractToken(c)
		if token == "" {
			c.Next()
			return
		}

		if claims, err := ja.tokens.ValidateToken(token); err == nil {
			c.Set(ContextStaffID, claims.StaffID)
			c.Set(ContextEmail, claims.Email)
			c.Set(ContextRole, claims.Role)
		}

		c.Next()
	}
}

// extractToken 从 Authorization 头或 cookie 提取令牌
func (ja *JWTAuth) extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}

	token, err := c.Cookie("access_token")
	if err == nil && token != "" {
		return token
	}
	return ""
}
