package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"csoportal/backend/internal/domain"
)

// RequireAdmin 要求管理权限（admin 或 sup_admin），
// 角色取自 JWT 认证中间件写入的上下文。
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := roleFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			c.Abort()
			return
		}

		if !domain.IsAdminRole(role) {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSupAdmin 要求超级管理员权限
func RequireSupAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := roleFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			c.Abort()
			return
		}

		if role != domain.RoleSupAdmin {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "sup_admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole 要求特定角色之一
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := roleFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			c.Abort()
			return
		}

		for _, allowed := range allowedRoles {
			if role == allowed {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "insufficient permissions"})
		c.Abort()
	}
}

func roleFromContext(c *gin.Context) (string, bool) {
	val, exists := c.Get(ContextRole)
	if !exists {
		return "", false
	}
	role, ok := val.(string)
	return role, ok
}
