package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"aasha-server/internal/config"
	"aasha-server/internal/utils"
)

// AuthMiddleware creates a middleware for JWT authentication. With the
// device lock disabled every request passes.
func AuthMiddleware(cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		if _, err := utils.ValidateToken(parts[1], cfg.JWTSecret); err != nil {
			utils.Unauthorized(c, "Invalid token: "+err.Error())
			c.Abort()
			return
		}
		c.Next()
	}
}
