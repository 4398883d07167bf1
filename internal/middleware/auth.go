// internal/middleware/auth.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/atommarket/atommarket-backend/internal/utils"
)

// SessionRequired gates mutating routes behind a session token and puts the
// acting wallet address on the request context.
func SessionRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.UnauthorizedResponse(c, "")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.UnauthorizedResponse(c, "malformed authorization header")
			c.Abort()
			return
		}

		claims, err := utils.ValidateSessionToken(parts[1])
		if err != nil {
			utils.UnauthorizedResponse(c, "invalid or expired session")
			c.Abort()
			return
		}

		c.Set("address", claims.Address)
		c.Next()
	}
}

// SessionAddress returns the wallet address bound to the current request.
func SessionAddress(c *gin.Context) string {
	if address, exists := c.Get("address"); exists {
		if s, ok := address.(string); ok {
			return s
		}
	}
	return ""
}

// OptionalSession resolves the session if one is presented but lets
// anonymous reads through.
func OptionalSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				if claims, err := utils.ValidateSessionToken(parts[1]); err == nil {
					c.Set("address", claims.Address)
				}
			}
		}
		c.Next()
	}
}
