package middleware

import (
	"github.com/gin-gonic/gin"

	"zonetrack/utils"
)

const userIDHeader = "X-User-ID"

// Identity resolves the caller from the X-User-ID header. The service trusts
// the gateway in front of it to have authenticated the request.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := c.GetHeader(userIDHeader); userID != "" {
			c.Set("userID", userID)
		}
		c.Next()
	}
}

// RequireIdentity rejects requests that carry no caller identity.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("userID") == "" {
			utils.UnauthorizedResponse(c, "User identity required")
			c.Abort()
			return
		}
		c.Next()
	}
}
