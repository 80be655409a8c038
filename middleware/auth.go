package middleware

import (
	"net/http"
	"strings"

	"notewise/utils"

	"github.com/gin-gonic/gin"
)

// DeviceAuthMiddleware guards the locked-notebook endpoints. It expects the
// session JWT issued by the unlock flow and puts the device ID in context.
func DeviceAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		deviceID, err := utils.ExtractDeviceIDFromToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			return
		}

		c.Set("deviceID", deviceID)
		c.Next()
	}
}
