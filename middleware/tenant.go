package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"slotify/utils"
)

// TenantMiddleware requires an X-Tenant-ID header on every API request and
// stashes it in the context. Every repository query is scoped by it, so a
// request without one has nothing it could legally read.
func TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.GetHeader("X-Tenant-ID")
		if tenantID == "" {
			utils.JSONError(c, http.StatusBadRequest, "invalid input", "X-Tenant-ID header is required")
			c.Abort()
			return
		}
		c.Set("tenantID", tenantID)
		c.Next()
	}
}
