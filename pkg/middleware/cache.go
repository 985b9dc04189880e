package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// CacheControl sets cache headers based on the request path. API responses
// are never cached; uploaded static files (thumbnails, content) may be
// cached aggressively since their names carry a unique suffix.
func CacheControl() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		switch {
		case strings.HasPrefix(path, "/api"):
			c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
		case strings.HasPrefix(path, "/uploads/"):
			c.Header("Cache-Control", "public, max-age=31536000, immutable")
		}

		c.Next()
	}
}
