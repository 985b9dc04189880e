package upload

import (
	"github.com/gin-gonic/gin"

	"github.com/skillora/skillora-server/internal/middleware"
)

// RegisterRoutes mounts the generic upload endpoint on the shared
// /api/courses group. Any authenticated user may upload.
func RegisterRoutes(courses *gin.RouterGroup, h *Handler) {
	courses.POST("/content/upload", middleware.AuthenticateToken(), h.Content)
}
