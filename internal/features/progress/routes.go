package progress

import (
	"github.com/gin-gonic/gin"

	"github.com/skillora/skillora-server/internal/middleware"
)

// RegisterRoutes mounts progress tracking on the shared /api/courses
// group. Enrollment is checked per request in the handler.
func RegisterRoutes(courses *gin.RouterGroup, h *Handler) {
	courses.GET("/:id/progress", middleware.AuthenticateToken(), h.Get)
	courses.POST("/:id/modules/:moduleId/complete", middleware.AuthenticateToken(), h.CompleteModule)
}
