package module

import (
	"github.com/gin-gonic/gin"

	"github.com/skillora/skillora-server/internal/middleware"
	"github.com/skillora/skillora-server/pkg/types"
)

// RegisterRoutes mounts module management on the shared /api/courses
// group. Ownership of the course is checked per request in the handler.
func RegisterRoutes(courses *gin.RouterGroup, h *Handler) {
	instructor := middleware.RequireRoles(types.RoleInstructor)

	modules := courses.Group("/:id/modules", instructor...)
	modules.POST("", h.Create)
	modules.PUT("/reorder", h.Reorder)
	modules.PUT("/:moduleId", h.Update)
	modules.DELETE("/:moduleId", h.Delete)
	modules.POST("/:moduleId/content", h.SetContent)
}
