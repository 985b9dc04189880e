package course

import (
	"github.com/gin-gonic/gin"

	"github.com/skillora/skillora-server/internal/middleware"
	"github.com/skillora/skillora-server/pkg/types"
)

// RegisterRoutes mounts the course endpoints on the /api/courses group.
// Module, progress and upload routes share this group and are registered
// by their own features; all wildcard segments here must therefore use
// the ":id" name.
func RegisterRoutes(courses *gin.RouterGroup, h *Handler) {
	courses.GET("", h.List)

	instructor := middleware.RequireRoles(types.RoleInstructor)
	courses.POST("", append(instructor, h.Create)...)
	courses.GET("/instructor", append(instructor, h.InstructorCourses)...)
	courses.GET("/students/instructor", append(instructor, h.InstructorStudents)...)

	courses.GET("/enrolled", middleware.AuthenticateToken(), h.Enrolled)

	courses.GET("/:id", h.Get)
	courses.PUT("/:id", append(instructor, h.Update)...)
	courses.DELETE("/:id", append(instructor, h.Delete)...)

	student := middleware.RequireRoles(types.RoleStudent)
	courses.POST("/:id/enroll", append(student, h.Enroll)...)
	courses.GET("/:id/enrollment", middleware.AuthenticateToken(), h.EnrollmentStatus)
}
