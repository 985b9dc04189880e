package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/skillora/skillora-server/internal/middleware"
)

// RegisterRoutes mounts the auth endpoints under /api/auth.
func RegisterRoutes(api *gin.RouterGroup, h *Handler) {
	group := api.Group("/auth")

	group.POST("/register", h.Register)
	group.POST("/login", h.Login)

	authed := group.Group("")
	authed.Use(middleware.AuthenticateToken())
	authed.GET("/me", h.Me)
	authed.PUT("/profile", h.UpdateProfile)
	authed.PUT("/password", h.UpdatePassword)
}
