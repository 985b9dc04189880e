package module

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillora/skillora-server/internal/middleware"
	"github.com/skillora/skillora-server/pkg/request"
	"github.com/skillora/skillora-server/pkg/response"
)

// CourseSource exposes the course facts module handlers need. Implemented
// by the course feature; an interface keeps the dependency one-way.
type CourseSource interface {
	InstructorOf(db *gorm.DB, courseID uuid.UUID) (uuid.UUID, error)
}

// Handler serves module management under a course.
type Handler struct {
	db      *gorm.DB
	logger  *slog.Logger
	courses CourseSource
}

// NewHandler creates a module handler.
func NewHandler(db *gorm.DB, logger *slog.Logger, courses CourseSource) *Handler {
	return &Handler{db: db, logger: logger, courses: courses}
}

type createRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type contentRequest struct {
	Content string `json:"content" binding:"required"`
}

type reorderRequest struct {
	ModuleIDs []string `json:"moduleIds" binding:"required"`
}

// Create appends a module to the owning instructor's course.
func (h *Handler) Create(c *gin.Context) {
	courseID, ok := h.authorizeOwner(c)
	if !ok {
		return
	}

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Title is required", nil)
		return
	}

	mod, err := Create(h.db.WithContext(c.Request.Context()), courseID, CreateInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.respondError(c, err, "Failed to create module")
		return
	}

	response.Created(c, mod, "Module created successfully")
}

// Update merges title and description changes into the module.
func (h *Handler) Update(c *gin.Context) {
	courseID, ok := h.authorizeOwner(c)
	if !ok {
		return
	}

	moduleID, ok := h.parseModuleID(c)
	if !ok {
		return
	}

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	var input UpdateInput
	if raw, exists := body["title"]; exists {
		value, err := request.ReadString(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "Title must be a non-empty string", nil)
			return
		}
		input.Title = &value
	}
	if raw, exists := body["description"]; exists {
		value, err := request.ReadStringAllowEmpty(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "Description must be a string", nil)
			return
		}
		input.Description = &value
	}

	mod, err := Update(h.db.WithContext(c.Request.Context()), courseID, moduleID, input)
	if err != nil {
		h.respondError(c, err, "Failed to update module")
		return
	}

	response.Success(c, http.StatusOK, mod, "Module updated successfully", nil)
}

// SetContent sets or replaces the module's content body.
func (h *Handler) SetContent(c *gin.Context) {
	courseID, ok := h.authorizeOwner(c)
	if !ok {
		return
	}

	moduleID, ok := h.parseModuleID(c)
	if !ok {
		return
	}

	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Content is required", nil)
		return
	}

	mod, err := SetContent(h.db.WithContext(c.Request.Context()), courseID, moduleID, req.Content)
	if err != nil {
		h.respondError(c, err, "Failed to update module content")
		return
	}

	response.Success(c, http.StatusOK, mod, "Module content updated successfully", nil)
}

// Delete removes the module from the course.
func (h *Handler) Delete(c *gin.Context) {
	courseID, ok := h.authorizeOwner(c)
	if !ok {
		return
	}

	moduleID, ok := h.parseModuleID(c)
	if !ok {
		return
	}

	if err := Delete(h.db.WithContext(c.Request.Context()), courseID, moduleID); err != nil {
		h.respondError(c, err, "Failed to delete module")
		return
	}

	response.Success(c, http.StatusOK, nil, "Module deleted successfully", nil)
}

// Reorder rewrites the course's module order from the submitted id list.
func (h *Handler) Reorder(c *gin.Context) {
	courseID, ok := h.authorizeOwner(c)
	if !ok {
		return
	}

	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "moduleIds is required", nil)
		return
	}

	ids := make([]uuid.UUID, 0, len(req.ModuleIDs))
	for _, raw := range req.ModuleIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "Invalid module ID in order list", nil)
			return
		}
		ids = append(ids, id)
	}

	modules, err := Reorder(h.db.WithContext(c.Request.Context()), courseID, ids)
	if err != nil {
		h.respondError(c, err, "Failed to reorder modules")
		return
	}

	response.Success(c, http.StatusOK, modules, "Modules reordered successfully", nil)
}

// authorizeOwner parses the course id and verifies the authenticated user
// owns the course.
func (h *Handler) authorizeOwner(c *gin.Context) (uuid.UUID, bool) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "No token provided", nil)
		return uuid.Nil, false
	}

	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid course ID", nil)
		return uuid.Nil, false
	}

	instructorID, err := h.courses.InstructorOf(h.db.WithContext(c.Request.Context()), courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, "Course not found", nil)
		} else {
			response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Failed to load course", err)
		}
		return uuid.Nil, false
	}

	if instructorID != usr.ID {
		response.Error(c, http.StatusForbidden, "You do not own this course", nil)
		return uuid.Nil, false
	}

	return courseID, true
}

func (h *Handler) parseModuleID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("moduleId"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid module ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrModuleNotFound):
		response.Error(c, http.StatusNotFound, "Module not found", nil)
	case errors.Is(err, ErrMissingTitle), errors.Is(err, ErrInvalidOrder):
		response.Error(c, http.StatusBadRequest, err.Error(), nil)
	default:
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, fallback, err)
	}
}
