package progress

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillora/skillora-server/internal/features/course"
	"github.com/skillora/skillora-server/internal/features/module"
	"github.com/skillora/skillora-server/internal/middleware"
	"github.com/skillora/skillora-server/pkg/response"
)

// Handler serves per-course progress for enrolled users.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler creates a progress handler.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

type progressPayload struct {
	CompletedModules []uuid.UUID `json:"completedModules"`
	LastAccessed     time.Time   `json:"lastAccessed"`
}

// Get returns the user's progress for the course, lazily creating the
// empty record on first read.
func (h *Handler) Get(c *gin.Context) {
	userID, courseID, ok := h.authorizeEnrolled(c)
	if !ok {
		return
	}

	db := h.db.WithContext(c.Request.Context())

	prog, err := GetOrCreate(db, userID, courseID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Failed to fetch progress", err)
		return
	}

	h.respondProgress(c, prog)
}

// CompleteModule marks a module complete. Completing the same module
// twice leaves the completed set unchanged.
func (h *Handler) CompleteModule(c *gin.Context) {
	userID, courseID, ok := h.authorizeEnrolled(c)
	if !ok {
		return
	}

	moduleID, err := uuid.Parse(c.Param("moduleId"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid module ID", nil)
		return
	}

	db := h.db.WithContext(c.Request.Context())

	if _, err := module.Get(db, courseID, moduleID); err != nil {
		if errors.Is(err, module.ErrModuleNotFound) {
			response.Error(c, http.StatusNotFound, "Module not found", nil)
		} else {
			response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Failed to mark module complete", err)
		}
		return
	}

	prog, err := Complete(db, userID, courseID, moduleID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Failed to mark module complete", err)
		return
	}

	h.respondProgress(c, prog)
}

func (h *Handler) respondProgress(c *gin.Context, prog CourseProgress) {
	completed, err := CompletedIDs(h.db.WithContext(c.Request.Context()), prog.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Failed to fetch progress", err)
		return
	}

	response.Success(c, http.StatusOK, progressPayload{
		CompletedModules: completed,
		LastAccessed:     prog.LastAccessed,
	}, "", nil)
}

// authorizeEnrolled checks the course exists and the authenticated user
// is enrolled in it.
func (h *Handler) authorizeEnrolled(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	authed, found := middleware.GetUserFromContext(c)
	if !found {
		response.Error(c, http.StatusUnauthorized, "No token provided", nil)
		return uuid.Nil, uuid.Nil, false
	}

	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid course ID", nil)
		return uuid.Nil, uuid.Nil, false
	}

	db := h.db.WithContext(c.Request.Context())

	var exists int64
	if err := db.Model(&course.Course{}).Where("id = ?", courseID).Count(&exists).Error; err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Failed to load course", err)
		return uuid.Nil, uuid.Nil, false
	}
	if exists == 0 {
		response.Error(c, http.StatusNotFound, "Course not found", nil)
		return uuid.Nil, uuid.Nil, false
	}

	enrolled, err := course.IsEnrolled(db, courseID, authed.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Failed to check enrollment", err)
		return uuid.Nil, uuid.Nil, false
	}
	if !enrolled {
		response.Error(c, http.StatusForbidden, "You are not enrolled in this course", nil)
		return uuid.Nil, uuid.Nil, false
	}

	return authed.ID, courseID, true
}
