package course

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillora/skillora-server/internal/middleware"
	"github.com/skillora/skillora-server/pkg/cache"
	"github.com/skillora/skillora-server/pkg/pagination"
	"github.com/skillora/skillora-server/pkg/request"
	"github.com/skillora/skillora-server/pkg/response"
	"github.com/skillora/skillora-server/pkg/storage"
	"github.com/skillora/skillora-server/pkg/types"
)

const (
	catalogCacheKey = "courses:all"
	catalogCacheTTL = 5 * time.Minute
)

// Handler serves the course catalog, instructor management and enrollment
// endpoints.
type Handler struct {
	db      *gorm.DB
	logger  *slog.Logger
	cache   cache.Client
	storage *storage.Client
}

// NewHandler creates a course handler.
func NewHandler(db *gorm.DB, logger *slog.Logger, cacheClient cache.Client, storageClient *storage.Client) *Handler {
	return &Handler{db: db, logger: logger, cache: cacheClient, storage: storageClient}
}

// List returns the course catalog. Without pagination parameters the full
// catalog is returned and served from cache when possible.
func (h *Handler) List(c *gin.Context) {
	db := h.db.WithContext(c.Request.Context())
	params := pagination.Extract(c)

	if !params.Requested {
		if cached, err := h.cache.Get(c.Request.Context(), catalogCacheKey); err == nil {
			var courses []Course
			if json.Unmarshal([]byte(cached), &courses) == nil {
				response.Success(c, http.StatusOK, courses, "", nil)
				return
			}
		}
	}

	courses, total, err := List(db, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Failed to fetch courses", err)
		return
	}

	if !params.Requested {
		if encoded, err := json.Marshal(courses); err == nil {
			if err := h.cache.Set(c.Request.Context(), catalogCacheKey, string(encoded), catalogCacheTTL); err != nil {
				h.logger.WarnContext(c.Request.Context(), "failed to cache course list", slog.String("error", err.Error()))
			}
		}
		response.Success(c, http.StatusOK, courses, "", nil)
		return
	}

	response.Success(c, http.StatusOK, courses, "", pagination.MetadataFrom(total, params))
}

// Get returns one course with its instructor and ordered modules.
func (h *Handler) Get(c *gin.Context) {
	id, ok := h.parseID(c, c.Param("id"), "Invalid course ID")
	if !ok {
		return
	}

	crs, err := Get(h.db.WithContext(c.Request.Context()), id)
	if err != nil {
		h.respondError(c, err, "Failed to fetch course")
		return
	}

	response.Success(c, http.StatusOK, crs, "", nil)
}

// Create adds a new course for the authenticated instructor. The request
// is a multipart form carrying the metadata fields and an optional
// thumbnail file.
func (h *Handler) Create(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "No token provided", nil)
		return
	}

	input := CreateInput{
		Title:        strings.TrimSpace(c.PostForm("title")),
		Description:  strings.TrimSpace(c.PostForm("description")),
		Category:     strings.TrimSpace(c.PostForm("category")),
		Level:        types.CourseLevel(strings.TrimSpace(c.PostForm("level"))),
		InstructorID: usr.ID,
	}

	if file, err := c.FormFile("thumbnail"); err == nil {
		url, err := h.storage.Save(file, "thumbnail", storage.KindCourse)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Failed to store thumbnail", err)
			return
		}
		input.Thumbnail = url
	}

	crs, err := Create(h.db.WithContext(c.Request.Context()), input)
	if err != nil {
		h.respondError(c, err, "Failed to create course")
		return
	}

	h.invalidateCatalog(c)
	response.Created(c, crs, "Course created successfully")
}

// Update merges the submitted fields into the course. Accepts either a
// JSON body or a multipart form with an optional replacement thumbnail.
func (h *Handler) Update(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "No token provided", nil)
		return
	}

	id, ok := h.parseID(c, c.Param("id"), "Invalid course ID")
	if !ok {
		return
	}

	input, ok := h.readUpdateInput(c)
	if !ok {
		return
	}

	var oldThumbnail string
	if input.Thumbnail != nil {
		if existing, err := Get(h.db.WithContext(c.Request.Context()), id); err == nil {
			oldThumbnail = existing.Thumbnail
		}
	}

	crs, err := Update(h.db.WithContext(c.Request.Context()), id, usr.ID, input)
	if err != nil {
		h.respondError(c, err, "Failed to update course")
		return
	}

	if oldThumbnail != "" && oldThumbnail != crs.Thumbnail {
		if err := h.storage.Remove(oldThumbnail); err != nil {
			h.logger.WarnContext(c.Request.Context(), "failed to remove old thumbnail", slog.String("error", err.Error()))
		}
	}

	h.invalidateCatalog(c)
	response.Success(c, http.StatusOK, crs, "Course updated successfully", nil)
}

// Delete removes the course, its modules and enrollments. Progress rows
// are intentionally left behind.
func (h *Handler) Delete(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "No token provided", nil)
		return
	}

	id, ok := h.parseID(c, c.Param("id"), "Invalid course ID")
	if !ok {
		return
	}

	crs, err := Delete(h.db.WithContext(c.Request.Context()), id, usr.ID)
	if err != nil {
		h.respondError(c, err, "Failed to delete course")
		return
	}

	if crs.Thumbnail != "" {
		if err := h.storage.Remove(crs.Thumbnail); err != nil {
			h.logger.WarnContext(c.Request.Context(), "failed to remove thumbnail", slog.String("error", err.Error()))
		}
	}

	h.invalidateCatalog(c)
	response.Success(c, http.StatusOK, nil, "Course deleted successfully", nil)
}

// Enroll adds the authenticated student to the course.
func (h *Handler) Enroll(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "No token provided", nil)
		return
	}

	id, ok := h.parseID(c, c.Param("id"), "Invalid course ID")
	if !ok {
		return
	}

	if err := Enroll(h.db.WithContext(c.Request.Context()), id, usr.ID); err != nil {
		h.respondError(c, err, "Failed to enroll in course")
		return
	}

	response.Success(c, http.StatusOK, nil, "Enrolled successfully", nil)
}

// EnrollmentStatus reports whether the authenticated user is enrolled.
func (h *Handler) EnrollmentStatus(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "No token provided", nil)
		return
	}

	id, ok := h.parseID(c, c.Param("id"), "Invalid course ID")
	if !ok {
		return
	}

	db := h.db.WithContext(c.Request.Context())

	var exists int64
	if err := db.Model(&Course{}).Where("id = ?", id).Count(&exists).Error; err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Failed to check enrollment", err)
		return
	}
	if exists == 0 {
		response.Error(c, http.StatusNotFound, "Course not found", nil)
		return
	}

	enrolled, err := IsEnrolled(db, id, usr.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Failed to check enrollment", err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"enrolled": enrolled}, "", nil)
}

// Enrolled returns the authenticated user's enrolled courses.
func (h *Handler) Enrolled(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "No token provided", nil)
		return
	}

	courses, err := EnrolledCourses(h.db.WithContext(c.Request.Context()), usr.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Failed to fetch enrolled courses", err)
		return
	}

	response.Success(c, http.StatusOK, courses, "", nil)
}

// InstructorCourses returns the instructor's own courses with student
// counts.
func (h *Handler) InstructorCourses(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "No token provided", nil)
		return
	}

	courses, err := ByInstructor(h.db.WithContext(c.Request.Context()), usr.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Failed to fetch instructor courses", err)
		return
	}

	response.Success(c, http.StatusOK, courses, "", nil)
}

// InstructorStudents returns the deduplicated roster across the
// instructor's courses.
func (h *Handler) InstructorStudents(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "No token provided", nil)
		return
	}

	students, err := Students(h.db.WithContext(c.Request.Context()), usr.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Failed to fetch students", err)
		return
	}

	response.Success(c, http.StatusOK, students, "", nil)
}

func (h *Handler) readUpdateInput(c *gin.Context) (UpdateInput, bool) {
	var input UpdateInput

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		for _, field := range []struct {
			name string
			dst  **string
		}{
			{"title", &input.Title},
			{"description", &input.Description},
			{"category", &input.Category},
			{"level", &input.Level},
		} {
			if value, exists := c.GetPostForm(field.name); exists {
				trimmed := strings.TrimSpace(value)
				*field.dst = &trimmed
			}
		}

		if file, err := c.FormFile("thumbnail"); err == nil {
			url, err := h.storage.Save(file, "thumbnail", storage.KindCourse)
			if err != nil {
				response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Failed to store thumbnail", err)
				return input, false
			}
			input.Thumbnail = &url
		}

		return input, true
	}

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", nil)
		return input, false
	}

	for _, field := range []struct {
		name string
		dst  **string
	}{
		{"title", &input.Title},
		{"description", &input.Description},
		{"category", &input.Category},
		{"level", &input.Level},
	} {
		if raw, exists := body[field.name]; exists {
			value, err := request.ReadString(raw)
			if err != nil {
				response.Error(c, http.StatusBadRequest, "Fields must be non-empty strings", nil)
				return input, false
			}
			*field.dst = &value
		}
	}

	return input, true
}

func (h *Handler) parseID(c *gin.Context, raw, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		response.Error(c, http.StatusBadRequest, message, nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) invalidateCatalog(c *gin.Context) {
	if err := h.cache.Delete(c.Request.Context(), catalogCacheKey); err != nil {
		h.logger.WarnContext(c.Request.Context(), "failed to invalidate course cache", slog.String("error", err.Error()))
	}
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrCourseNotFound):
		response.Error(c, http.StatusNotFound, "Course not found", nil)
	case errors.Is(err, ErrNotOwner):
		response.Error(c, http.StatusForbidden, "You do not own this course", nil)
	case errors.Is(err, ErrAlreadyEnrolled):
		response.Error(c, http.StatusConflict, "Already enrolled in this course", nil)
	case errors.Is(err, ErrMissingFields), errors.Is(err, ErrInvalidLevel):
		response.Error(c, http.StatusBadRequest, err.Error(), nil)
	default:
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, fallback, err)
	}
}
