package health

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Version information, typically set at build time
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

var startTime = time.Now()

// Handler serves the liveness, readiness and diagnostics endpoints.
type Handler struct {
	db        *gorm.DB
	logger    *slog.Logger
	uploadDir string
}

// NewHandler creates a health check handler. uploadDir may be empty when
// static uploads are not part of the readiness contract.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// WithUploadDir makes readiness verify the upload directory is writable.
func (h *Handler) WithUploadDir(dir string) *Handler {
	h.uploadDir = dir
	return h
}

// Response is the shape shared by the liveness and readiness endpoints.
type Response struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Health is a liveness probe that always returns OK.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Status:    "ok",
		Timestamp: time.Now(),
		Uptime:    time.Since(startTime).Round(time.Second).String(),
		Version:   Version,
	})
}

// Ready reports whether the service can handle requests: the database
// must answer a ping and, when configured, the upload tree must exist.
func (h *Handler) Ready(c *gin.Context) {
	checks := map[string]string{
		"database": h.checkDatabase(),
	}
	if h.uploadDir != "" {
		checks["uploads"] = h.checkUploads()
	}

	status := "ready"
	code := http.StatusOK
	for _, result := range checks {
		if result != "ok" {
			status = "not_ready"
			code = http.StatusServiceUnavailable
			break
		}
	}

	c.JSON(code, Response{
		Status:    status,
		Timestamp: time.Now(),
		Uptime:    time.Since(startTime).Round(time.Second).String(),
		Version:   Version,
		Checks:    checks,
	})
}

// VersionInfo returns build metadata about the running binary.
func (h *Handler) VersionInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":    Version,
		"git_commit": GitCommit,
		"build_time": BuildTime,
	})
}

func (h *Handler) checkDatabase() string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sqlDB, err := h.db.DB()
	if err != nil {
		h.logger.Error("health check: failed to get database instance", slog.String("error", err.Error()))
		return "unavailable"
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		h.logger.Error("health check: database ping failed", slog.String("error", err.Error()))
		return "unhealthy"
	}

	return "ok"
}

func (h *Handler) checkUploads() string {
	info, err := os.Stat(h.uploadDir)
	if err != nil || !info.IsDir() {
		return "missing"
	}
	return "ok"
}

// DBStats returns database connection pool statistics.
func (h *Handler) DBStats(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get database instance",
		})
		return
	}

	stats := sqlDB.Stats()
	c.JSON(http.StatusOK, gin.H{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration":        stats.WaitDuration.String(),
	})
}
