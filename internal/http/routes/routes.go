package routes

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/skillora/skillora-server/internal/features/auth"
	"github.com/skillora/skillora-server/internal/features/course"
	"github.com/skillora/skillora-server/internal/features/module"
	"github.com/skillora/skillora-server/internal/features/progress"
	"github.com/skillora/skillora-server/internal/features/upload"
	authmw "github.com/skillora/skillora-server/internal/middleware"
	"github.com/skillora/skillora-server/pkg/cache"
	"github.com/skillora/skillora-server/pkg/config"
	"github.com/skillora/skillora-server/pkg/health"
	"github.com/skillora/skillora-server/pkg/metrics"
	"github.com/skillora/skillora-server/pkg/middleware"
	"github.com/skillora/skillora-server/pkg/request"
	"github.com/skillora/skillora-server/pkg/storage"
)

// Dependencies carries everything route registration needs.
type Dependencies struct {
	DB      *gorm.DB
	Logger  *slog.Logger
	Config  *config.Config
	Cache   cache.Client
	Storage *storage.Client
}

// Register configures middleware and mounts every route on the engine.
func Register(engine *gin.Engine, deps Dependencies) {
	engine.Use(middleware.Recovery(deps.Logger))
	engine.Use(middleware.CORS(deps.Config.AllowedOrigins))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Compression(gzipLevel))
	engine.Use(middleware.RequestLogger(deps.Logger))
	engine.Use(middleware.SecurityHeaders())
	engine.Use(middleware.CacheControl())
	engine.Use(middleware.RequestSizeLimit(maxRequestBytes))
	engine.Use(metrics.Middleware())
	engine.Use(request.Handler(deps.Logger))

	limiter := middleware.NewRateLimiter(rateLimitPerMinute, time.Minute)
	engine.Use(limiter.Middleware())

	authmw.Initialize(deps.DB, deps.Config.JWTSecret, deps.Logger)

	healthHandler := health.NewHandler(deps.DB, deps.Logger).WithUploadDir(deps.Storage.BaseDir())
	engine.GET("/health", healthHandler.Health)
	engine.GET("/ready", healthHandler.Ready)
	engine.GET("/version", healthHandler.VersionInfo)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	debug := engine.Group("/debug")
	debug.GET("/db-stats", healthHandler.DBStats)

	engine.Static("/uploads", deps.Storage.BaseDir())

	api := engine.Group("/api")

	authHandler := auth.NewHandler(deps.DB, deps.Logger, deps.Config.JWTSecret, deps.Config.TokenTTL)
	auth.RegisterRoutes(api, authHandler)

	courses := api.Group("/courses")
	course.RegisterRoutes(courses, course.NewHandler(deps.DB, deps.Logger, deps.Cache, deps.Storage))
	module.RegisterRoutes(courses, module.NewHandler(deps.DB, deps.Logger, course.Source{}))
	progress.RegisterRoutes(courses, progress.NewHandler(deps.DB, deps.Logger))
	upload.RegisterRoutes(courses, upload.NewHandler(deps.Logger, deps.Storage))
}

const (
	gzipLevel          = 5
	maxRequestBytes    = 20 << 20 // uploads included
	rateLimitPerMinute = 300
)
