package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillora/skillora-server/internal/http/routes"
	"github.com/skillora/skillora-server/pkg/cache"
	"github.com/skillora/skillora-server/pkg/config"
	"github.com/skillora/skillora-server/pkg/database"
	"github.com/skillora/skillora-server/pkg/logger"
	"github.com/skillora/skillora-server/pkg/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.ConnectWithRetry(ctx, cfg.Database, log, 5, 2*time.Second)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db, log); err != nil {
			log.Error("failed to close database", slog.String("error", err.Error()))
		}
	}()

	cacheClient := newCacheClient(cfg, log)
	defer func() {
		if err := cacheClient.Close(); err != nil {
			log.Error("failed to close cache", slog.String("error", err.Error()))
		}
	}()

	storageClient, err := storage.NewClient(cfg.UploadDir)
	if err != nil {
		return err
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	routes.Register(engine, routes.Dependencies{
		DB:      db,
		Logger:  log,
		Config:  cfg,
		Cache:   cacheClient,
		Storage: storageClient,
	})

	server := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", slog.String("addr", server.Addr), slog.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info("server stopped")
	return nil
}

// newCacheClient prefers redis when configured, falling back to the
// in-process cache so the API works without extra infrastructure.
func newCacheClient(cfg *config.Config, log *slog.Logger) cache.Client {
	if cfg.Redis.Addr == "" {
		return cache.NewMemoryClient()
	}

	client, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Warn("redis unavailable, using in-memory cache", slog.String("error", err.Error()))
		return cache.NewMemoryClient()
	}

	log.Info("redis cache connected", slog.String("addr", cfg.Redis.Addr))
	return client
}
