package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/skillora/skillora-server/pkg/config"
	"github.com/skillora/skillora-server/pkg/database"
	"github.com/skillora/skillora-server/pkg/logger"
)

// Runs schema migrations against the configured database and exits.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		slog.Error("failed to set up logger", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.Connect(ctx, cfg.Database, log)
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close(db, log)

	if err := database.Migrate(db); err != nil {
		log.Error("migration failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("migrations applied")
}
