package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/skillora/skillora-server/internal/features/course"
	"github.com/skillora/skillora-server/internal/features/module"
	"github.com/skillora/skillora-server/internal/features/progress"
	"github.com/skillora/skillora-server/internal/features/user"
	"github.com/skillora/skillora-server/pkg/config"
	"github.com/skillora/skillora-server/pkg/database"
	"github.com/skillora/skillora-server/pkg/logger"
)

// Drops every application table after an interactive confirmation.
// Intended for development databases only.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction() {
		slog.Error("refusing to drop tables in production")
		os.Exit(1)
	}

	fmt.Printf("Drop all tables in %s? Type 'yes' to continue: ", cfg.Database.Name)
	reader := bufio.NewReader(os.Stdin)
	answer, _ := reader.ReadString('\n')
	if strings.TrimSpace(answer) != "yes" {
		fmt.Println("Aborted.")
		return
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		slog.Error("failed to set up logger", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.Connect(ctx, cfg.Database, log)
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close(db, log)

	err = db.Migrator().DropTable(
		&progress.CompletedModule{},
		&progress.CourseProgress{},
		&course.Enrollment{},
		&module.Module{},
		&course.Course{},
		&user.User{},
	)
	if err != nil {
		log.Error("failed to drop tables", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("tables dropped")
}
