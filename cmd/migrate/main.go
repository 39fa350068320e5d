package main

// Run database migrations:
//   go run ./cmd/migrate [up|status|down]

import (
	"context"
	"fmt"
	"os"

	"hairalyzer-backend/internal/shared/config"
	"hairalyzer-backend/internal/shared/storage/db"
	"hairalyzer-backend/internal/shared/telemetry"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

func run(args []string) error {
	command := "up"
	if len(args) > 0 {
		command = args[0]
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	telemetry.Configure(cfg.LogLevel, cfg.LogFormat)
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	ctx := context.Background()
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultCLIOptions()))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer sqlDB.Close()

	switch command {
	case "up":
		return db.RunMigrations(ctx, sqlDB)
	case "status":
		return db.MigrationStatus(ctx, sqlDB)
	case "down":
		return db.RollbackLast(ctx, sqlDB)
	default:
		return fmt.Errorf("unknown command %q (want up, status or down)", command)
	}
}
