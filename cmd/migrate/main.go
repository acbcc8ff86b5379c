package main

// Run database migrations:
//   go run ./cmd/migrate
//   go run ./cmd/migrate -status
//   go run ./cmd/migrate -down

import (
	"context"
	"flag"
	"os"

	"github.com/AjayKumar0077/Resumelit/internal/shared/config"
	"github.com/AjayKumar0077/Resumelit/internal/shared/storage/db"
	"github.com/AjayKumar0077/Resumelit/internal/shared/telemetry"
)

func main() {
	down := flag.Bool("down", false, "roll back the most recent migration")
	status := flag.Bool("status", false, "print the current schema version")
	flag.Parse()

	cfg := config.Load()
	telemetry.SetLevel(cfg.LogLevel)
	ctx := context.Background()

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		telemetry.Error("failed to connect database", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer sqlDB.Close()

	switch {
	case *status:
		version, err := db.Version(ctx, sqlDB)
		if err != nil {
			fail(sqlDB.Close, "failed to read schema version", err)
		}
		names, err := db.MigrationNames()
		if err != nil {
			fail(sqlDB.Close, "failed to list migrations", err)
		}
		telemetry.Info("schema version", map[string]any{"version": version, "available": names})
	case *down:
		if err := db.RollbackLast(ctx, sqlDB); err != nil {
			fail(sqlDB.Close, "failed to roll back migration", err)
		}
		telemetry.Info("rolled back last migration", nil)
	default:
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			fail(sqlDB.Close, "failed to run migrations", err)
		}
		telemetry.Info("migrations applied", nil)
	}
}

func fail(closeDB func() error, msg string, err error) {
	_ = closeDB()
	telemetry.Error(msg, map[string]any{"error": err.Error()})
	os.Exit(1)
}
