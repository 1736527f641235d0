package cmd

import (
	"fmt"
	"log/slog"

	"github.com/answerdesk/answerdesk/db"
	"github.com/answerdesk/answerdesk/internal/config"
)

// runMigrate applies all pending database migrations and exits.
func runMigrate() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	slog.Info("database migrations applied")
	return nil
}
