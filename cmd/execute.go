// Package cmd contains all command-line entry points for answerdesk.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/answerdesk/answerdesk/internal/log"
)

// Execute is the main entry point. It routes the first argument to a
// command, leaving main.go as a minimal shim.
func Execute() error {
	slog.SetDefault(initLogger())

	if len(os.Args) < 2 {
		runHelp()
		return nil
	}

	switch os.Args[1] {
	case "serve":
		return runServe()
	case "migrate":
		return runMigrate()
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// initLogger builds the process logger before config is available. Serve
// reconfigures it from config once loaded; DEBUG flips the early level.
func initLogger() log.Logger {
	cfg := log.Config{Level: slog.LevelInfo}
	if os.Getenv("DEBUG") != "" {
		cfg.Level = slog.LevelDebug
	}
	return log.New(cfg)
}

// parseLevel maps a config log level string onto slog.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("answerdesk - Support chatbot backend grounded in your own documents")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  answerdesk serve [addr]  Start the HTTP API server (default: 127.0.0.1:3500)")
	fmt.Println("  answerdesk migrate       Apply pending database migrations")
	fmt.Println("  answerdesk version       Show version information")
	fmt.Println("  answerdesk help          Show this help")
	fmt.Println()
	fmt.Println("Configuration is read from ~/.answerdesk/config.yaml and ANSWERDESK_*")
	fmt.Println("environment variables. The provider key can also be supplied as")
	fmt.Println("OPENAI_API_KEY, and the database as DATABASE_URL.")
}
