package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// SetupLogging configures slog with charmbracelet/log for colorful output.
func SetupLogging(levelStr string) {
	var level log.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		level = log.DebugLevel
	case "info":
		level = log.InfoLevel
	case "error":
		level = log.ErrorLevel
	default:
		level = log.WarnLevel
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: level == log.DebugLevel,
	})

	slog.SetDefault(slog.New(logger))
}

// logLevel applies the verbosity flags on top of the configured level.
func logLevel(configured string) string {
	switch {
	case debug:
		return "debug"
	case verbose:
		return "info"
	case quiet:
		return "error"
	}
	return configured
}
