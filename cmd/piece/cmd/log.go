package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/go-drift/piece/pkg/errors"
)

// logOutput receives log records. Tests replace it.
var logOutput io.Writer = os.Stderr

// newLogger builds the CLI logger and routes piece error reports to it.
// level: "debug", "info", "warn", "error" (defaults to "info")
// format: "json" or "text" (defaults to "text")
func newLogger(level, format string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(logOutput, opts)
	} else {
		handler = slog.NewTextHandler(logOutput, opts)
	}

	logger := slog.New(handler)
	errors.SetHandler(&errors.LogHandler{
		Logger:  logger,
		Verbose: logLevel == slog.LevelDebug,
	})
	return logger
}
