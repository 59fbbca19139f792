// Package logging provides structured logging configuration using log/slog.
//
// This package integrates with chi's RequestID middleware to propagate
// request IDs through structured log entries, so every line an import
// writes can be tied back to the upload request that started it.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/lmittmann/tint"
)

// Setup configures the global slog logger.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
//
// Use "json" in production for machine parsing. Use "text" with color for a
// terminal during development.
func Setup(level, format string, color bool) {
	slog.SetDefault(slog.New(NewHandler(os.Stdout, level, format, color)))
}

// NewHandler builds the handler Setup installs. It is exported so tests and
// the CLI can direct output elsewhere.
func NewHandler(w io.Writer, level, format string, color bool) slog.Handler {
	lvl := parseLevel(level)

	switch {
	case strings.EqualFold(format, "json"):
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	case color:
		return tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: time.DateTime,
		})
	default:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// FromContext returns the default logger, enriched with the chi request ID
// when ctx carries one.
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}

	return logger
}

// WithFields returns a request-scoped logger with additional fields.
//
// Usage:
//
//	logger := logging.WithFields(ctx, "import_id", importID)
//	logger.Info("import started")
//	// ... later ...
//	logger.Info("import completed", "updated", n)
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
