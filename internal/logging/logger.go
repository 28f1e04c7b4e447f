// Package logging provides structured logging configuration using log/slog.
//
// Every migration run gets a run ID that is carried on the context, so all
// lines written for one run, including per-row diagnostics, can be correlated.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type runIDKey struct{}

// Setup configures the global slog logger based on level and format.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
//
// Use "json" when the output is collected by a log pipeline.
// Use "text" when running the migration by hand.
// A nil w writes to stdout.
func Setup(w io.Writer, level, format string) {
	if w == nil {
		w = os.Stdout
	}
	slog.SetDefault(New(w, level, format))
}

// New builds a logger writing to w with the given level and format.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
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

// WithRunID returns a context carrying the migration run ID.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext returns the run ID stored by WithRunID.
func RunIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDKey{}).(string)
	return id, ok && id != ""
}

// FromContext returns a logger enriched with run context.
//
// When the context carries a run ID, the returned logger includes run_id in
// all log entries.
//
// Usage:
//
//	logger := logging.FromContext(ctx)
//	logger.Warn("row skipped", "index", i, "error", err)
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	if id, ok := RunIDFromContext(ctx); ok {
		logger = logger.With("run_id", id)
	}

	return logger
}

// WithFields returns a logger with additional structured fields.
//
// Usage:
//
//	storeLogger := logging.WithFields(ctx, "driver", "mongo", "target", target)
//	storeLogger.Info("store opened")
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
