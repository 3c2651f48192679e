// Package logging provides structured logging for img2shard.
//
// This package wraps the standard library's log/slog package to provide
// consistent logging across all components. It supports text and JSON
// output, configurable log levels, and component-based loggers.
//
// Usage:
//
//	// Initialize at startup
//	logging.Init(slog.LevelInfo, logging.FormatText)
//	logging.Init(slog.LevelDebug, logging.FormatAuto) // JSON unless stderr is a TTY
//
//	// Get a component logger
//	log := logging.Component("pipeline")
//	log.Info("chunk done", "chunk", 3, "images", 10000)
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// Format selects the log output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatAuto Format = "auto"
)

// Logger is the global logger instance.
var Logger *slog.Logger

// Init initializes the global logger writing to stderr.
// FormatAuto picks text for an interactive terminal and JSON otherwise.
func Init(level slog.Level, format Format) {
	InitWriter(os.Stderr, level, format)
}

// InitWriter initializes the global logger with an explicit destination.
func InitWriter(w io.Writer, level slog.Level, format Format) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	if format == FormatAuto {
		format = FormatJSON
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			format = FormatText
		}
	}

	if format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	InitWithHandler(handler)
}

// InitWithHandler initializes the global logger with a custom handler.
func InitWithHandler(handler slog.Handler) {
	Logger = slog.New(handler)
	slog.SetDefault(Logger)
}

// ParseLevel parses a level name (debug, info, warn, error).
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// ParseFormat parses a format name (text, json, auto).
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatAuto:
		return f, nil
	case "":
		return FormatAuto, nil
	default:
		return FormatAuto, fmt.Errorf("unknown log format %q", s)
	}
}

// Component returns a logger for a specific component.
// The component name is added as an attribute to all log entries.
//
// Loggers obtained at package init time keep the handler that was current
// then; call Component after Init when the output settings matter.
func Component(name string) *slog.Logger {
	if Logger == nil {
		Init(slog.LevelInfo, FormatText)
	}
	return Logger.With("component", name)
}

// WithContext returns a logger that includes context values.
func WithContext(ctx context.Context) *slog.Logger {
	if Logger == nil {
		Init(slog.LevelInfo, FormatText)
	}

	logger := Logger

	if chunk, ok := ctx.Value(contextKeyChunk).(string); ok {
		logger = logger.With("chunk", chunk)
	}

	return logger
}

// Context key types for type-safe context value extraction.
type contextKey int

const (
	contextKeyChunk contextKey = iota
)

// ContextWithChunk adds a chunk name to the context for logging.
func ContextWithChunk(ctx context.Context, chunk string) context.Context {
	return context.WithValue(ctx, contextKeyChunk, chunk)
}

// =============================================================================
// Convenience Functions
// =============================================================================

// Warn logs at warning level.
func Warn(msg string, args ...any) {
	if Logger == nil {
		Init(slog.LevelInfo, FormatText)
	}
	Logger.Warn(msg, args...)
}
