// Package logging provides structured logging using Go's slog package.
package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Level represents a log level.
type Level int

const (
	// LevelDebug is for debug messages.
	LevelDebug Level = iota
	// LevelInfo is for informational messages.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
)

// Format represents a log output format.
type Format int

const (
	// FormatText outputs logs in human-readable text format.
	FormatText Format = iota
	// FormatJSON outputs logs in JSON format.
	FormatJSON
)

var (
	mu            sync.RWMutex
	defaultLogger = newLogger(os.Stderr, LevelWarn, FormatText)
)

// Init replaces the global logger. Reports go to stdout, so logs default to stderr.
func Init(w io.Writer, level Level, format Format) {
	l := newLogger(w, level, format)
	mu.Lock()
	defaultLogger = l
	mu.Unlock()
}

func newLogger(w io.Writer, level Level, format Format) *slog.Logger {
	var slogLevel slog.Level
	switch level {
	case LevelDebug:
		slogLevel = slog.LevelDebug
	case LevelInfo:
		slogLevel = slog.LevelInfo
	case LevelError:
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{
		Level: slogLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Logger returns the global logger instance.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

// PluginLoading logs plugin loading events.
func PluginLoading(name, source string, args ...any) {
	allArgs := []any{
		"plugin", name,
		"source", source,
	}
	allArgs = append(allArgs, args...)
	Logger().Info("plugin_loading", allArgs...)
}

// PluginError logs plugin errors.
func PluginError(name, operation string, err error, args ...any) {
	allArgs := []any{
		"plugin", name,
		"operation", operation,
		"error", err.Error(),
	}
	allArgs = append(allArgs, args...)
	Logger().Error("plugin_error", allArgs...)
}

// CheckFinished logs the outcome of one check invocation.
func CheckFinished(checkID, target, worst string, elapsed time.Duration) {
	Logger().Debug("check_finished",
		"check_id", checkID,
		"target", target,
		"worst", worst,
		"duration_ms", elapsed.Milliseconds(),
	)
}
