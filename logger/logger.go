// Package logger configures structured JSON logging.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup returns a slog.Logger writing JSON records at or above level to w.
func Setup(w io.Writer, level slog.Level) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

// SetupDefault installs a JSON logger as the slog default and returns it.
func SetupDefault(w io.Writer, level slog.Level) *slog.Logger {
	l := Setup(w, level)
	slog.SetDefault(l)
	return l
}

// ParseLevel maps "debug", "info", "warn" and "error" to a level. Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
