package logging

import (
	"log/slog"
	"os"
	"strings"
)

// New creates a console slog.Logger at the provided level string.
func New(level string) *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: levelFromString(level),
	})
	return slog.New(handler)
}

// Component tags a child logger with the component name.
func Component(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger.With("component", name)
}

func levelFromString(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "info":
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
