package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Logger bundles a logger with whatever must be closed when it is done.
type Logger struct {
	Logger *slog.Logger
	Close  func() error
	Path   string
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// ParseLevel maps debug/info/warn/error to a slog level. Anything else is info.
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

// New logs as text to stderr, or as JSON to path when path is set.
func New(level, path string) (Logger, error) {
	lvl := ParseLevel(level)
	if path == "" {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
		return Logger{Logger: slog.New(handler), Close: func() error { return nil }}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Logger{Logger: Nop(), Close: func() error { return nil }}, fmt.Errorf("creating log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return Logger{Logger: Nop(), Close: func() error { return nil }}, fmt.Errorf("opening log file: %w", err)
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	})
	return Logger{
		Logger: slog.New(handler),
		Close:  file.Close,
		Path:   path,
	}, nil
}
