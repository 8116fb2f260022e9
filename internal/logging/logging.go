// Package logging installs the process logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/vietddude/stylelog"
)

// ParseLevel maps a config level name to a slog level; unknown names mean info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
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

// Setup installs the default logger and returns it. When file is set, output
// goes to stdout and the file without colour; the returned closer releases it.
func Setup(level slog.Level, file string) (*slog.Logger, func() error, error) {
	opts := &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
	}
	if file == "" {
		stylelog.InitDefault(opts)
		return slog.Default(), func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	opts.NoColor = true
	logger := New(io.MultiWriter(os.Stdout, f), opts)
	slog.SetDefault(logger)
	return logger, f.Close, nil
}

// New builds a tint logger on w.
func New(w io.Writer, opts *tint.Options) *slog.Logger {
	return slog.New(tint.NewHandler(w, opts))
}
