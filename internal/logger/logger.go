// Package logger builds the structured logger used across meetcal.
//
// Standard output carries the command protocol, so logs go to stderr or,
// when a file is configured, to a size-rotated log file.
package logger

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config defines how the logger is built.
// Level accepts debug/info/warn/error, Format accepts text/json.
// File switches output from stderr to a rotating file.
type Config struct {
	Level  string
	Format string
	File   string
}

// Rotation limits for file output
const (
	maxSizeMB  = 10
	maxBackups = 3
	maxAgeDays = 28
)

func levelFromString(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.New("invalid log level: " + level)
	}
}

// New creates a logger writing to stderr or cfg.File.
// The returned closer releases the log file and is never nil.
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	var w io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
		}
		w, closer = lj, lj
	}

	logger, err := NewWithWriter(w, cfg)
	if err != nil {
		_ = closer.Close()
		return nil, nopCloser{}, err
	}
	return logger, closer, nil
}

// NewWithWriter creates a logger writing to w
func NewWithWriter(w io.Writer, cfg Config) (*slog.Logger, error) {
	lvl, err := levelFromString(cfg.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "", "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, errors.New("invalid log format: " + cfg.Format)
	}

	return slog.New(handler), nil
}

// Discard returns a logger that drops everything, for tests
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
