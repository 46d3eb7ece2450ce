// Package logging provides structured diagnostic logging for tallylog.
//
// Diagnostics are written to stderr using Go's slog package and are kept
// strictly separate from the shared data log file that the workers append
// to. Level and format come from the logging section of the configuration.
//
// Example usage:
//
//	logger, err := logging.NewSupervisorLogger(cfg.Logging)
//	logger.Info("workers started", "count", 4)
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/tallylog/tallylog/internal/config"
)

// Logger wraps slog.Logger with tallylog-specific functionality
type Logger struct {
	*slog.Logger
	config config.LoggingConfig
	writer io.Writer
}

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// NewLogger creates a new structured logger with the given configuration
func NewLogger(cfg config.LoggingConfig) (*Logger, error) {
	return newLogger(cfg, os.Stderr)
}

// NewLoggerWithWriter creates a logger writing to w. Used by tests to
// capture diagnostic output.
func NewLoggerWithWriter(cfg config.LoggingConfig, w io.Writer) (*Logger, error) {
	return newLogger(cfg, w)
}

func newLogger(cfg config.LoggingConfig, w io.Writer) (*Logger, error) {
	level, err := parseLogLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.Verbose,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Format time consistently
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					return slog.String(slog.TimeKey, t.Format(time.RFC3339))
				}
			}
			return a
		},
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("unsupported log format %q", cfg.Format)
	}

	return &Logger{
		Logger: slog.New(handler),
		config: cfg,
		writer: w,
	}, nil
}

// parseLogLevel converts string log level to slog.Level
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", level)
	}
}

// Component-specific logger creation

// NewSupervisorLogger creates a logger for the supervisor
func NewSupervisorLogger(cfg config.LoggingConfig) (*Logger, error) {
	logger, err := NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	logger.Logger = logger.Logger.With(
		slog.String("component", "supervisor"),
		slog.String("service", "tallylog"),
	)

	return logger, nil
}

// WorkerLogger derives a per-worker logger from an existing logger
func (l *Logger) WorkerLogger(id int) *Logger {
	return &Logger{
		Logger: l.Logger.With(
			slog.String("component", "worker"),
			slog.Int("worker_id", id),
		),
		config: l.config,
		writer: l.writer,
	}
}

// LogError logs an error with its type details
func (l *Logger) LogError(msg string, err error, attrs ...slog.Attr) {
	allAttrs := []slog.Attr{
		slog.String("error", err.Error()),
		slog.String("error_type", fmt.Sprintf("%T", err)),
	}
	allAttrs = append(allAttrs, attrs...)

	l.LogAttrs(context.Background(), slog.LevelError, msg, allAttrs...)
}

// Close closes any file resources used by the logger
func (l *Logger) Close() error {
	if closer, ok := l.writer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
