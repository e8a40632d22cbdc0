// Package logger wraps log/slog with the level and format switches used by
// the pocs command and HTTP server.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Logger wraps slog.Logger with a simplified API
type Logger struct {
	*slog.Logger
}

// Config holds logger configuration
type Config struct {
	Level  Level
	Format Format
	Output io.Writer
}

// Level represents log level
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format represents output format
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

var defaultLogger atomic.Value // stores *Logger

func init() {
	defaultLogger.Store(New(Config{
		Level:  LevelInfo,
		Format: FormatText,
		Output: os.Stderr,
	}))
}

// New creates a new logger with the given configuration
func New(cfg Config) *Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: levelToSlog(cfg.Level)}

	var handler slog.Handler
	if cfg.Format == FormatJSON {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// Discard returns a logger that drops everything. Tests use it to keep
// command output clean.
func Discard() *Logger {
	return New(Config{Level: LevelError, Output: io.Discard})
}

// ParseLevel converts a configuration string into a Level.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case "", LevelInfo:
		return LevelInfo, nil
	case LevelDebug:
		return LevelDebug, nil
	case LevelWarn, "warning":
		return LevelWarn, nil
	case LevelError:
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

func levelToSlog(l Level) slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a logger with the given attributes
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying l.
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the logger stored in ctx, or the default logger.
func FromContext(ctx context.Context) *Logger {
	if ctx != nil {
		if l, ok := ctx.Value(contextKey{}).(*Logger); ok && l != nil {
			return l
		}
	}
	return GetDefault()
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	GetDefault().Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	GetDefault().Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	GetDefault().Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	GetDefault().Error(msg, args...)
}

// With returns a logger with the given attributes
func With(args ...any) *Logger {
	return GetDefault().With(args...)
}

// SetDefault sets the default logger
func SetDefault(l *Logger) {
	defaultLogger.Store(l)
}

// GetDefault returns the default logger
func GetDefault() *Logger {
	l, _ := defaultLogger.Load().(*Logger)
	return l
}
