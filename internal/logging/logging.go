// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package logging provides the structured logger used across the agent core.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

// Level mirrors slog.Level with names that match the rest of the codebase.
type Level int

const (
	LevelDebug Level = Level(slog.LevelDebug)
	LevelInfo  Level = Level(slog.LevelInfo)
	LevelWarn  Level = Level(slog.LevelWarn)
	LevelError Level = Level(slog.LevelError)
)

// Config controls how a Logger formats and routes its output.
type Config struct {
	Output io.Writer
	Level  Level
	JSON   bool
}

// DefaultConfig returns the configuration used when no override is supplied.
func DefaultConfig() Config {
	return Config{
		Output: os.Stderr,
		Level:  LevelInfo,
		JSON:   false,
	}
}

// Logger is a thin wrapper over slog.Logger adding WithComponent/WithError
// convenience and a package-level default so call sites can log without
// threading an instance through every constructor.
type Logger struct {
	base      *slog.Logger
	component string
}

// New builds a Logger from cfg.
func New(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: slog.Level(cfg.Level)}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return &Logger{base: slog.New(handler)}
}

// WithComponent returns a child logger that tags every record with the
// given component name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		base:      l.base.With("component", name),
		component: name,
	}
}

// WithError returns a child logger that carries err as an attribute on
// every record logged through it.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return &Logger{base: l.base.With("error", err.Error()), component: l.component}
}

// Component returns the name this logger was tagged with, if any.
func (l *Logger) Component() string { return l.component }

func (l *Logger) Debug(msg string, args ...any) { l.base.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.base.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.base.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.base.Error(msg, args...) }

func (l *Logger) DebugCtx(ctx context.Context, msg string, args ...any) {
	l.base.DebugContext(ctx, msg, args...)
}
func (l *Logger) InfoCtx(ctx context.Context, msg string, args ...any) {
	l.base.InfoContext(ctx, msg, args...)
}
func (l *Logger) WarnCtx(ctx context.Context, msg string, args ...any) {
	l.base.WarnContext(ctx, msg, args...)
}
func (l *Logger) ErrorCtx(ctx context.Context, msg string, args ...any) {
	l.base.ErrorContext(ctx, msg, args...)
}

var (
	defaultMu     sync.Mutex
	defaultLogger atomic.Pointer[Logger]
)

func init() {
	defaultLogger.Store(New(DefaultConfig()))
}

// SetDefault replaces the package-level default logger.
func SetDefault(l *Logger) {
	if l == nil {
		return
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger.Store(l)
}

// Default returns the current package-level default logger.
func Default() *Logger {
	return defaultLogger.Load()
}

// WithComponent returns a component-tagged child of the default logger.
func WithComponent(name string) *Logger {
	return Default().WithComponent(name)
}

func Debug(msg string, args ...any) { Default().Debug(msg, args...) }
func Info(msg string, args ...any)  { Default().Info(msg, args...) }
func Warn(msg string, args ...any)  { Default().Warn(msg, args...) }
func Error(msg string, args ...any) { Default().Error(msg, args...) }
