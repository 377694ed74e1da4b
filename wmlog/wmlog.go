// Package wmlog is the window manager's structured logger (spec.md §7:
// RenderFault and DriverIOFault "are logged"; §4.C5 a faulting control
// is "replaced with a diagnostic row and logged").
//
// Grounded on dayronmiranda-claude-monitor's pkg/logger: a slog.Logger
// wrapped with a settable level, a package-level default built once via
// sync.Once, and a Config{Level, Format, Output} the caller can swap in
// with Init before the default is first touched. Trimmed of that
// package's HTTP request-id/context plumbing, which has no counterpart
// in a cooperative single-process loop.
package wmlog

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

// Logger wraps a *slog.Logger with a runtime-adjustable level.
type Logger struct {
	*slog.Logger
	level *slog.LevelVar
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Config selects the default logger's level, handler format ("text" or
// "json"), and destination.
type Config struct {
	Level  string
	Format string
	Output io.Writer
}

// DefaultConfig logs at info level as text to stderr, so driver output
// on stdout is never interleaved with diagnostics.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "text", Output: os.Stderr}
}

// New builds a Logger from cfg.
func New(cfg Config) *Logger {
	level := new(slog.LevelVar)
	level.Set(parseLevel(cfg.Level))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}
	return &Logger{Logger: slog.New(handler), level: level}
}

// Get returns the package-default Logger, building it from
// DefaultConfig on first use.
func Get() *Logger {
	once.Do(func() { defaultLogger = New(DefaultConfig()) })
	return defaultLogger
}

// Init replaces the package default with one built from cfg. Callers
// that want JSON output or a different destination call this before
// the first Get (e.g. at the top of cmd/demo/main.go); once Get has run
// once, Init still takes effect since both read the same package var.
func Init(cfg Config) *Logger {
	defaultLogger = New(cfg)
	return defaultLogger
}

// SetLevel adjusts the logger's minimum level without rebuilding its
// handler.
func (l *Logger) SetLevel(level string) {
	l.level.Set(parseLevel(level))
}

func parseLevel(level string) slog.Level {
	switch level {
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
