// Package logger provides a simple leveled logger for the application.
// It supports three levels: off (no output), normal (info/warn/error),
// and verbose (includes debug). Output goes through zerolog, either as
// human-readable console lines or as JSON. The logger is safe for
// concurrent use.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Level controls the verbosity of the logger.
type Level int

const (
	// LevelOff disables all log output.
	LevelOff Level = iota
	// LevelNormal enables info, warn, and error output.
	LevelNormal
	// LevelVerbose enables all output including debug.
	LevelVerbose
)

// ParseLevel maps a config string ("off", "info", "debug", ...) to a Level.
// Unknown strings map to LevelNormal.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "quiet", "none", "disabled":
		return LevelOff
	case "debug", "verbose", "trace":
		return LevelVerbose
	default:
		return LevelNormal
	}
}

// Option configures a logger.
type Option func(*options)

type options struct {
	json bool
}

// WithJSON switches output to one JSON object per line.
func WithJSON() Option {
	return func(o *options) { o.json = true }
}

// shared holds the level so child loggers follow SetLevel on the parent.
type shared struct {
	mu    sync.RWMutex
	level Level
}

// Logger is a leveled logger. All methods are safe for concurrent use.
type Logger struct {
	state *shared
	zl    zerolog.Logger
}

// New creates a logger with the given level, writing to the given output.
// If out is nil, os.Stderr is used.
func New(level Level, out io.Writer, opts ...Option) *Logger {
	if out == nil {
		out = os.Stderr
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	w := out
	if !o.json {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly, NoColor: true}
	}

	return &Logger{
		state: &shared{level: level},
		zl:    zerolog.New(w).Level(zerolog.DebugLevel).With().Timestamp().Logger(),
	}
}

// With returns a child logger tagged with a component name. The child
// shares the parent's level.
func (l *Logger) With(component string) *Logger {
	return &Logger{
		state: l.state,
		zl:    l.zl.With().Str("component", component).Logger(),
	}
}

// Zerolog exposes the underlying logger for libraries that want one,
// filtered to the current level.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zl.Level(toZerolog(l.GetLevel()))
}

// SetLevel changes the log level at runtime.
func (l *Logger) SetLevel(level Level) {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	l.state.level = level
}

// GetLevel returns the current log level.
func (l *Logger) GetLevel() Level {
	l.state.mu.RLock()
	defer l.state.mu.RUnlock()
	return l.state.level
}

// Debug logs a message at debug level (only visible in verbose mode).
func (l *Logger) Debug(format string, args ...any) {
	if l.GetLevel() >= LevelVerbose {
		l.zl.Debug().Msg(fmt.Sprintf(format, args...))
	}
}

// Info logs a message at info level.
func (l *Logger) Info(format string, args ...any) {
	if l.GetLevel() >= LevelNormal {
		l.zl.Info().Msg(fmt.Sprintf(format, args...))
	}
}

// Warn logs a message at warn level.
func (l *Logger) Warn(format string, args ...any) {
	if l.GetLevel() >= LevelNormal {
		l.zl.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

// Error logs a message at error level.
func (l *Logger) Error(format string, args ...any) {
	if l.GetLevel() >= LevelNormal {
		l.zl.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func toZerolog(level Level) zerolog.Level {
	switch level {
	case LevelOff:
		return zerolog.Disabled
	case LevelVerbose:
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}
