// Package logger builds the structured logger used by the CLI.
package logger

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Logger wraps charm/log for structured logging.
type Logger struct {
	*log.Logger
}

// New creates a logger at info level.
func New(w io.Writer) *Logger {
	return NewWithLevel(w, log.InfoLevel)
}

// NewWithLevel creates a logger with a specific level.
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
		Prefix:          "wikimark",
	})
	return &Logger{Logger: l}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewWithLevel(io.Discard, log.FatalLevel)
}

// ParseLevel turns a config value into a level. Empty means warn.
func ParseLevel(s string) (log.Level, error) {
	if s == "" {
		return log.WarnLevel, nil
	}
	level, err := log.ParseLevel(s)
	if err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// Rendered logs a finished render.
func (l *Logger) Rendered(source, format string, size int, duration time.Duration) {
	l.Debug("rendered",
		"source", source,
		"format", format,
		"bytes", size,
		"duration", duration.Round(time.Microsecond))
}

// Compiled logs a finished compile.
func (l *Logger) Compiled(source string, static bool, size int) {
	l.Debug("compiled",
		"source", source,
		"static", static,
		"bytes", size)
}

// CacheHit logs a cache lookup that found compiled output.
func (l *Logger) CacheHit(key string) {
	l.Debug("cache hit", "key", key)
}

// CacheError logs a cache failure. Rendering continues without it.
func (l *Logger) CacheError(operation string, err error) {
	l.Warn("cache error",
		"operation", operation,
		"error", err)
}
