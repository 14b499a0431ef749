// Package logger wraps charm/log with helpers for vault operations.
package logger

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Logger wraps charm/log for structured logging
type Logger struct {
	*log.Logger
}

// New creates a logger at info level writing to w.
func New(w io.Writer) *Logger {
	return NewWithLevel(w, log.InfoLevel)
}

// NewWithLevel creates a logger with a specific level
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
		Prefix:          "vk",
	})
	return &Logger{Logger: l}
}

// Discard returns a logger that discards all output
func Discard() *Logger {
	return New(io.Discard)
}

// ConfigLoaded logs which config file was used.
func (l *Logger) ConfigLoaded(path string, found bool) {
	l.Debug("config loaded", "path", path, "found", found)
}

// WalkStarted logs the start of a vault walk.
func (l *Logger) WalkStarted(root string, exclude []string) {
	l.Debug("walk started", "root", root, "exclude", exclude)
}

// Skipped logs a file left out of an operation.
func (l *Logger) Skipped(file, reason string) {
	l.Debug("file skipped", "file", file, "reason", reason)
}

// RecordCollected logs a note turned into a record.
func (l *Logger) RecordCollected(file, name string, replaced bool) {
	if replaced {
		l.Warn("duplicate record name, replacing earlier note", "file", file, "name", name)
		return
	}
	l.Debug("record collected", "file", file, "name", name)
}

// SyncCompleted logs the end of a sync run.
func (l *Logger) SyncCompleted(store string, records, created, updated int, duration time.Duration) {
	l.Info("sync completed",
		"store", store,
		"records", records,
		"created", created,
		"updated", updated,
		"duration", duration.Round(time.Millisecond))
}
