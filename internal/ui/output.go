package ui

import (
	"fmt"
	"time"
)

// Mark is the leading symbol of a status line.
type Mark string

const (
	MarkDone    Mark = "✓"
	MarkFailed  Mark = "✗"
	MarkNotice  Mark = "⚠"
	MarkPreview Mark = "ℹ"
)

// Line prefixes a formatted message with m.
func Line(m Mark, format string, args ...interface{}) string {
	return string(m) + " " + fmt.Sprintf(format, args...)
}

// Error formats a failure the way Execute prints it.
func Error(msg string) string {
	return Line(MarkFailed, "%s", msg)
}

// Header returns a styled section header
func Header(msg string) string {
	return Bold.Render(msg)
}

// FilePath returns an accent-styled file path
func FilePath(path string) string {
	return Accent.Render(path)
}

// Tag returns an accent-styled tag with its marker.
func Tag(tag string) string {
	return Accent.Render("#" + tag)
}

// Hint returns muted hint text
func Hint(msg string) string {
	return Muted.Render(msg)
}

// Count returns a count with the right noun, e.g. "3 notes".
func Count(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}

func records(n int) string { return Count(n, "record", "records") }

// SyncDone is the closing line of a sync that reached its store.
func SyncDone(n int, store string, created, updated int) string {
	return Line(MarkDone, "Synced %s to %s (%d created, %d updated)", records(n), store, created, updated)
}

// SyncPreview closes a dry-run sync.
func SyncPreview(n int) string {
	return Hint(fmt.Sprintf("dry run: %s collected, nothing sent", records(n)))
}

// TagPreview closes a dry-run tag apply.
func TagPreview(notes int, tag string) string {
	return Line(MarkPreview, "dry run: %s would get %s", Count(notes, "note", "notes"), Tag(tag))
}

// SyncRun is one row of the run history, in local time.
func SyncRun(started time.Time, id string, n, created, updated int) string {
	return fmt.Sprintf("%s  %s  %s (%d created, %d updated)",
		started.Local().Format(time.DateTime), Hint(id), records(n), created, updated)
}
