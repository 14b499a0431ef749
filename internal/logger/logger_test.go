package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	l.Skipped("a.txt", "not a note")
	if buf.Len() != 0 {
		t.Errorf("debug line written at info level: %q", buf.String())
	}

	l.SyncCompleted("sqlite", 3, 2, 1, 1500*time.Millisecond)
	out := buf.String()
	for _, want := range []string{"sync completed", "store=sqlite", "records=3", "created=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithLevel(&buf, log.DebugLevel)

	l.RecordCollected("people/alice.md", "alice", false)
	if !strings.Contains(buf.String(), "record collected") {
		t.Errorf("missing debug line: %q", buf.String())
	}

	buf.Reset()
	l.RecordCollected("old/alice.md", "alice", true)
	if !strings.Contains(buf.String(), "duplicate record name") {
		t.Errorf("missing warning: %q", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Info("ignored")
	l.WalkStarted("/vault", nil)
}
