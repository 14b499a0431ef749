package ui

import (
	"bytes"
	"testing"
)

func TestSpinnerWithoutTerminalPrintsOnce(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Syncing 3 records")
	s.Start()
	s.Stop()

	if got := buf.String(); got != "Syncing 3 records...\n" {
		t.Errorf("output = %q", got)
	}
}
