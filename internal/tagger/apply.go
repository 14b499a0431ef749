package tagger

import (
	"fmt"

	"github.com/aidanlsb/vaultkit/internal/note"
	"github.com/aidanlsb/vaultkit/internal/tags"
	"github.com/aidanlsb/vaultkit/internal/vault"
)

// EventKind classifies one file handled by Apply.
type EventKind int

const (
	EventAdded EventKind = iota + 1
	EventAlreadyPresent
	EventSkippedNonNote
)

func (k EventKind) String() string {
	switch k {
	case EventAdded:
		return "added"
	case EventAlreadyPresent:
		return "already_present"
	case EventSkippedNonNote:
		return "skipped_non_note"
	default:
		return "unknown"
	}
}

// Message is the line printed for the event.
func (k EventKind) Message() string {
	switch k {
	case EventAdded:
		return "Added tag"
	case EventAlreadyPresent:
		return "Skipped (tag already present)"
	case EventSkippedNonNote:
		return "Skipped (non-markdown file)"
	default:
		return "Unknown"
	}
}

// Event reports what happened to one file.
type Event struct {
	Kind EventKind `json:"-"`
	Path string    `json:"path"`
}

// ApplyOptions controls a bulk tag run.
type ApplyOptions struct {
	// DryRun reports what would be added without writing anything.
	DryRun bool
	Walk   vault.Options
}

// Summary counts the events of an Apply run.
type Summary struct {
	Tag            string   `json:"tag"`
	Added          []string `json:"added"`
	AlreadyPresent []string `json:"already_present"`
	Skipped        []string `json:"skipped"`
	DryRun         bool     `json:"dry_run,omitempty"`
}

// Apply adds tag to every note under root. report, if set, is called once per
// file in walk order. The first read or write failure ends the run; notes
// already rewritten stay rewritten.
func Apply(root, tag string, opts ApplyOptions, report func(Event)) (*Summary, error) {
	tag, err := NormalizeTag(tag)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Tag:            tag,
		Added:          []string{},
		AlreadyPresent: []string{},
		Skipped:        []string{},
		DryRun:         opts.DryRun,
	}
	emit := func(kind EventKind, path string) {
		switch kind {
		case EventAdded:
			summary.Added = append(summary.Added, path)
		case EventAlreadyPresent:
			summary.AlreadyPresent = append(summary.AlreadyPresent, path)
		case EventSkippedNonNote:
			summary.Skipped = append(summary.Skipped, path)
		}
		if report != nil {
			report(Event{Kind: kind, Path: path})
		}
	}

	walkOpts := opts.Walk
	userSkip := walkOpts.OnSkip
	walkOpts.OnSkip = func(path string) {
		if userSkip != nil {
			userSkip(path)
		}
		emit(EventSkippedNonNote, path)
	}

	paths, err := vault.Notes(root, &walkOpts)
	if err != nil {
		return nil, err
	}

	for path, err := range paths {
		if err != nil {
			return summary, fmt.Errorf("walk %s: %w", path, err)
		}

		outcome, err := addOne(path, tag, opts.DryRun)
		if err != nil {
			return summary, err
		}
		if outcome == OutcomeAdded {
			emit(EventAdded, path)
		} else {
			emit(EventAlreadyPresent, path)
		}
	}

	return summary, nil
}

func addOne(path, tag string, dryRun bool) (Outcome, error) {
	n, err := note.Read(path)
	if err != nil {
		return 0, err
	}
	existing := tags.FromNote(n)
	if Present(existing, tag) {
		return OutcomeAlreadyPresent, nil
	}
	if dryRun {
		return OutcomeAdded, nil
	}
	return OutcomeAdded, write(n, tag, existing)
}
