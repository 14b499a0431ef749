// Package vault enumerates the notes of a vault directory.
package vault

import (
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aidanlsb/vaultkit/internal/note"
)

// EntryKind tells notes apart from the other files found during a walk.
type EntryKind int

const (
	// KindNote is a file with the note extension.
	KindNote EntryKind = iota + 1
	// KindSkipped is any other file.
	KindSkipped
)

func (k EntryKind) String() string {
	switch k {
	case KindNote:
		return "note"
	case KindSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Entry is one file visited by Walk.
type Entry struct {
	Path         string
	RelativePath string
	Kind         EntryKind
}

// IsNote reports whether the entry is a note.
func (e Entry) IsNote() bool {
	return e.Kind == KindNote
}

// Options controls a walk.
type Options struct {
	// Exclude holds doublestar patterns matched against the slash separated
	// path relative to the root. Matching directories are not descended into;
	// matching files are neither yielded nor reported.
	Exclude []string

	// OnSkip, if set, is called with the path of every non-note file.
	OnSkip func(path string)
}

// NotADirectoryError means the walk root is missing or not a directory.
type NotADirectoryError struct {
	Path    string
	Missing bool
}

func (e *NotADirectoryError) Error() string {
	if e.Missing {
		return fmt.Sprintf("directory does not exist: %s", e.Path)
	}
	return fmt.Sprintf("not a directory: %s", e.Path)
}

// InvalidPatternError is returned for an exclude pattern doublestar rejects.
type InvalidPatternError struct {
	Pattern string
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid exclude pattern: %q", e.Pattern)
}

// ValidateRoot checks that root exists and is a directory.
func ValidateRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return &NotADirectoryError{Path: root, Missing: os.IsNotExist(err)}
	}
	if !info.IsDir() {
		return &NotADirectoryError{Path: root}
	}
	return nil
}

// Walk validates root and returns a lazy walk over its files. Each range
// over the returned sequence starts a fresh walk. Files are visited depth
// first in lexical order, so an unchanged tree always yields the same
// sequence. I/O errors are yielded with the entry they concern; the caller
// decides whether to stop.
func Walk(root string, opts *Options) (iter.Seq2[Entry, error], error) {
	if err := ValidateRoot(root); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &Options{}
	}
	for _, p := range opts.Exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, &InvalidPatternError{Pattern: p}
		}
	}

	return func(yield func(Entry, error) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			rel, _ := filepath.Rel(root, path)
			if err != nil {
				if !yield(Entry{Path: path, RelativePath: rel}, err) {
					return filepath.SkipAll
				}
				return nil
			}
			if rel == "." {
				return nil
			}

			if excluded(opts.Exclude, filepath.ToSlash(rel)) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}

			entry := Entry{Path: path, RelativePath: rel, Kind: KindSkipped}
			if filepath.Ext(path) == note.Ext {
				entry.Kind = KindNote
			} else if opts.OnSkip != nil {
				opts.OnSkip(path)
			}

			if !yield(entry, nil) {
				return filepath.SkipAll
			}
			return nil
		})
	}, nil
}

// Notes is Walk narrowed to note paths. Non-note files still reach
// opts.OnSkip.
func Notes(root string, opts *Options) (iter.Seq2[string, error], error) {
	entries, err := Walk(root, opts)
	if err != nil {
		return nil, err
	}
	return func(yield func(string, error) bool) {
		for entry, err := range entries {
			if err != nil {
				if !yield(entry.Path, err) {
					return
				}
				continue
			}
			if !entry.IsNote() {
				continue
			}
			if !yield(entry.Path, nil) {
				return
			}
		}
	}, nil
}

func excluded(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
