// Package atomicfile replaces note, key and token files without leaving a
// torn file behind.
package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultPerm is used for new files when no mode is given.
const DefaultPerm os.FileMode = 0o644

// KeepPerm keeps the mode of the file being replaced.
const KeepPerm os.FileMode = 0

// Pending is a temporary sibling of its target. Nothing is visible at the
// target until Commit.
type Pending struct {
	*os.File
	target string
	done   bool
}

// Create opens a pending replacement for path. See WriteFile for perm.
func Create(path string, perm os.FileMode) (*Pending, error) {
	if perm == KeepPerm {
		perm = DefaultPerm
		if st, err := os.Stat(path); err == nil {
			perm = st.Mode().Perm()
		}
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	// chmod can fail on some filesystems; the write still goes ahead.
	_ = f.Chmod(perm)
	return &Pending{File: f, target: path}, nil
}

// Commit flushes the temporary file and renames it over the target.
func (p *Pending) Commit() error {
	if p.done {
		return fmt.Errorf("%s: already finished", p.target)
	}
	p.done = true
	tmp := p.Name()

	if err := p.Sync(); err != nil {
		p.discard()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := p.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp, p.target); err != nil {
		// Windows will not rename over an existing file.
		_ = os.Remove(p.target)
		if err2 := os.Rename(tmp, p.target); err2 != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("rename temp file: %w", err)
		}
	}
	return nil
}

// Abort drops the temporary file. It is a no-op after Commit.
func (p *Pending) Abort() {
	if p.done {
		return
	}
	p.done = true
	p.discard()
}

func (p *Pending) discard() {
	_ = p.Close()
	_ = os.Remove(p.Name())
}

// WriteFile replaces path with data. With KeepPerm the mode of the existing
// file is kept, or DefaultPerm is used for a new file.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	p, err := Create(path, perm)
	if err != nil {
		return err
	}
	defer p.Abort()

	if _, err := p.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	return p.Commit()
}
