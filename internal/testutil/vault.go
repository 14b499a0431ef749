// Package testutil provides reusable helpers for tests that need a vault on disk.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TestVault represents a temporary vault for testing.
type TestVault struct {
	Path  string
	t     *testing.T
	files map[string]string
	order []string
}

// NewTestVault creates a new test vault builder.
// Call Build() to create the actual vault directory.
func NewTestVault(t *testing.T) *TestVault {
	t.Helper()
	return &TestVault{
		t:     t,
		files: make(map[string]string),
	}
}

// WithFile adds a file to the vault.
// The path is relative to the vault root and uses forward slashes.
func (v *TestVault) WithFile(path, content string) *TestVault {
	if _, ok := v.files[path]; !ok {
		v.order = append(v.order, path)
	}
	v.files[path] = content
	return v
}

// WithNote adds a note with a front matter block. frontmatter is raw YAML
// without delimiters; an empty string writes the body alone.
func (v *TestVault) WithNote(path, frontmatter, body string) *TestVault {
	if frontmatter == "" {
		return v.WithFile(path, body)
	}
	return v.WithFile(path, "---\n"+frontmatter+"---\n"+body)
}

// Build creates the vault directory and all configured files.
// Returns the TestVault for method chaining.
func (v *TestVault) Build() *TestVault {
	v.t.Helper()

	v.Path = v.t.TempDir()
	for _, path := range v.order {
		v.writeFile(path, v.files[path])
	}
	return v
}

// Abs returns the absolute path of a vault-relative path.
func (v *TestVault) Abs(relPath string) string {
	return filepath.Join(v.Path, filepath.FromSlash(relPath))
}

// writeFile writes a file to the vault, creating directories as needed.
func (v *TestVault) writeFile(relPath, content string) {
	v.t.Helper()
	fullPath := v.Abs(relPath)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.t.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		v.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}
}

// ReadFile reads a file from the vault.
// Returns the content as a string.
func (v *TestVault) ReadFile(relPath string) string {
	v.t.Helper()
	content, err := os.ReadFile(v.Abs(relPath))
	if err != nil {
		v.t.Fatalf("failed to read file %s: %v", relPath, err)
	}
	return string(content)
}

// FileExists checks if a file exists in the vault.
func (v *TestVault) FileExists(relPath string) bool {
	v.t.Helper()
	_, err := os.Stat(v.Abs(relPath))
	return err == nil
}

// Snapshot returns the content of every configured file, keyed by path.
func (v *TestVault) Snapshot() map[string]string {
	v.t.Helper()
	out := make(map[string]string, len(v.order))
	for _, path := range v.order {
		out[path] = v.ReadFile(path)
	}
	return out
}
