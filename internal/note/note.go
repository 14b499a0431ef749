// Package note reads and writes markdown notes with YAML front matter.
package note

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Ext is the extension that marks a file as a note.
const Ext = ".md"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Note is a markdown file split into front matter and body.
type Note struct {
	// Path is the file the note was read from.
	Path string

	// Name is the filename without the note extension.
	Name string

	// Frontmatter is never nil; a note without a block has an empty mapping.
	Frontmatter *Frontmatter

	// Body is everything after the front matter block, unchanged.
	Body string

	// HasFrontmatter reports whether the file had a complete block.
	HasFrontmatter bool

	// BOM reports whether the file started with a UTF-8 byte order mark.
	BOM bool
}

// NotFoundError means the path is not a regular file.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not a file: %s", e.Path)
}

// WrongKindError means the file does not carry the note extension.
type WrongKindError struct {
	Path string
}

func (e *WrongKindError) Error() string {
	return fmt.Sprintf("not a markdown file (want %s): %s", Ext, e.Path)
}

// MalformedError means the file could not be decoded as a note.
type MalformedError struct {
	Path string
	Err  error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed note %s: %v", e.Path, e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// CheckPath verifies that path is a regular file with the note extension.
func CheckPath(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return &NotFoundError{Path: path}
	}
	if filepath.Ext(path) != Ext {
		return &WrongKindError{Path: path}
	}
	return nil
}

// NameOf returns the note name for a path: the base name minus the extension.
func NameOf(path string) string {
	return strings.TrimSuffix(filepath.Base(path), Ext)
}

// Read loads and parses the note at path.
func Read(path string) (*Note, error) {
	if err := CheckPath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(path, data)
}

// DecodeText strips a leading byte order mark and checks the content is UTF-8.
func DecodeText(path string, data []byte) (text string, bom bool, err error) {
	if bytes.HasPrefix(data, utf8BOM) {
		data = data[len(utf8BOM):]
		bom = true
	}
	if !utf8.Valid(data) {
		return "", bom, &MalformedError{Path: path, Err: fmt.Errorf("content is not valid UTF-8")}
	}
	return string(data), bom, nil
}

// Parse builds a Note from raw file content.
func Parse(path string, data []byte) (*Note, error) {
	content, bom, err := DecodeText(path, data)
	if err != nil {
		return nil, err
	}

	n := &Note{
		Path:        path,
		Name:        NameOf(path),
		Frontmatter: NewFrontmatter(),
		Body:        content,
		BOM:         bom,
	}

	block, body, ok := SplitFrontmatter(content)
	if !ok {
		return n, nil
	}

	fm, err := parseFrontmatter(block)
	if err != nil {
		return nil, &MalformedError{Path: path, Err: err}
	}

	n.Frontmatter = fm
	n.Body = body
	n.HasFrontmatter = true
	return n, nil
}

// Render serializes the note: the front matter block followed by the
// original body. The byte order mark is restored if the file had one.
func (n *Note) Render() ([]byte, error) {
	yamlData, err := n.Frontmatter.Marshal()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if n.BOM {
		buf.Write(utf8BOM)
	}
	if n.HasFrontmatter || len(yamlData) > 0 {
		buf.WriteString(Delimiter + "\n")
		buf.Write(yamlData)
		buf.WriteString(Delimiter + "\n")
	}
	buf.WriteString(n.Body)
	return buf.Bytes(), nil
}
