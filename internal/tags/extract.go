package tags

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aidanlsb/vaultkit/internal/note"
)

// FrontmatterKey is the front matter field holding a list of tags.
const FrontmatterKey = "tags"

// Mode selects how the front matter half of the tag set is read.
type Mode int

const (
	// ModeFrontmatter reads the tags key from the parsed note. This is the
	// canonical mode and the one every command uses.
	ModeFrontmatter Mode = iota

	// ModeRederive re-reads the file and decodes the front matter block on
	// its own into plain Go values. It must agree with ModeFrontmatter.
	ModeRederive
)

// Extract returns every tag of the note at path: inline body tags unioned
// with the string elements of the front matter tags list.
func Extract(path string, mode Mode) (Set, error) {
	switch mode {
	case ModeFrontmatter:
		n, err := note.Read(path)
		if err != nil {
			return nil, err
		}
		return FromNote(n), nil
	case ModeRederive:
		return rederive(path)
	default:
		return nil, fmt.Errorf("unknown tag extraction mode %d", mode)
	}
}

// FromNote returns the tag set of an already parsed note.
func FromNote(n *note.Note) Set {
	return Inline(n.Body).Union(FrontmatterTags(n.Frontmatter))
}

// FrontmatterTags returns the string elements of the tags key. A missing
// key, a non-list value and non-string elements all contribute nothing.
func FrontmatterTags(fm *note.Frontmatter) Set {
	out := NewSet()
	v, ok := fm.Get(FrontmatterKey)
	if !ok {
		return out
	}
	items, ok := v.AsList()
	if !ok {
		return out
	}
	for _, item := range items {
		if s, ok := item.AsString(); ok {
			out.Add(s)
		}
	}
	return out
}

// FrontmatterTagList is FrontmatterTags in document order, without duplicates.
func FrontmatterTagList(fm *note.Frontmatter) []string {
	v, ok := fm.Get(FrontmatterKey)
	if !ok {
		return nil
	}
	items, ok := v.AsList()
	if !ok {
		return nil
	}
	seen := NewSet()
	var out []string
	for _, item := range items {
		s, ok := item.AsString()
		if !ok || seen.Has(s) {
			continue
		}
		seen.Add(s)
		out = append(out, s)
	}
	return out
}

func rederive(path string) (Set, error) {
	if err := note.CheckPath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	content, _, err := note.DecodeText(path, data)
	if err != nil {
		return nil, err
	}

	block, body, ok := note.SplitFrontmatter(content)
	out := Inline(body)
	if !ok {
		return out, nil
	}

	var meta map[string]interface{}
	if err := yaml.Unmarshal([]byte(block), &meta); err != nil {
		return nil, &note.MalformedError{Path: path, Err: err}
	}

	raw, ok := meta[FrontmatterKey].([]interface{})
	if !ok {
		return out, nil
	}
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out.Add(s)
		}
	}
	return out, nil
}
