// Package tagger adds tags to notes by rewriting their front matter.
package tagger

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/aidanlsb/vaultkit/internal/atomicfile"
	"github.com/aidanlsb/vaultkit/internal/note"
	"github.com/aidanlsb/vaultkit/internal/tags"
)

// Marker is the inline tag marker stripped from requested tags.
const Marker = "#"

// Outcome is the result of adding a tag to one note.
type Outcome int

const (
	// OutcomeAdded means the note was rewritten with the new tag.
	OutcomeAdded Outcome = iota + 1
	// OutcomeAlreadyPresent means the note already had the tag, ignoring case.
	OutcomeAlreadyPresent
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdded:
		return "added"
	case OutcomeAlreadyPresent:
		return "already_present"
	default:
		return "unknown"
	}
}

// InvalidTagError is returned for a tag that is empty or unusable.
type InvalidTagError struct {
	Tag    string
	Reason string
}

func (e *InvalidTagError) Error() string {
	return fmt.Sprintf("invalid tag %q: %s", e.Tag, e.Reason)
}

// NormalizeTag trims whitespace and strips one leading marker, so "#Project"
// and "Project" name the same tag.
func NormalizeTag(raw string) (string, error) {
	tag := strings.TrimPrefix(strings.TrimSpace(raw), Marker)
	if tag == "" {
		return "", &InvalidTagError{Tag: raw, Reason: "tag is empty"}
	}
	if strings.IndexFunc(tag, unicode.IsSpace) >= 0 {
		return "", &InvalidTagError{Tag: raw, Reason: "tags cannot contain whitespace"}
	}
	return tag, nil
}

// Present reports whether tag is already in the set, exactly or ignoring case.
func Present(existing tags.Set, tag string) bool {
	return existing.Has(tag) || existing.HasFold(tag)
}

// AddTag adds tag to the note at path. existing may carry the note's current
// tag set to avoid reading it twice; nil means extract it here.
//
// The only change written is the front matter tags key, which becomes the
// union of the current tags and the new one. The body is written back byte
// for byte. A present tag (ignoring case) is a no-op with zero writes.
func AddTag(path, tag string, existing tags.Set) (Outcome, error) {
	tag, err := NormalizeTag(tag)
	if err != nil {
		return 0, err
	}

	var n *note.Note
	if existing == nil {
		n, err = note.Read(path)
		if err != nil {
			return 0, err
		}
		existing = tags.FromNote(n)
	}

	if Present(existing, tag) {
		return OutcomeAlreadyPresent, nil
	}

	if n == nil {
		n, err = note.Read(path)
		if err != nil {
			return 0, err
		}
	}
	return OutcomeAdded, write(n, tag, existing)
}

func write(n *note.Note, tag string, existing tags.Set) error {
	merged := existing.Union(tags.NewSet(tag))
	n.Frontmatter.SetStringList(tags.FrontmatterKey, orderTags(tags.FrontmatterTagList(n.Frontmatter), merged))

	data, err := n.Render()
	if err != nil {
		return fmt.Errorf("render %s: %w", n.Path, err)
	}
	if err := atomicfile.WriteFile(n.Path, data, atomicfile.KeepPerm); err != nil {
		return fmt.Errorf("write %s: %w", n.Path, err)
	}
	return nil
}

// orderTags keeps the tags already listed in front matter where they were and
// appends the rest sorted, so rewrites stay stable between runs.
func orderTags(listed []string, all tags.Set) []string {
	out := make([]string, 0, len(all))
	kept := tags.NewSet()
	for _, t := range listed {
		if all.Has(t) {
			out = append(out, t)
			kept.Add(t)
		}
	}
	var rest []string
	for t := range all {
		if !kept.Has(t) {
			rest = append(rest, t)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}
