// Package tags extracts the tag set of a note.
package tags

import (
	"sort"
	"strings"
)

// Set is an unordered set of tags. Storage is case-sensitive; HasFold is
// the case-insensitive presence check used before adding a tag.
type Set map[string]struct{}

// NewSet builds a set from the given tags.
func NewSet(items ...string) Set {
	s := make(Set, len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

// Add inserts a tag.
func (s Set) Add(tag string) {
	s[tag] = struct{}{}
}

// Has reports an exact match.
func (s Set) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// HasFold reports a case-insensitive match.
func (s Set) HasFold(tag string) bool {
	for existing := range s {
		if strings.EqualFold(existing, tag) {
			return true
		}
	}
	return false
}

// Union returns a new set with the tags of both sets.
func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for t := range s {
		out[t] = struct{}{}
	}
	for t := range other {
		out[t] = struct{}{}
	}
	return out
}

// Equal reports whether both sets hold the same tags.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for t := range s {
		if !other.Has(t) {
			return false
		}
	}
	return true
}

// Sorted returns the tags in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
