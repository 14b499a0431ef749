// Package fieldmap projects note front matter into remote records.
package fieldmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aidanlsb/vaultkit/internal/note"
)

// NameColumn is the record key every record carries.
const NameColumn = "Name"

// Rule maps one front matter key to one remote column.
type Rule struct {
	Source string `toml:"source" json:"source"`
	Column string `toml:"column" json:"column"`

	// SyncEmpty sends a null value when the source key is present but empty.
	// When false such a key is left out of the record entirely.
	SyncEmpty bool `toml:"sync_empty" json:"sync_empty"`
}

// DefaultRules is the rule table used when the config does not define one.
var DefaultRules = []Rule{
	{Source: "birth date", Column: "Birth Date", SyncEmpty: true},
	{Source: "phone number", Column: "Phone Number", SyncEmpty: true},
}

// ValidateRules rejects rules that cannot produce a usable record.
func ValidateRules(rules []Rule) error {
	seen := make(map[string]bool, len(rules))
	for i, r := range rules {
		if strings.TrimSpace(r.Source) == "" {
			return fmt.Errorf("field rule %d: source is empty", i+1)
		}
		if strings.TrimSpace(r.Column) == "" {
			return fmt.Errorf("field rule %d (%s): column is empty", i+1, r.Source)
		}
		if r.Column == NameColumn {
			return fmt.Errorf("field rule %d (%s): column %q is reserved", i+1, r.Source, NameColumn)
		}
		if seen[r.Column] {
			return fmt.Errorf("field rule %d (%s): column %q is mapped twice", i+1, r.Source, r.Column)
		}
		seen[r.Column] = true
	}
	return nil
}

// Record is an ordered column to value mapping.
type Record struct {
	keys   []string
	values map[string]interface{}
}

// NewRecord returns a record holding only the Name column.
func NewRecord(name string) *Record {
	r := &Record{values: make(map[string]interface{})}
	r.Set(NameColumn, name)
	return r
}

// Set assigns a column, keeping its first position when it already exists.
func (r *Record) Set(column string, value interface{}) {
	if _, ok := r.values[column]; !ok {
		r.keys = append(r.keys, column)
	}
	r.values[column] = value
}

// Get returns a column value.
func (r *Record) Get(column string) (interface{}, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Has reports whether the column is set, including to nil.
func (r *Record) Has(column string) bool {
	_, ok := r.values[column]
	return ok
}

// Name returns the Name column.
func (r *Record) Name() string {
	s, _ := r.values[NameColumn].(string)
	return s
}

// Keys returns the columns in insertion order.
func (r *Record) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Fields returns the columns as a plain map.
func (r *Record) Fields() map[string]interface{} {
	out := make(map[string]interface{}, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// MarshalJSON writes the columns in insertion order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Map builds the record for a note called name. Rules are applied in order
// and only to keys present in fm. Values are passed through as their plain
// Go form; dates stay in their written form.
func Map(name string, fm *note.Frontmatter, rules []Rule) *Record {
	rec := NewRecord(name)
	if fm == nil {
		return rec
	}
	for _, rule := range rules {
		v, ok := fm.Get(rule.Source)
		if !ok {
			continue
		}
		if v.IsNull() {
			if rule.SyncEmpty {
				rec.Set(rule.Column, nil)
			}
			continue
		}
		rec.Set(rule.Column, v.Raw())
	}
	return rec
}
