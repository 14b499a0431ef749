package note

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Delimiter opens and closes a front matter block.
const Delimiter = "---"

// Frontmatter is the parsed metadata block of a note. It keeps the YAML
// mapping node so that a rewrite only touches the keys that were changed;
// order, comments and styles of the other keys survive.
type Frontmatter struct {
	node *yaml.Node
}

// NewFrontmatter returns an empty front matter mapping.
func NewFrontmatter() *Frontmatter {
	return &Frontmatter{node: &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}}
}

// Len returns the number of keys.
func (f *Frontmatter) Len() int {
	return len(f.node.Content) / 2
}

// Keys returns the keys in document order.
func (f *Frontmatter) Keys() []string {
	keys := make([]string, 0, f.Len())
	seen := make(map[string]bool, f.Len())
	for i := 0; i+1 < len(f.node.Content); i += 2 {
		k := f.node.Content[i].Value
		if seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}

// Has reports whether key is present, even with a null value.
func (f *Frontmatter) Has(key string) bool {
	return f.valueNode(key) != nil
}

// Get returns the value of key. A duplicated key resolves to its last
// occurrence, the way YAML loaders usually behave.
func (f *Frontmatter) Get(key string) (Value, bool) {
	n := f.valueNode(key)
	if n == nil {
		return Value{}, false
	}
	return ValueFromNode(n), true
}

// Map returns all fields as plain Go values.
func (f *Frontmatter) Map() map[string]interface{} {
	out := make(map[string]interface{}, f.Len())
	for _, k := range f.Keys() {
		v, _ := f.Get(k)
		out[k] = v.Raw()
	}
	return out
}

// SetStringList replaces key with a sequence of strings, appending the key
// when it is not present yet. An existing sequence keeps its flow/block style.
func (f *Frontmatter) SetStringList(key string, items []string) {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, item := range items {
		seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: item})
	}

	for i := len(f.node.Content) - 2; i >= 0; i -= 2 {
		if f.node.Content[i].Value != key {
			continue
		}
		old := f.node.Content[i+1]
		if old.Kind == yaml.SequenceNode {
			seq.Style = old.Style
		}
		seq.LineComment = old.LineComment
		f.node.Content[i+1] = seq
		return
	}

	f.node.Content = append(f.node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		seq,
	)
}

// Marshal renders the mapping as YAML without delimiters.
func (f *Frontmatter) Marshal() ([]byte, error) {
	if f.Len() == 0 {
		return nil, nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f.node); err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}
	return buf.Bytes(), nil
}

func (f *Frontmatter) valueNode(key string) *yaml.Node {
	for i := len(f.node.Content) - 2; i >= 0; i -= 2 {
		if f.node.Content[i].Value == key {
			return f.node.Content[i+1]
		}
	}
	return nil
}

// SplitFrontmatter separates a leading front matter block from the body.
// The block is present only when the first line is the delimiter and a later
// line closes it. The body is everything after the closing line, byte for byte.
// If there is no complete block, ok is false and body is the whole content.
func SplitFrontmatter(content string) (block string, body string, ok bool) {
	first, _, found := strings.Cut(content, "\n")
	if !found || !isDelimiter(first) {
		return "", content, false
	}

	start := len(first) + 1
	pos := start
	for pos <= len(content) {
		end := strings.IndexByte(content[pos:], '\n')
		line, next := content[pos:], len(content)
		if end >= 0 {
			line, next = content[pos:pos+end], pos+end+1
		}
		if isDelimiter(line) {
			return content[start:pos], content[next:], true
		}
		if end < 0 {
			break
		}
		pos = next
	}

	return "", content, false
}

func isDelimiter(line string) bool {
	return strings.TrimRight(line, " \t\r") == Delimiter
}

// parseFrontmatter decodes a block into a mapping node.
func parseFrontmatter(block string) (*Frontmatter, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(block), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter as YAML: %w", err)
	}

	// An empty block (or one with only comments) decodes to nothing.
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return NewFrontmatter(), nil
	}

	root := doc.Content[0]
	switch {
	case root.Kind == yaml.MappingNode:
		return &Frontmatter{node: root}, nil
	case root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null":
		return NewFrontmatter(), nil
	default:
		return nil, fmt.Errorf("frontmatter must be a mapping, got %s", nodeKindName(root.Kind))
	}
}

func nodeKindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "a list"
	case yaml.ScalarNode:
		return "a scalar"
	case yaml.AliasNode:
		return "an alias"
	default:
		return "an unknown node"
	}
}
