package tags

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestInline(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{name: "single", body: "Met at #conference today", want: []string{"conference"}},
		{name: "start of text", body: "#a", want: []string{"a"}},
		{name: "nested kept whole", body: "see #area/work and #area/home", want: []string{"area/home", "area/work"}},
		{name: "trailing slash trimmed", body: "#project/ done", want: []string{"project"}},
		{name: "heading is not a tag", body: "# Heading\n## Sub", want: []string{}},
		{name: "tag inside heading", body: "## Notes #meeting", want: []string{"meeting"}},
		{name: "numbers only", body: "issue #123 and #2024/05", want: []string{}},
		{name: "numbers with letters", body: "#2024-review", want: []string{"2024-review"}},
		{name: "mid word hash", body: "C#sharp and foo#bar", want: []string{}},
		{name: "url fragment", body: "https://example.com/page#section", want: []string{}},
		{name: "inline code", body: "use `#notatag` but #real", want: []string{"real"}},
		{name: "fenced code", body: "```\n#notatag\n```\n#after", want: []string{"after"}},
		{name: "indented code", body: "para\n\n    #notatag\n\n#after", want: []string{"after"}},
		{name: "unicode", body: "#café #日本", want: []string{"café", "日本"}},
		{name: "list items", body: "- #one\n- #two", want: []string{"one", "two"}},
		{name: "adjacent tags", body: "#one #two", want: []string{"one", "two"}},
		{name: "no hash", body: "plain text", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Inline(tt.body).Sorted()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Inline(%q) = %v, want %v", tt.body, got, tt.want)
			}
		})
	}
}

func TestSetFold(t *testing.T) {
	s := NewSet("Foo", "bar")
	if !s.Has("Foo") || s.Has("foo") {
		t.Errorf("Has should be exact")
	}
	if !s.HasFold("foo") || !s.HasFold("BAR") {
		t.Errorf("HasFold should ignore case")
	}
	if s.HasFold("baz") {
		t.Errorf("HasFold(baz) = true")
	}
}

func writeNote(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestExtractUnion(t *testing.T) {
	dir := t.TempDir()
	path := writeNote(t, dir, "note.md", "---\ntags: [b]\n---\nbody with #a\n")

	for _, mode := range []Mode{ModeFrontmatter, ModeRederive} {
		got, err := Extract(path, mode)
		if err != nil {
			t.Fatalf("mode %d: unexpected error: %v", mode, err)
		}
		if !got.Equal(NewSet("a", "b")) {
			t.Errorf("mode %d: Extract = %v, want {a, b}", mode, got.Sorted())
		}
	}
}

func TestExtractModesAgree(t *testing.T) {
	dir := t.TempDir()
	notes := map[string]string{
		"plain.md":      "no tags here\n",
		"scalar.md":     "---\ntags: Person\n---\n#inline\n",
		"mixed.md":      "---\ntags:\n  - Person\n  - 42\n  - 2024-01-01\n  - ~\n  - friend\n---\n#friend #area/home\n",
		"bom.md":        "\ufeff---\ntags: [x]\n---\n",
		"empty.md":      "---\n---\n#solo\n",
		"nulltags.md":   "---\ntags:\n---\n",
		"maptags.md":    "---\ntags:\n  a: b\n---\n",
		"codeblocks.md": "---\ntags: [real]\n---\n```\n#fake\n```\n",
	}

	for name, content := range notes {
		t.Run(name, func(t *testing.T) {
			path := writeNote(t, dir, name, content)
			direct, err := Extract(path, ModeFrontmatter)
			if err != nil {
				t.Fatalf("frontmatter mode: %v", err)
			}
			rederived, err := Extract(path, ModeRederive)
			if err != nil {
				t.Fatalf("rederive mode: %v", err)
			}
			if !direct.Equal(rederived) {
				t.Errorf("modes disagree: frontmatter=%v rederive=%v", direct.Sorted(), rederived.Sorted())
			}
		})
	}
}

func TestExtractNonStringElementsDropped(t *testing.T) {
	dir := t.TempDir()
	path := writeNote(t, dir, "n.md", "---\ntags:\n  - Person\n  - 42\n  - true\n---\n")

	got, err := Extract(path, ModeFrontmatter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(NewSet("Person")) {
		t.Errorf("Extract = %v, want {Person}", got.Sorted())
	}
}

func TestExtractDeterministic(t *testing.T) {
	dir := t.TempDir()
	path := writeNote(t, dir, "n.md", "---\ntags: [x, y]\n---\n#z #w\n")

	first, err := Extract(path, ModeFrontmatter)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Extract(path, ModeFrontmatter)
	if err != nil {
		t.Fatal(err)
	}
	if !first.Equal(second) {
		t.Errorf("two reads differ: %v vs %v", first.Sorted(), second.Sorted())
	}
}

func TestExtractRejectsNonNotes(t *testing.T) {
	dir := t.TempDir()
	txt := writeNote(t, dir, "n.txt", "#tag")
	for _, mode := range []Mode{ModeFrontmatter, ModeRederive} {
		if _, err := Extract(txt, mode); err == nil {
			t.Errorf("mode %d: expected error for .txt file", mode)
		}
		if _, err := Extract(filepath.Join(dir, "missing.md"), mode); err == nil {
			t.Errorf("mode %d: expected error for missing file", mode)
		}
	}
}
