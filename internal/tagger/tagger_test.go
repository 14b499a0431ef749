package tagger

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/aidanlsb/vaultkit/internal/note"
	"github.com/aidanlsb/vaultkit/internal/tags"
)

func writeNote(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func tagsOf(t *testing.T, path string) tags.Set {
	t.Helper()
	set, err := tags.Extract(path, tags.ModeFrontmatter)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	return set
}

func TestNormalizeTag(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"Project", "Project", false},
		{"#Project", "Project", false},
		{"  work  ", "work", false},
		{"##double", "#double", false},
		{"nested/tag", "nested/tag", false},
		{"", "", true},
		{"#", "", true},
		{"   ", "", true},
		{"two words", "", true},
	}
	for _, tt := range tests {
		got, err := NormalizeTag(tt.in)
		if tt.wantErr {
			var tagErr *InvalidTagError
			if !errors.As(err, &tagErr) {
				t.Errorf("NormalizeTag(%q) err = %v, want *InvalidTagError", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeTag(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeTag(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAddTagIsIdempotent(t *testing.T) {
	path := writeNote(t, t.TempDir(), "a.md", "Hello\n")

	outcome, err := AddTag(path, "work", nil)
	if err != nil {
		t.Fatalf("AddTag: %v", err)
	}
	if outcome != OutcomeAdded {
		t.Fatalf("outcome = %v, want added", outcome)
	}
	first := readFile(t, path)
	if !tagsOf(t, path).Has("work") {
		t.Fatalf("tag missing after add:\n%s", first)
	}

	outcome, err = AddTag(path, "work", nil)
	if err != nil {
		t.Fatalf("second AddTag: %v", err)
	}
	if outcome != OutcomeAlreadyPresent {
		t.Errorf("second outcome = %v, want already_present", outcome)
	}
	if second := readFile(t, path); second != first {
		t.Errorf("second add changed the file:\n%q\n%q", first, second)
	}
}

func TestAddTagCaseInsensitiveMatchDoesNotWrite(t *testing.T) {
	content := "---\ntags:\n  - project\n---\nbody\n"
	path := writeNote(t, t.TempDir(), "n.md", content)

	for _, tag := range []string{"Project", "#PROJECT", "project"} {
		outcome, err := AddTag(path, tag, nil)
		if err != nil {
			t.Fatalf("AddTag(%q): %v", tag, err)
		}
		if outcome != OutcomeAlreadyPresent {
			t.Errorf("AddTag(%q) = %v, want already_present", tag, outcome)
		}
	}
	if got := readFile(t, path); got != content {
		t.Errorf("file changed:\n%q", got)
	}
}

func TestAddTagStripsMarker(t *testing.T) {
	dir := t.TempDir()
	withMarker := writeNote(t, dir, "a.md", "x\n")
	without := writeNote(t, dir, "b.md", "x\n")

	if _, err := AddTag(withMarker, "#Project", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := AddTag(without, "Project", nil); err != nil {
		t.Fatal(err)
	}
	if a, b := readFile(t, withMarker), readFile(t, without); a != b {
		t.Errorf("results differ:\n%q\n%q", a, b)
	}
	if !tagsOf(t, withMarker).Has("Project") {
		t.Error("expected Project tag without the marker")
	}
}

func TestAddTagPreservesBody(t *testing.T) {
	body := "\n# Heading\r\n\n  indented line  \n```\n#notatag\n```\n\ntrailing"
	path := writeNote(t, t.TempDir(), "n.md", "---\ntitle: Note\n---\n"+body)

	if _, err := AddTag(path, "fresh", nil); err != nil {
		t.Fatal(err)
	}

	_, gotBody, ok := note.SplitFrontmatter(readFile(t, path))
	if !ok {
		t.Fatal("front matter block missing after add")
	}
	if gotBody != body {
		t.Errorf("body changed:\n got %q\nwant %q", gotBody, body)
	}

	n, err := note.Read(path)
	if err != nil {
		t.Fatal(err)
	}
	title, _ := n.Frontmatter.Get("title")
	if s, _ := title.AsString(); s != "Note" {
		t.Errorf("title = %q, want Note", s)
	}
}

func TestAddTagUnionsBodyAndFrontmatterTags(t *testing.T) {
	path := writeNote(t, t.TempDir(), "n.md", "---\ntags: [b]\n---\nsee #a here\n")

	if _, err := AddTag(path, "c", nil); err != nil {
		t.Fatal(err)
	}

	n, err := note.Read(path)
	if err != nil {
		t.Fatal(err)
	}
	got := tags.FrontmatterTagList(n.Frontmatter)
	if want := []string{"b", "a", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("tags = %v, want %v", got, want)
	}
	if !strings.Contains(readFile(t, path), "tags: [b, a, c]") {
		t.Errorf("flow style not kept:\n%s", readFile(t, path))
	}
}

func TestAddTagRejectsNonNote(t *testing.T) {
	dir := t.TempDir()
	txt := writeNote(t, dir, "a.txt", "x")

	_, err := AddTag(txt, "work", nil)
	var kindErr *note.WrongKindError
	if !errors.As(err, &kindErr) {
		t.Errorf("err = %v, want *note.WrongKindError", err)
	}

	_, err = AddTag(filepath.Join(dir, "missing.md"), "work", nil)
	var nfErr *note.NotFoundError
	if !errors.As(err, &nfErr) {
		t.Errorf("err = %v, want *note.NotFoundError", err)
	}
}

func TestApply(t *testing.T) {
	dir := t.TempDir()
	a := writeNote(t, dir, "a.md", "Hello")
	b := writeNote(t, dir, "b.txt", "not a note")
	c := writeNote(t, dir, "notes/c.md", "---\ntags: [work]\n---\nalready\n")
	cBefore := readFile(t, c)

	var events []Event
	summary, err := Apply(dir, "work", ApplyOptions{}, func(e Event) {
		events = append(events, e)
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	want := []Event{
		{Kind: EventAdded, Path: a},
		{Kind: EventSkippedNonNote, Path: b},
		{Kind: EventAlreadyPresent, Path: c},
	}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %+v, want %+v", events, want)
	}
	if len(summary.Added) != 1 || len(summary.AlreadyPresent) != 1 || len(summary.Skipped) != 1 {
		t.Errorf("summary = %+v", summary)
	}

	if !tagsOf(t, a).Has("work") {
		t.Error("a.md was not tagged")
	}
	if got := readFile(t, b); got != "not a note" {
		t.Errorf("b.txt changed: %q", got)
	}
	if got := readFile(t, c); got != cBefore {
		t.Errorf("c.md changed: %q", got)
	}
}

func TestApplyDryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	a := writeNote(t, dir, "a.md", "Hello")

	summary, err := Apply(dir, "#work", ApplyOptions{DryRun: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Tag != "work" {
		t.Errorf("Tag = %q, want work", summary.Tag)
	}
	if !reflect.DeepEqual(summary.Added, []string{a}) {
		t.Errorf("Added = %v", summary.Added)
	}
	if got := readFile(t, a); got != "Hello" {
		t.Errorf("dry run wrote the file: %q", got)
	}
}

func TestApplyInvalidInput(t *testing.T) {
	dir := t.TempDir()

	_, err := Apply(dir, "  ", ApplyOptions{}, nil)
	var tagErr *InvalidTagError
	if !errors.As(err, &tagErr) {
		t.Errorf("err = %v, want *InvalidTagError", err)
	}

	_, err = Apply(filepath.Join(dir, "missing"), "work", ApplyOptions{}, nil)
	if err == nil {
		t.Error("expected error for missing directory")
	}
}
