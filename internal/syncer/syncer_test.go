package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/aidanlsb/vaultkit/internal/fieldmap"
	"github.com/aidanlsb/vaultkit/internal/vault"
)

type fakeStore struct {
	calls     int
	records   []*fieldmap.Record
	keyFields []string
	err       error
}

func (f *fakeStore) BatchUpsert(_ context.Context, records []*fieldmap.Record, keyFields []string) (UpsertSummary, error) {
	f.calls++
	f.records = records
	f.keyFields = keyFields
	if f.err != nil {
		return UpsertSummary{}, f.err
	}
	return UpsertSummary{Created: len(records)}, nil
}

func writeVault(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func recordJSON(t *testing.T, records []*fieldmap.Record) []string {
	t.Helper()
	out := make([]string, len(records))
	for i, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			t.Fatal(err)
		}
		out[i] = string(data)
	}
	return out
}

func TestRunSyncsPersonNotes(t *testing.T) {
	root := writeVault(t, map[string]string{
		"alice.md": "---\ntags: [Person]\nbirth date: 1990-01-01\n---\n",
		"notes.md": "just notes\n",
	})
	store := &fakeStore{}

	result, err := Run(context.Background(), store, root, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if store.calls != 1 {
		t.Fatalf("BatchUpsert called %d times, want 1", store.calls)
	}
	if !reflect.DeepEqual(store.keyFields, []string{"Name"}) {
		t.Errorf("keyFields = %v, want [Name]", store.keyFields)
	}
	got := recordJSON(t, store.records)
	want := []string{`{"Name":"alice","Birth Date":"1990-01-01"}`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("records = %v, want %v", got, want)
	}
	if !result.Upserted || result.Summary.Created != 1 {
		t.Errorf("result = %+v", result)
	}
}

func TestCollectSelectsByInlineTag(t *testing.T) {
	root := writeVault(t, map[string]string{
		"bob.md":   "---\nphone number: 555\n---\nMet at work. #Person\n",
		"lower.md": "---\ntags: [person]\n---\n",
	})

	records, err := Collect(root, Options{})
	if err != nil {
		t.Fatal(err)
	}
	got := recordJSON(t, records)
	want := []string{`{"Name":"bob","Phone Number":555}`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("records = %v, want %v", got, want)
	}
}

func TestCollectDuplicateNameReplacesEarlier(t *testing.T) {
	root := writeVault(t, map[string]string{
		"a/sam.md":  "---\ntags: [Person]\nbirth date: 1980-05-05\n---\n",
		"b/zoe.md":  "---\ntags: [Person]\n---\n",
		"c/sam.md":  "---\ntags: [Person]\nbirth date: 1981-06-06\n---\n",
		"d/none.md": "---\ntags: [Place]\n---\n",
	})

	records, err := Collect(root, Options{})
	if err != nil {
		t.Fatal(err)
	}
	got := recordJSON(t, records)
	want := []string{
		`{"Name":"sam","Birth Date":"1981-06-06"}`,
		`{"Name":"zoe"}`,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("records = %v, want %v", got, want)
	}
}

func TestCollectCustomPredicateAndRules(t *testing.T) {
	root := writeVault(t, map[string]string{
		"acme.md":  "---\ntags: [Company]\nsite: acme.test\n---\n",
		"alice.md": "---\ntags: [Person]\n---\n",
	})

	records, err := Collect(root, Options{
		Predicate: HasTag("Company"),
		Rules:     []fieldmap.Rule{{Source: "site", Column: "Website"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	got := recordJSON(t, records)
	if want := []string{`{"Name":"acme","Website":"acme.test"}`}; !reflect.DeepEqual(got, want) {
		t.Errorf("records = %v, want %v", got, want)
	}
}

func TestCollectHonoursExclude(t *testing.T) {
	root := writeVault(t, map[string]string{
		"templates/person.md": "---\ntags: [Person]\n---\n",
		"alice.md":            "---\ntags: [Person]\n---\n",
	})

	records, err := Collect(root, Options{Walk: vault.Options{Exclude: []string{"templates"}}})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Name() != "alice" {
		t.Errorf("records = %v", recordJSON(t, records))
	}
}

func TestRunPropagatesStoreError(t *testing.T) {
	root := writeVault(t, map[string]string{
		"alice.md": "---\ntags: [Person]\n---\n",
	})
	boom := errors.New("remote exploded")
	store := &fakeStore{err: boom}

	_, err := Run(context.Background(), store, root, Options{})
	if err != boom {
		t.Errorf("err = %v, want the store error unchanged", err)
	}
	if store.calls != 1 {
		t.Errorf("calls = %d, want 1", store.calls)
	}
}

func TestRunDryRunSkipsStore(t *testing.T) {
	root := writeVault(t, map[string]string{
		"alice.md": "---\ntags: [Person]\n---\n",
	})
	store := &fakeStore{}

	result, err := Run(context.Background(), store, root, Options{DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if store.calls != 0 {
		t.Errorf("store called %d times during dry run", store.calls)
	}
	if result.Upserted || len(result.Records) != 1 {
		t.Errorf("result = %+v", result)
	}
}

func TestRunEmptyVaultStillCallsStoreOnce(t *testing.T) {
	root := writeVault(t, map[string]string{"readme.txt": "hi"})
	store := &fakeStore{}

	result, err := Run(context.Background(), store, root, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if store.calls != 1 || len(store.records) != 0 {
		t.Errorf("calls = %d records = %d", store.calls, len(store.records))
	}
	if result.Records == nil {
		t.Error("Records should be an empty slice, not nil")
	}
}

func TestRunMissingDirectory(t *testing.T) {
	store := &fakeStore{}
	_, err := Run(context.Background(), store, filepath.Join(t.TempDir(), "missing"), Options{})
	var dirErr *vault.NotADirectoryError
	if !errors.As(err, &dirErr) {
		t.Errorf("err = %v, want *vault.NotADirectoryError", err)
	}
	if store.calls != 0 {
		t.Error("store must not be called when validation fails")
	}
}
