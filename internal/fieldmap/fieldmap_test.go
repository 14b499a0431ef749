package fieldmap

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/aidanlsb/vaultkit/internal/note"
)

func frontmatter(t *testing.T, yaml string) *note.Frontmatter {
	t.Helper()
	n, err := note.Parse("person.md", []byte("---\n"+yaml+"---\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return n.Frontmatter
}

func TestMapAppliesRulesInOrder(t *testing.T) {
	fm := frontmatter(t, "phone number: \"555-0100\"\nbirth date: 1990-01-01\nnickname: Al\n")

	rec := Map("alice", fm, DefaultRules)

	if got, want := rec.Keys(), []string{"Name", "Birth Date", "Phone Number"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys = %v, want %v", got, want)
	}
	want := map[string]interface{}{
		"Name":         "alice",
		"Birth Date":   "1990-01-01",
		"Phone Number": "555-0100",
	}
	if !reflect.DeepEqual(rec.Fields(), want) {
		t.Errorf("Fields = %v, want %v", rec.Fields(), want)
	}
}

func TestMapEmptyValuePolicy(t *testing.T) {
	rules := []Rule{
		{Source: "email", Column: "Email", SyncEmpty: false},
		{Source: "phone", Column: "Phone", SyncEmpty: true},
		{Source: "city", Column: "City", SyncEmpty: false},
	}

	t.Run("absent keys are omitted", func(t *testing.T) {
		rec := Map("bob", frontmatter(t, "other: 1\n"), rules)
		if got := rec.Keys(); !reflect.DeepEqual(got, []string{"Name"}) {
			t.Errorf("Keys = %v, want only Name", got)
		}
	})

	t.Run("null values follow sync_empty", func(t *testing.T) {
		rec := Map("bob", frontmatter(t, "email:\nphone: ~\ncity: null\n"), rules)
		if rec.Has("Email") {
			t.Error("Email should be absent when sync_empty is false")
		}
		if rec.Has("City") {
			t.Error("City should be absent when sync_empty is false")
		}
		v, ok := rec.Get("Phone")
		if !ok || v != nil {
			t.Errorf("Phone = %v (present %v), want explicit nil", v, ok)
		}
	})
}

func TestMapPassesValuesThrough(t *testing.T) {
	rules := []Rule{
		{Source: "age", Column: "Age"},
		{Source: "friend", Column: "Friend"},
		{Source: "groups", Column: "Groups"},
		{Source: "meta", Column: "Meta"},
	}
	fm := frontmatter(t, "age: 34\nfriend: true\ngroups: [climbing, book club]\nmeta:\n  source: work\n")

	rec := Map("carol", fm, rules)

	want := map[string]interface{}{
		"Name":   "carol",
		"Age":    int64(34),
		"Friend": true,
		"Groups": []interface{}{"climbing", "book club"},
		"Meta":   map[string]interface{}{"source": "work"},
	}
	if !reflect.DeepEqual(rec.Fields(), want) {
		t.Errorf("Fields = %#v, want %#v", rec.Fields(), want)
	}
}

func TestMapKeepsTimestampsAsWritten(t *testing.T) {
	rules := []Rule{
		{Source: "met", Column: "Met"},
		{Source: "mid", Column: "Mid"},
		{Source: "frac", Column: "Frac"},
		{Source: "born", Column: "Born"},
	}
	fm := frontmatter(t, "met: 2024-05-06T10:30:00+02:00\nmid: 2024-05-06T00:00:00Z\nfrac: 2024-05-06T10:30:00.250Z\nborn: 1990-01-01\n")

	rec := Map("a", fm, rules)

	want := map[string]interface{}{
		"Name": "a",
		"Met":  "2024-05-06T10:30:00+02:00",
		"Mid":  "2024-05-06T00:00:00Z",
		"Frac": "2024-05-06T10:30:00.250Z",
		"Born": "1990-01-01",
	}
	if !reflect.DeepEqual(rec.Fields(), want) {
		t.Errorf("Fields = %#v, want %#v", rec.Fields(), want)
	}
	if v, _ := fm.Get("mid"); v.Kind() != note.KindDatetime {
		t.Errorf("mid kind = %s, want datetime", v.Kind())
	}
	if v, _ := fm.Get("born"); v.Kind() != note.KindDate {
		t.Errorf("born kind = %s, want date", v.Kind())
	}
}

func TestMapNilFrontmatter(t *testing.T) {
	rec := Map("dave", nil, DefaultRules)
	if rec.Name() != "dave" || len(rec.Keys()) != 1 {
		t.Errorf("record = %v", rec.Fields())
	}
}

func TestRecordMarshalJSONKeepsOrder(t *testing.T) {
	rec := NewRecord("alice")
	rec.Set("Zeta", 1)
	rec.Set("Alpha", nil)
	rec.Set("Zeta", 2)

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), `{"Name":"alice","Zeta":2,"Alpha":null}`; got != want {
		t.Errorf("json = %s, want %s", got, want)
	}
}

func TestValidateRules(t *testing.T) {
	tests := []struct {
		name    string
		rules   []Rule
		wantErr bool
	}{
		{"defaults", DefaultRules, false},
		{"empty table", nil, false},
		{"missing source", []Rule{{Column: "X"}}, true},
		{"missing column", []Rule{{Source: "x"}}, true},
		{"reserved column", []Rule{{Source: "x", Column: "Name"}}, true},
		{"duplicate column", []Rule{{Source: "a", Column: "X"}, {Source: "b", Column: "X"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRules(tt.rules)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRules() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
