package schemadoc_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reoring/validreducer/schemadoc"
)

func TestID(t *testing.T) {
	cases := []struct {
		doc  schemadoc.Document
		want string
	}{
		{schemadoc.Document{"id": "foo"}, "foo"},
		{schemadoc.Document{"$id": "bar", "id": "foo"}, "bar"},
		{schemadoc.Document{"$id": "", "id": "foo"}, "foo"},
		{schemadoc.Document{"id": 3}, ""},
		{schemadoc.Document{}, ""},
	}
	for _, c := range cases {
		if got := schemadoc.ID(c.doc); got != c.want {
			t.Fatalf("ID(%v) = %q, want %q", c.doc, got, c.want)
		}
	}
	if got := schemadoc.CanonicalID("http://x/y#"); got != "http://x/y" {
		t.Fatalf("CanonicalID: %q", got)
	}
}

func TestWithID_DoesNotMutate(t *testing.T) {
	doc := schemadoc.Document{"id": "foo", "type": "object"}
	out := schemadoc.WithID(doc, "mem://schemas/foo")
	if doc["id"] != "foo" {
		t.Fatalf("input mutated: %v", doc)
	}
	if out["id"] != "mem://schemas/foo" || out["type"] != "object" {
		t.Fatalf("unexpected copy: %v", out)
	}
	anon := schemadoc.WithID(schemadoc.Document{"type": "string"}, "x")
	if _, ok := anon["id"]; ok {
		t.Fatalf("absent identifier keys must stay absent: %v", anon)
	}
}

func TestEqual(t *testing.T) {
	built := schemadoc.Document{"id": "n", "maximum": 10, "enum": []any{1, "a"}}
	parsed, err := schemadoc.ParseJSON([]byte(`{"enum":[1,"a"],"maximum":10,"id":"n"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !schemadoc.Equal(built, parsed) {
		t.Fatalf("expected structural equality")
	}
	if _, ok := parsed["maximum"].(json.Number); !ok {
		t.Fatalf("numbers should decode as json.Number, got %T", parsed["maximum"])
	}
	if schemadoc.Equal(built, schemadoc.Document{"id": "n"}) {
		t.Fatalf("different documents compared equal")
	}
}

func TestParseYAML_MatchesJSON(t *testing.T) {
	y, err := schemadoc.ParseYAML([]byte(`
id: foo
properties:
  foo: {type: string}
required: [foo]
additionalProperties: false
`))
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	j, err := schemadoc.ParseJSON([]byte(`{"id":"foo","properties":{"foo":{"type":"string"}},"required":["foo"],"additionalProperties":false}`))
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	if !schemadoc.Equal(y, j) {
		t.Fatalf("YAML and JSON documents differ: %v vs %v", y, j)
	}
}

func TestParse_RejectsNonObjects(t *testing.T) {
	if _, err := schemadoc.ParseJSON([]byte(`[1,2]`)); !errors.Is(err, schemadoc.ErrNotObject) {
		t.Fatalf("expected ErrNotObject, got %v", err)
	}
	if _, err := schemadoc.ParseYAML([]byte("- a\n- b\n")); !errors.Is(err, schemadoc.ErrNotObject) {
		t.Fatalf("expected ErrNotObject, got %v", err)
	}
	if _, err := schemadoc.ParseJSON([]byte(`{"a":1} {"b":2}`)); err == nil {
		t.Fatalf("expected trailing data to be rejected")
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{"id":"alpha","type":"string"}`)
	writeFile(t, dir, "beta.yaml", "type: number\n")
	writeFile(t, dir, "notes.txt", "ignored")
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := schemadoc.LoadDir(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 schemas, got %v", got)
	}
	if got["alpha"]["type"] != "string" || got["beta"]["type"] != "number" {
		t.Fatalf("unexpected registry: %v", got)
	}
}

func TestLoadDir_Conflict(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{"id":"x","type":"string"}`)
	writeFile(t, dir, "b.json", `{"id":"x","type":"number"}`)
	_, err := schemadoc.LoadDir(dir)
	if err == nil || !strings.Contains(err.Error(), `"x"`) {
		t.Fatalf("expected identifier conflict, got %v", err)
	}
}

func TestLoadValue(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "s.yml", "- 1\n- two\n")
	writeFile(t, dir, "s.toml", "a = 1")

	v, err := schemadoc.LoadValue(filepath.Join(dir, "s.yml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	arr, ok := v.([]any)
	if !ok || len(arr) != 2 || arr[0] != json.Number("1") || arr[1] != "two" {
		t.Fatalf("unexpected value %#v", v)
	}
	if _, err := schemadoc.LoadValue(filepath.Join(dir, "s.toml")); !errors.Is(err, schemadoc.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
