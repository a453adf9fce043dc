package seed

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	raw := `
entries:
  greeting: hello
  answer: 42
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	want := map[string]string{"greeting": "hello", "answer": "42"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("LoadFile = %#v, want %#v", got, want)
	}
}

func TestLoadFileUnknownExtensionFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.txt")
	if err := os.WriteFile(path, []byte(`{"entries": {"a": "1"}}`), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got["a"] != "1" {
		t.Fatalf("LoadFile = %#v", got)
	}
}

func TestLoadFileRejectsMissingEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, []byte(`{"other": {}}`), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected error for file without entries")
	}
}

func TestWriteFileRoundTrips(t *testing.T) {
	dir := t.TempDir()
	entries := map[string]string{"a": "1", "b": "two words"}

	for _, name := range []string{"out/export.json", "out/export.yaml"} {
		path := filepath.Join(dir, name)
		if err := WriteFile(path, entries); err != nil {
			t.Fatalf("WriteFile %s: %v", name, err)
		}
		got, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile %s: %v", name, err)
		}
		if !reflect.DeepEqual(got, entries) {
			t.Fatalf("%s: got %#v, want %#v", name, got, entries)
		}
	}
}
