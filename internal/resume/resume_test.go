package resume

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	l := Load(filepath.Join(t.TempDir(), "nope.json"))
	if l.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", l.Len())
	}
}

func TestLoad_CorruptFileIsEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "processed.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := Load(path)
	if l.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", l.Len())
	}
	// A corrupt log is replaced on the next mark.
	if err := l.MarkProcessed("/data/a.txt"); err != nil {
		t.Fatalf("MarkProcessed: %v", err)
	}
	if !Load(path).Has("/data/a.txt") {
		t.Fatalf("rewritten log does not contain the marked file")
	}
}

func TestMarkProcessed_WritesSortedArray(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "processed.json")
	l := Load(path)

	for _, p := range []string{"/data/structural_elem2.txt", "/data/structural_elem1.txt"} {
		if err := l.MarkProcessed(p); err != nil {
			t.Fatalf("MarkProcessed(%s): %v", p, err)
		}
	}
	if err := l.MarkProcessed("/data/structural_elem1.txt"); err != nil {
		t.Fatalf("MarkProcessed (duplicate): %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var got []string
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("log is not a JSON array: %v\n%s", err, b)
	}
	want := []string{"/data/structural_elem1.txt", "/data/structural_elem2.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("log = %v, want %v", got, want)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestHas_RelativeAndAbsolute(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	l := Load(filepath.Join(dir, "processed.json"))
	if err := l.MarkProcessed("structural_elem1.txt"); err != nil {
		t.Fatalf("MarkProcessed: %v", err)
	}
	abs := filepath.Join(dir, "structural_elem1.txt")
	if !l.Has(abs) {
		t.Fatalf("Has(%s) = false after marking the relative path", abs)
	}
	if l.Has(filepath.Join(dir, "structural_elem2.txt")) {
		t.Fatalf("Has reported an unmarked file")
	}
}

func TestMarkProcessed_WriteFailureKeepsMemory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	// The log's parent is a regular file, so the write must fail.
	l := Load(filepath.Join(blocker, "processed.json"))
	if err := l.MarkProcessed("/data/a.txt"); err == nil {
		t.Fatalf("expected write error")
	}
	if !l.Has("/data/a.txt") {
		t.Fatalf("in-memory state lost after write failure")
	}
}
