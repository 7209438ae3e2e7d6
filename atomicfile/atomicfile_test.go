package atomicfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFile(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.xml")
	if err := WriteFile(dst, []byte("hello")); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "hello" {
		t.Errorf("got %q", b)
	}
}

func TestCloseRenames(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.xml")
	f, err := New(dst)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write([]byte("data")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Fatalf("destination must not exist before Close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil { // idempotent
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "out.xml" {
		t.Errorf("leftover files: %v", entries)
	}
}

func TestAbort(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.xml")
	f, err := New(dst)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write([]byte("half a doc")); err != nil {
		t.Fatal(err)
	}
	if err := f.Abort(); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("abort left files behind: %v", entries)
	}
}

func TestWriteFileOverwrites(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.xml")
	if err := os.WriteFile(dst, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(dst, []byte("new")); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "new" {
		t.Errorf("got %q", b)
	}
}
