package idmap

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "idmapper.properties")
	content := strings.Join([]string{
		"# identifier to object id mapping",
		"",
		"ppn:123456789=artus_mods_00000001",
		"isbn:3110179321 = artus_mods_00000001",
		"garbage line without separator",
		"=novalue",
		"issn:10786279=artus_mods_00000002",
	}, "\n") + "\n"
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	store, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if store.Len() != 3 {
		t.Errorf("got %d entries, want 3", store.Len())
	}
	if id, ok := store.Lookup("isbn:3110179321"); !ok || id != "artus_mods_00000001" {
		t.Errorf("Lookup(isbn): got %q, %v", id, ok)
	}
	if store.Dirty() {
		t.Error("freshly loaded store must not be dirty")
	}
}

func TestLoadMissingFile(t *testing.T) {
	store, err := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatal(err)
	}
	if store.Len() != 0 {
		t.Errorf("got %d entries, want 0", store.Len())
	}
}

func TestEnsureIdempotent(t *testing.T) {
	store, err := Load(filepath.Join(t.TempDir(), "idmapper.properties"))
	if err != nil {
		t.Fatal(err)
	}
	gen, err := NewGenerator("X0000", store)
	if err != nil {
		t.Fatal(err)
	}
	id1, created := store.Ensure("ppn:100", gen)
	if !created {
		t.Error("first Ensure must create")
	}
	id2, created := store.Ensure("ppn:100", gen)
	if created {
		t.Error("second Ensure must not create")
	}
	if id1 != id2 {
		t.Errorf("ids differ: %q vs %q", id1, id2)
	}
	if err := store.Persist(); err != nil {
		t.Fatal(err)
	}
	if store.Dirty() {
		t.Error("store still dirty after persist")
	}
}

func TestPersistGating(t *testing.T) {
	p := filepath.Join(t.TempDir(), "idmapper.properties")
	if err := os.WriteFile(p, []byte("ppn:1=X0001\n"), 0644); err != nil {
		t.Fatal(err)
	}
	before, err := os.Stat(p)
	if err != nil {
		t.Fatal(err)
	}
	store, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	store.Lookup("ppn:1")
	store.Lookup("ppn:missing")
	store.Set("ppn:1", "X0001") // identical mapping, no change
	if err := store.Persist(); err != nil {
		t.Fatal(err)
	}
	after, err := os.Stat(p)
	if err != nil {
		t.Fatal(err)
	}
	if !after.ModTime().Equal(before.ModTime()) || after.Size() != before.Size() {
		t.Error("persist rewrote the store although nothing changed")
	}
}

func TestPersistSorted(t *testing.T) {
	p := filepath.Join(t.TempDir(), "idmapper.properties")
	store, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	store.Set("ppn:9", "X0002")
	store.Set("isbn:123", "X0001")
	store.Set("issn:456", "X0002")
	if err := store.Persist(); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	want := "# identifier (ppn:..., isbn:..., issn:...) to object id mapping\nisbn:123=X0001\nissn:456=X0002\nppn:9=X0002\n"
	if string(b) != want {
		t.Errorf("got:\n%s\nwant:\n%s", b, want)
	}
	// reload round trip
	reloaded, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	got := make(map[string]string)
	reloaded.Each(func(k, v string) { got[k] = v })
	if diff := cmp.Diff(map[string]string{
		"ppn:9": "X0002", "isbn:123": "X0001", "issn:456": "X0002",
	}, got); diff != "" {
		t.Errorf("reload mismatch (-want +got):\n%s", diff)
	}
}

func TestKeys(t *testing.T) {
	tests := []struct {
		name string
		f    func(string) string
		in   string
		want string
	}{
		{"ppn plain", PPNKey, "123456789", "ppn:123456789"},
		{"ppn trimmed raw", PPNKey, " 04893120X ", "ppn:04893120X"},
		{"ppn empty", PPNKey, "  ", ""},
		{"isbn hyphens", ISBNKey, "3-11-017932-1", "isbn:3110179321"},
		{"isbn check digit x", ISBNKey, "3-598-21500-x", "isbn:359821500X"},
		{"isbn with qualifier", ISBNKey, "3-11-017932-1 Gewebe : EUR 128.00", "isbn:3110179321"},
		{"isbn unusable", ISBNKey, "noisbn", ""},
		{"issn", ISSNKey, "1078-6279", "issn:10786279"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
