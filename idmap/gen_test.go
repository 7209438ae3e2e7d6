package idmap

import (
	"path/filepath"
	"testing"
)

func emptyStore(t *testing.T) *Store {
	t.Helper()
	store, err := Load(filepath.Join(t.TempDir(), "idmapper.properties"))
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestGeneratorMonotonic(t *testing.T) {
	store := emptyStore(t)
	store.Set("ppn:7", "X0007")
	gen, err := NewGenerator("X0000", store)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"X0008", "X0009", "X0010"} {
		if got := gen.Next(); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}
}

func TestGeneratorSeedPrecedence(t *testing.T) {
	// the template seed wins over absent or lower history
	store := emptyStore(t)
	store.Set("ppn:1", "X0003")
	gen, err := NewGenerator("X0050", store)
	if err != nil {
		t.Fatal(err)
	}
	if got := gen.Next(); got != "X0051" {
		t.Errorf("got %q, want X0051", got)
	}
}

func TestGeneratorIgnoresForeignIds(t *testing.T) {
	store := emptyStore(t)
	store.Set("ppn:1", "Y0099")      // different prefix
	store.Set("ppn:2", "X123")       // wrong width
	store.Set("ppn:3", "X00abc")     // non numeric suffix
	store.Set("ppn:4", "X0012extra") // trailing junk
	gen, err := NewGenerator("X0000", store)
	if err != nil {
		t.Fatal(err)
	}
	if got := gen.Next(); got != "X0001" {
		t.Errorf("got %q, want X0001", got)
	}
}

func TestGeneratorWidth(t *testing.T) {
	gen, err := NewGenerator("artus_mods_00000000", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := gen.Next(); got != "artus_mods_00000001" {
		t.Errorf("got %q, want artus_mods_00000001", got)
	}
}

func TestGeneratorBadTemplate(t *testing.T) {
	for _, template := range []string{"", "prefix_", "nodigits"} {
		if _, err := NewGenerator(template, nil); err == nil {
			t.Errorf("template %q: expected error", template)
		}
	}
}
