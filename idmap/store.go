// Package idmap maps external bibliographic identifiers (PPN, ISBN, ISSN) to
// generated target object ids and persists the mapping between runs in a
// flat, human editable key=value file.
package idmap

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/miku/picakit/atomicfile"
	"github.com/sirupsen/logrus"
)

// Store is the identifier mapping, loaded once and owned exclusively for the
// duration of a run. Mutations happen in memory; Persist writes the store
// back at most once, only if anything changed.
type Store struct {
	Path    string
	Logger  logrus.FieldLogger
	entries map[string]string
	dirty   bool
}

// Load reads a mapping file. A missing file yields an empty store, blank
// lines and # comments are ignored, lines without a separator are skipped
// with a warning.
func Load(path string) (*Store, error) {
	s := &Store{Path: path, entries: make(map[string]string)}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("open mapping store: %w", err)
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if !ok || k == "" || v == "" {
			s.logger().Warnf("skipping unparseable mapping line: %q", line)
			continue
		}
		s.entries[k] = v
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read mapping store: %w", err)
	}
	return s, nil
}

func (s *Store) logger() logrus.FieldLogger {
	if s.Logger != nil {
		return s.Logger
	}
	return logrus.StandardLogger()
}

// Len returns the number of mappings.
func (s *Store) Len() int { return len(s.entries) }

// Dirty reports whether the store has unpersisted changes.
func (s *Store) Dirty() bool { return s.dirty }

// Lookup is a pure read.
func (s *Store) Lookup(key string) (string, bool) {
	id, ok := s.entries[key]
	return id, ok
}

// Set records a mapping, e.g. a secondary key pointing at an id discovered
// via a primary key. Setting an existing identical mapping is a no-op.
func (s *Store) Set(key, id string) {
	if key == "" || id == "" {
		return
	}
	if prev, ok := s.entries[key]; ok && prev == id {
		return
	}
	s.entries[key] = id
	s.dirty = true
}

// Ensure returns the id mapped to key, minting the next id from gen on a
// miss. The second return value reports whether a new id was created.
func (s *Store) Ensure(key string, gen *Generator) (string, bool) {
	if id, ok := s.entries[key]; ok {
		return id, false
	}
	id := gen.Next()
	s.entries[key] = id
	s.dirty = true
	return id, true
}

// Each calls f for every mapping, in unspecified order.
func (s *Store) Each(f func(key, id string)) {
	for k, v := range s.entries {
		f(k, v)
	}
}

// Persist rewrites the store wholesale, sorted by key, if and only if the
// store is dirty. The write is atomic and idempotent.
func (s *Store) Persist() error {
	if !s.dirty {
		return nil
	}
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	sb.WriteString("# identifier (ppn:..., isbn:..., issn:...) to object id mapping\n")
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s=%s\n", k, s.entries[k])
	}
	if err := atomicfile.WriteFile(s.Path, []byte(sb.String())); err != nil {
		return fmt.Errorf("persist mapping store: %w", err)
	}
	s.dirty = false
	s.logger().Infof("wrote %d mappings to %s", len(s.entries), s.Path)
	return nil
}
