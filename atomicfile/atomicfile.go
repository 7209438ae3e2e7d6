// Package atomicfile provides all-or-nothing file writes: data goes to a
// temporary file in the target directory first and is renamed into place on
// Close. A crash mid-write leaves the destination untouched.
package atomicfile

import (
	"os"
	"path/filepath"
)

// File behaves like an os.File opened for writing, except that the data only
// appears under the destination name after a successful Close.
type File struct {
	*os.File
	dst  string
	done bool
}

// New creates a temporary file next to dst, so the final rename stays on the
// same filesystem.
func New(dst string) (*File, error) {
	dir, base := filepath.Split(dst)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return nil, err
	}
	return &File{File: f, dst: dst}, nil
}

// Close flushes the temporary file and moves it to the destination.
func (f *File) Close() error {
	if f.done {
		return nil
	}
	f.done = true
	if err := f.File.Close(); err != nil {
		os.Remove(f.File.Name())
		return err
	}
	return os.Rename(f.File.Name(), f.dst)
}

// Abort discards the temporary file without touching the destination.
func (f *File) Abort() error {
	if f.done {
		return nil
	}
	f.done = true
	f.File.Close()
	return os.Remove(f.File.Name())
}

// WriteFile is a convenience wrapper writing b atomically to dst.
func WriteFile(dst string, b []byte) error {
	f, err := New(dst)
	if err != nil {
		return err
	}
	if _, err := f.Write(b); err != nil {
		f.Abort()
		return err
	}
	return f.Close()
}
