// Package stream opens possibly compressed input files transparently.
// Supported: plain files, gzip (.gz), zstd (.zst), and "-" for stdin.
package stream

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	gzip "github.com/klauspost/pgzip"
)

type reader struct {
	io.Reader
	closers []io.Closer
}

func (r *reader) Close() error {
	var err error
	for _, c := range r.closers {
		if e := c.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// Open returns a reader for the named file, decompressing based on the file
// extension. The caller must close the returned reader.
func Open(name string) (io.ReadCloser, error) {
	if name == "-" || name == "" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.HasSuffix(name, ".gz"):
		g, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &reader{Reader: g, closers: []io.Closer{g, f}}, nil
	case strings.HasSuffix(name, ".zst"):
		z, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &reader{Reader: z, closers: []io.Closer{closerFunc(func() error {
			z.Close()
			return nil
		}), f}}, nil
	default:
		return f, nil
	}
}
