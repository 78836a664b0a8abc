package ldif

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// file bundles a Reader with the handles it must close.
type file struct {
	*Reader
	closers []io.Closer
}

// Close closes the gzip layer (if any) before the file itself.
func (f *file) Close() error {
	var firstErr error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ReadCloser is a record stream that must be closed after use.
type ReadCloser interface {
	Next() (*Entry, error)
	Records() int
	Close() error
}

// Open opens an LDIF snapshot file for reading, transparently wrapping
// *.gz files in a gzip decompressor.
func Open(path string) (ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return &file{Reader: NewReader(f), closers: []io.Closer{f}}, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open snapshot %s: %w", path, err)
	}
	return &file{Reader: NewReader(gz), closers: []io.Closer{gz, f}}, nil
}
