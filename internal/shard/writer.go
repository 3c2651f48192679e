package shard

import (
	"archive/tar"
	"fmt"
	"os"
	"time"

	"github.com/xtxerr/img2shard/internal/errors"
)

// entryMode and entryTime are fixed so that shards are byte-reproducible
// apart from the generated uids.
var (
	entryMode int64 = 0o644
	entryTime       = time.Unix(0, 0)
)

// Writer writes regular file entries to a tar shard.
type Writer struct {
	path    string
	file    *os.File
	tw      *tar.Writer
	entries int
	bytes   int64
	closed  bool
}

// Create creates (or truncates) the shard at path.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.NewWrite(path, err)
	}

	return &Writer{
		path: path,
		file: f,
		tw:   tar.NewWriter(f),
	}, nil
}

// Add writes one entry.
func (w *Writer) Add(name string, data []byte) error {
	if w.closed {
		return ErrWriterClosed
	}

	hdr := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     name,
		Mode:     entryMode,
		Size:     int64(len(data)),
		ModTime:  entryTime,
	}
	if err := w.tw.WriteHeader(hdr); err != nil {
		return errors.NewWrite(w.path, fmt.Errorf("header %s: %w", name, err))
	}
	if _, err := w.tw.Write(data); err != nil {
		return errors.NewWrite(w.path, fmt.Errorf("entry %s: %w", name, err))
	}

	w.entries++
	w.bytes += int64(len(data))
	return nil
}

// Close finishes the archive and closes the file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.tw.Close(); err != nil {
		w.file.Close()
		return errors.NewWrite(w.path, err)
	}
	if err := w.file.Close(); err != nil {
		return errors.NewWrite(w.path, err)
	}
	return nil
}

// Abort closes the file and removes it, leaving no partial shard behind.
func (w *Writer) Abort() error {
	if !w.closed {
		w.closed = true
		w.file.Close()
	}
	if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Entries returns the number of entries written.
func (w *Writer) Entries() int {
	return w.entries
}

// Bytes returns the total payload size written.
func (w *Writer) Bytes() int64 {
	return w.bytes
}

// Path returns the shard path.
func (w *Writer) Path() string {
	return w.path
}

// ErrWriterClosed is returned when adding to a closed writer.
var ErrWriterClosed = fmt.Errorf("shard writer is closed")
