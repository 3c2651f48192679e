package shard

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
)

// Entry is one member of a shard.
type Entry struct {
	Name string
	Data []byte
}

// ReadAll returns every entry of the shard at path in archive order.
func ReadAll(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open shard: %w", err)
	}
	defer f.Close()

	var entries []Entry
	tr := tar.NewReader(f)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read shard %s: %w", path, err)
		}

		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("read entry %s: %w", hdr.Name, err)
		}
		entries = append(entries, Entry{Name: hdr.Name, Data: data})
	}
}

// Count returns the number of entries without buffering their contents.
func Count(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open shard: %w", err)
	}
	defer f.Close()

	n := 0
	tr := tar.NewReader(f)
	for {
		_, err := tr.Next()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return 0, fmt.Errorf("read shard %s: %w", path, err)
		}
		n++
	}
}
