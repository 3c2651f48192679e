// Package chunk locates the input chunks of a dataset.
//
// A dataset root contains an images/ directory whose immediate
// subdirectories are chunks. Each chunk directory name must end in
// "_<N>" with N >= 1; the chunk index is N-1 and names every output of
// that chunk. Each chunk holds one *.json sidecar and one *.zip archive.
package chunk

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xtxerr/img2shard/internal/errors"
)

// ImagesDir is the subdirectory of the dataset root holding the chunks.
const ImagesDir = "images"

// Chunk is one input directory.
type Chunk struct {
	Path  string
	Name  string
	Index int
}

// Discover returns the chunks under root/images sorted by name.
// Non-directory and hidden entries are skipped. A root without an images
// directory, or one with no chunk directories, yields an empty result.
func Discover(root string) ([]Chunk, error) {
	dir := filepath.Join(root, ImagesDir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read chunk directory")
	}

	// os.ReadDir already sorts by filename; keep the order explicit.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	var chunks []Chunk
	for _, e := range entries {
		if hidden(e.Name()) {
			continue
		}
		p := filepath.Join(dir, e.Name())
		if !isDir(p, e) {
			continue
		}

		c, err := New(p)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}

	return chunks, nil
}

// hidden matches the dot-files a shell glob leaves out, such as
// .ipynb_checkpoints or AppleDouble "._" files.
func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// isDir follows symlinks so that linked chunk directories are accepted.
func isDir(path string, e os.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}

// New builds a Chunk for a directory path, deriving its index.
func New(path string) (Chunk, error) {
	name := filepath.Base(filepath.Clean(path))
	idx, err := Index(name)
	if err != nil {
		return Chunk{}, err
	}
	return Chunk{Path: path, Name: name, Index: idx}, nil
}

// Index derives the chunk index from a directory name: the integer after
// the last '_', minus one. "chunk_001" is 0, "chunk_002" is 1.
func Index(name string) (int, error) {
	name = filepath.Base(filepath.Clean(name))

	i := strings.LastIndexByte(name, '_')
	if i < 0 {
		return 0, errors.NewFormat("chunk directory", name, "missing '_<number>' suffix")
	}

	suffix := name[i+1:]
	n, err := strconv.Atoi(suffix)
	if err != nil || strings.HasPrefix(suffix, "+") || strings.HasPrefix(suffix, "-") {
		return 0, errors.NewFormat("chunk directory", name, "suffix is not a number")
	}
	if n < 1 {
		return 0, errors.NewFormat("chunk directory", name, "suffix must be at least 1")
	}

	return n - 1, nil
}

// Files returns the sidecar and archive of the chunk. Hidden files are
// not considered. When strict is false and several files match, the first in name order
// is used; when strict is true that is ErrAmbiguous.
func (c Chunk) Files(strict bool) (sidecar, archive string, err error) {
	sidecar, err = c.find("*.json", strict)
	if err != nil {
		return "", "", err
	}
	archive, err = c.find("*.zip", strict)
	if err != nil {
		return "", "", err
	}
	return sidecar, archive, nil
}

func (c Chunk) find(pattern string, strict bool) (string, error) {
	all, err := filepath.Glob(filepath.Join(c.Path, pattern))
	if err != nil {
		return "", errors.Wrapf(err, "glob %s", pattern)
	}

	var matches []string
	for _, m := range all {
		if !hidden(filepath.Base(m)) {
			matches = append(matches, m)
		}
	}

	switch {
	case len(matches) == 0:
		return "", errors.NewNotFound(pattern+" in chunk", c.Name)
	case len(matches) > 1 && strict:
		return "", errors.NewAmbiguous(pattern+" in chunk "+c.Name, matches)
	}

	sort.Strings(matches)
	return matches[0], nil
}
