package shard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/xtxerr/img2shard/internal/chunk"
	"github.com/xtxerr/img2shard/internal/dataset"
	"github.com/xtxerr/img2shard/internal/errors"
	"github.com/xtxerr/img2shard/internal/logging"
	"github.com/xtxerr/img2shard/internal/stats"
)

// Options configures a transcode.
type Options struct {
	// Caption selects the sidecar field used as item text.
	Caption dataset.CaptionField

	// ImageExt selects archive members by suffix (case-sensitive).
	ImageExt string

	// StrictFiles rejects chunks with more than one sidecar or archive.
	StrictFiles bool
}

// DefaultOptions returns the options of the reference layout.
func DefaultOptions() Options {
	return Options{
		Caption:  dataset.DefaultCaption,
		ImageExt: dataset.DefaultImageExt,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Caption == "" {
		o.Caption = d.Caption
	}
	if o.ImageExt == "" {
		o.ImageExt = d.ImageExt
	}
	return o
}

// Result is the outcome of a successful transcode.
type Result struct {
	Chunk    chunk.Chunk
	TarPath  string
	Metadata *dataset.Metadata
	Sizes    *stats.SizeRecorder
}

// Count returns the number of converted images.
func (r *Result) Count() int {
	return r.Metadata.Len()
}

// Transcode converts chunk c into <outDir>/<NNN>.tar and returns the
// per-item metadata. outDir is created if needed. On failure the shard
// file is removed.
func Transcode(ctx context.Context, c chunk.Chunk, outDir string, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	log := logging.Component("shard").With("chunk", c.Name)

	sidecarPath, archivePath, err := c.Files(opts.StrictFiles)
	if err != nil {
		return nil, err
	}

	sidecar, err := dataset.LoadSidecar(sidecarPath)
	if err != nil {
		return nil, err
	}

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", archivePath, err)
	}
	defer zr.Close()

	members := imageMembers(zr.File, opts.ImageExt)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, errors.NewWrite(outDir, err)
	}

	w, err := Create(dataset.TarPath(outDir, c.Index))
	if err != nil {
		return nil, err
	}

	res := &Result{
		Chunk:    c,
		TarPath:  w.Path(),
		Metadata: dataset.NewMetadata(len(members)),
		Sizes:    stats.NewSizeRecorder(),
	}

	for i, f := range members {
		if err := ctx.Err(); err != nil {
			return nil, abort(w, err)
		}

		rec, size, err := writeItem(w, f, sidecar, c.Index, i, opts)
		if err != nil {
			return nil, abort(w, fmt.Errorf("member %s: %w", f.Name, err))
		}

		res.Metadata.Append(rec)
		res.Sizes.Add(size)
	}

	if err := w.Close(); err != nil {
		return nil, abort(w, err)
	}

	log.Debug("shard written", "path", res.TarPath, "items", res.Count(), "entries", w.Entries())
	return res, nil
}

// abort removes the partial shard and returns cause.
func abort(w *Writer, cause error) error {
	if err := w.Abort(); err != nil {
		logging.Warn("remove partial shard failed", "path", w.Path(), "error", err)
	}
	return cause
}

// imageMembers returns the members whose name ends in ext, sorted by name.
func imageMembers(files []*zip.File, ext string) []*zip.File {
	var out []*zip.File
	for _, f := range files {
		if strings.HasSuffix(f.Name, ext) {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// writeItem writes the three entries of member f at sequence seq.
func writeItem(w *Writer, f *zip.File, sidecar dataset.Sidecar, chunkIndex, seq int, opts Options) (dataset.Record, int, error) {
	entry, err := sidecar.Lookup(dataset.ImageKey(f.Name))
	if err != nil {
		return dataset.Record{}, 0, err
	}

	text, err := entry.String(opts.Caption.String())
	if err != nil {
		return dataset.Record{}, 0, err
	}
	filename, err := entry.String(dataset.FieldFilename)
	if err != nil {
		return dataset.Record{}, 0, err
	}
	url, err := entry.String(dataset.FieldURL)
	if err != nil {
		return dataset.Record{}, 0, err
	}

	image, err := readMember(f)
	if err != nil {
		return dataset.Record{}, 0, err
	}

	base := dataset.Basename(chunkIndex, seq)
	rec := dataset.Record{
		UID:                   dataset.NewUID(),
		Key:                   base,
		Text:                  text,
		OriginalImageFilename: filename,
		URL:                   url,
	}

	recJSON, err := encodeRecord(rec)
	if err != nil {
		return dataset.Record{}, 0, err
	}

	if err := w.Add(base+opts.ImageExt, image); err != nil {
		return dataset.Record{}, 0, err
	}
	if err := w.Add(base+dataset.TextExt, []byte(text)); err != nil {
		return dataset.Record{}, 0, err
	}
	if err := w.Add(base+dataset.JSONExt, recJSON); err != nil {
		return dataset.Record{}, 0, err
	}

	return rec, len(image), nil
}

// sizeHintLimit caps the buffer preallocated from a member's declared size.
// The header may lie; the reader fails on a size mismatch.
const sizeHintLimit = 64 << 20

func readMember(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open member: %w", err)
	}
	defer rc.Close()

	buf := bytes.NewBuffer(make([]byte, 0, min(f.UncompressedSize64, sizeHintLimit)))
	if _, err := io.Copy(buf, rc); err != nil {
		return nil, fmt.Errorf("read member: %w", err)
	}
	return buf.Bytes(), nil
}

// encodeRecord renders rec as compact JSON without HTML escaping.
func encodeRecord(rec dataset.Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
