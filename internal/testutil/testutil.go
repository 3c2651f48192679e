// Package testutil builds input datasets for tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
)

// Member is one zip entry, written in the given order.
type Member struct {
	Name string
	Data []byte
}

// Entry is one sidecar object. Empty caption fields are omitted.
type Entry struct {
	Filename string
	URL      string
	CogVLM   string
	LLaVA    string
	AltTxt   string
}

func (e Entry) object() map[string]string {
	obj := map[string]string{
		"filename": e.Filename,
		"url":      e.URL,
	}
	if e.CogVLM != "" {
		obj["cogvlm_caption"] = e.CogVLM
	}
	if e.LLaVA != "" {
		obj["llava_caption"] = e.LLaVA
	}
	if e.AltTxt != "" {
		obj["alt_txt"] = e.AltTxt
	}
	return obj
}

// Chunk creates <root>/images/<name>/ holding <name>.json with sidecar and
// <name>.zip with members, and returns the chunk directory.
func Chunk(t testing.TB, root, name string, sidecar map[string]Entry, members []Member) string {
	t.Helper()

	dir := filepath.Join(root, "images", name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create chunk dir: %v", err)
	}

	doc := make(map[string]map[string]string, len(sidecar))
	for k, e := range sidecar {
		doc[k] = e.object()
	}
	WriteJSON(t, filepath.Join(dir, name+".json"), doc)
	WriteZip(t, filepath.Join(dir, name+".zip"), members)

	return dir
}

// WriteJSON writes v as JSON to path.
func WriteJSON(t testing.TB, path string, v any) {
	t.Helper()

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteZip writes a zip archive with members in order.
func WriteZip(t testing.TB, path string, members []Member) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, m := range members {
		w, err := zw.Create(m.Name)
		if err != nil {
			t.Fatalf("zip create %s: %v", m.Name, err)
		}
		if _, err := w.Write(m.Data); err != nil {
			t.Fatalf("zip write %s: %v", m.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
}

// FakeJPEG returns distinct bytes standing in for an image.
func FakeJPEG(seed string) []byte {
	return append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, []byte(seed)...)
}
