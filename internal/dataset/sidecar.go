package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/xtxerr/img2shard/internal/errors"
)

// Sidecar field names besides the caption fields.
const (
	FieldFilename = "filename"
	FieldURL      = "url"
)

// Entry is one sidecar object. Fields are kept raw so that only the fields
// actually used are decoded.
type Entry map[string]json.RawMessage

// Sidecar maps image keys (numeric stems without leading zeros) to entries.
type Sidecar map[string]Entry

// ReadSidecar decodes a sidecar document.
func ReadSidecar(r io.Reader) (Sidecar, error) {
	var s Sidecar
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode sidecar: %w", err)
	}
	return s, nil
}

// LoadSidecar reads and decodes the sidecar file at path.
func LoadSidecar(path string) (Sidecar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sidecar: %w", err)
	}
	defer f.Close()

	s, err := ReadSidecar(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return s, nil
}

// Lookup returns the entry for an image key.
func (s Sidecar) Lookup(key string) (Entry, error) {
	e, ok := s[key]
	if !ok {
		return nil, errors.NewLookup("sidecar", key)
	}
	return e, nil
}

// String returns the string value of a field. A missing or null field is
// ErrLookup, a non-string value is ErrFormat.
func (e Entry) String(field string) (string, error) {
	raw, ok := e[field]
	if !ok || string(raw) == "null" {
		return "", errors.NewLookup("sidecar entry", field)
	}

	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", errors.NewFormat("sidecar field", field, "not a string")
	}
	return v, nil
}
