// Package stats writes the per-shard stats file and summarizes image sizes.
package stats

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xtxerr/img2shard/internal/errors"
)

// Record is the content of <NNN>_stats.json. Successes always equals Count:
// a chunk either converts completely or produces no stats file at all.
type Record struct {
	Count     int `json:"count"`
	Successes int `json:"successes"`
}

// NewRecord returns the record for a fully converted chunk of count items.
func NewRecord(count int) Record {
	return Record{Count: count, Successes: count}
}

// Write writes the stats file for count items.
func Write(path string, count int) error {
	data, err := json.Marshal(NewRecord(count))
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.NewWrite(path, err)
	}
	return nil
}

// Read reads a stats file.
func Read(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("read stats: %w", err)
	}

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("decode stats %s: %w", path, err)
	}
	return r, nil
}
