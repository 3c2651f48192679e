package dataset

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// Record is one converted item. It is embedded as <key>.json in the shard
// and appended as one row to the metadata table.
type Record struct {
	UID                   string `json:"uid"`
	Key                   string `json:"key"`
	Text                  string `json:"text"`
	OriginalImageFilename string `json:"original_image_filename"`
	URL                   string `json:"url"`
}

// NewUID returns a random UUIDv4 as 32 lowercase hex digits.
func NewUID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

// Metadata accumulates the records of one chunk as parallel columns.
// All columns always have the same length.
type Metadata struct {
	UID                   []string
	Key                   []string
	Text                  []string
	OriginalImageFilename []string
	URL                   []string
}

// NewMetadata creates an accumulator with room for n records.
func NewMetadata(n int) *Metadata {
	return &Metadata{
		UID:                   make([]string, 0, n),
		Key:                   make([]string, 0, n),
		Text:                  make([]string, 0, n),
		OriginalImageFilename: make([]string, 0, n),
		URL:                   make([]string, 0, n),
	}
}

// Append adds a record as the next row.
func (m *Metadata) Append(r Record) {
	m.UID = append(m.UID, r.UID)
	m.Key = append(m.Key, r.Key)
	m.Text = append(m.Text, r.Text)
	m.OriginalImageFilename = append(m.OriginalImageFilename, r.OriginalImageFilename)
	m.URL = append(m.URL, r.URL)
}

// Len returns the number of rows.
func (m *Metadata) Len() int {
	if m == nil {
		return 0
	}
	return len(m.UID)
}

// Row returns row i as a Record.
func (m *Metadata) Row(i int) Record {
	return Record{
		UID:                   m.UID[i],
		Key:                   m.Key[i],
		Text:                  m.Text[i],
		OriginalImageFilename: m.OriginalImageFilename[i],
		URL:                   m.URL[i],
	}
}

// Records returns all rows in order.
func (m *Metadata) Records() []Record {
	out := make([]Record, m.Len())
	for i := range out {
		out[i] = m.Row(i)
	}
	return out
}
