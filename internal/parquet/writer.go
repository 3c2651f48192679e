package parquet

import (
	"fmt"
	"os"
	"sync"

	"github.com/parquet-go/parquet-go"

	"github.com/xtxerr/img2shard/internal/dataset"
	"github.com/xtxerr/img2shard/internal/errors"
)

// MetadataRow is one row of the metadata table. All columns are strings,
// including the identifier-shaped uid and key.
type MetadataRow struct {
	UID                   string `parquet:"uid"`
	Key                   string `parquet:"key"`
	Text                  string `parquet:"text"`
	OriginalImageFilename string `parquet:"original_image_filename"`
	URL                   string `parquet:"url"`
}

// RecordToRow converts a Record to a MetadataRow.
func RecordToRow(r *dataset.Record) MetadataRow {
	return MetadataRow{
		UID:                   r.UID,
		Key:                   r.Key,
		Text:                  r.Text,
		OriginalImageFilename: r.OriginalImageFilename,
		URL:                   r.URL,
	}
}

// RowToRecord converts a MetadataRow to a Record.
func RowToRecord(r *MetadataRow) dataset.Record {
	return dataset.Record{
		UID:                   r.UID,
		Key:                   r.Key,
		Text:                  r.Text,
		OriginalImageFilename: r.OriginalImageFilename,
		URL:                   r.URL,
	}
}

// WriteMetadata writes the accumulator to a new Parquet file at path, one
// row per record in accumulator order. An empty accumulator yields a file
// with the schema and no rows.
func WriteMetadata(path string, m *dataset.Metadata) error {
	w, err := NewMetadataWriter(path)
	if err != nil {
		return err
	}

	if err := w.Write(m.Records()); err != nil {
		w.Close()
		return err
	}

	return w.Close()
}

// MetadataWriter writes metadata rows to a Parquet file.
type MetadataWriter struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	writer *parquet.GenericWriter[MetadataRow]
	closed bool
}

// NewMetadataWriter creates a new metadata Parquet writer. The parent
// directory must exist. Columns are snappy-compressed, as the usual
// dataset tooling writes them.
func NewMetadataWriter(path string) (*MetadataWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.NewWrite(path, err)
	}

	writerOpts := []parquet.WriterOption{
		parquet.Compression(&parquet.Snappy),
	}

	writer := parquet.NewGenericWriter[MetadataRow](f, writerOpts...)

	return &MetadataWriter{
		path:   path,
		file:   f,
		writer: writer,
	}, nil
}

// Write writes records to the Parquet file.
func (w *MetadataWriter) Write(records []dataset.Record) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]MetadataRow, len(records))
	for i := range records {
		rows[i] = RecordToRow(&records[i])
	}

	return w.writeRows(rows)
}

func (w *MetadataWriter) writeRows(rows []MetadataRow) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWriterClosed
	}

	if _, err := w.writer.Write(rows); err != nil {
		return errors.NewWrite(w.path, fmt.Errorf("write rows: %w", err))
	}
	return nil
}

// Close closes the writer.
func (w *MetadataWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.writer.Close(); err != nil {
		w.file.Close()
		return errors.NewWrite(w.path, fmt.Errorf("close writer: %w", err))
	}

	if err := w.file.Close(); err != nil {
		return errors.NewWrite(w.path, err)
	}
	return nil
}

// Path returns the file path.
func (w *MetadataWriter) Path() string {
	return w.path
}

// ErrWriterClosed is returned when writing to a closed writer.
var ErrWriterClosed = fmt.Errorf("parquet writer is closed")
