package parquet

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/xtxerr/img2shard/internal/dataset"
)

// MetadataReader reads metadata rows from a Parquet file.
type MetadataReader struct {
	file   *os.File
	reader *parquet.GenericReader[MetadataRow]
	path   string
}

// NewMetadataReader creates a new metadata Parquet reader.
func NewMetadataReader(path string) (*MetadataReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	reader := parquet.NewGenericReader[MetadataRow](f)

	return &MetadataReader{
		file:   f,
		reader: reader,
		path:   path,
	}, nil
}

// ReadAll reads all records from the file.
func (r *MetadataReader) ReadAll() ([]dataset.Record, error) {
	numRows := r.reader.NumRows()
	if numRows == 0 {
		return nil, nil
	}
	rows := make([]MetadataRow, numRows)

	n, err := r.reader.Read(rows)
	if err != nil && err != io.EOF {
		return nil, err
	}

	records := make([]dataset.Record, n)
	for i := 0; i < n; i++ {
		records[i] = RowToRecord(&rows[i])
	}

	return records, nil
}

// NumRows returns the total number of rows in the file.
func (r *MetadataReader) NumRows() int64 {
	return r.reader.NumRows()
}

// Close closes the reader.
func (r *MetadataReader) Close() error {
	if err := r.reader.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

// Path returns the file path.
func (r *MetadataReader) Path() string {
	return r.path
}
