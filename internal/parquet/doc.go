// Package parquet implements Parquet reading and writing of shard metadata.
//
// The package provides:
//   - MetadataWriter/MetadataReader for the per-shard metadata table
//   - WriteMetadata for writing a whole accumulator in one call
//   - Type conversion between dataset records and Parquet rows
package parquet
