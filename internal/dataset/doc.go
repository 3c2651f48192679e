// Package dataset defines the data types shared by the conversion stages.
//
// Key types:
//   - CaptionField: which sidecar attribute becomes the item text
//   - Sidecar/Entry: the per-chunk JSON metadata keyed by image stem
//   - Record: one converted item as embedded in the shard and the table
//   - Metadata: the per-chunk columnar accumulator of records
//
// Naming helpers derive image keys from archive members and the zero-padded
// names of shards and their members.
package dataset
