// Package shard converts one input chunk into one tar shard.
//
// Every image member of the chunk archive becomes three shard entries
// sharing a basename of chunk index and sequence number:
//
//	<NNN><SSSSSS>.jpg   image bytes, unchanged
//	<NNN><SSSSSS>.txt   caption text (UTF-8)
//	<NNN><SSSSSS>.json  dataset.Record
//
// Sequence numbers follow the byte order of member names, starting at 0.
package shard
