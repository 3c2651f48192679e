package dataset

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// DefaultImageExt is the extension of image members in source archives.
const DefaultImageExt = ".jpg"

// Output member suffixes inside a shard.
const (
	TextExt = ".txt"
	JSONExt = ".json"
)

// ImageKey derives the sidecar key of an archive member: the file stem
// with leading zeros stripped ("000042.jpg" -> "42", "imgs/5.jpg" -> "5").
// A stem of only zeros yields "".
func ImageKey(member string) string {
	base := path.Base(path.Clean(member))
	stem := strings.TrimSuffix(base, path.Ext(base))
	return strings.TrimLeft(stem, "0")
}

// Basename is the shared name of the three shard members of one item:
// the 3-digit chunk index followed by the 6-digit sequence number.
func Basename(chunkIndex, seq int) string {
	return fmt.Sprintf("%03d%06d", chunkIndex, seq)
}

// ShardName is the zero-padded stem of all outputs of a chunk.
func ShardName(chunkIndex int) string {
	return fmt.Sprintf("%03d", chunkIndex)
}

// TarPath returns <dir>/<NNN>.tar.
func TarPath(dir string, chunkIndex int) string {
	return filepath.Join(dir, ShardName(chunkIndex)+".tar")
}

// ParquetPath returns <dir>/<NNN>.parquet.
func ParquetPath(dir string, chunkIndex int) string {
	return filepath.Join(dir, ShardName(chunkIndex)+".parquet")
}

// StatsPath returns <dir>/<NNN>_stats.json.
func StatsPath(dir string, chunkIndex int) string {
	return filepath.Join(dir, ShardName(chunkIndex)+"_stats.json")
}
