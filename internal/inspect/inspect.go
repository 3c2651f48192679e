// Package inspect checks a converted output directory.
//
// It uses DuckDB to query the metadata tables and cross-checks them with
// the stats files and the shards: a consistent shard has one stats count
// equal to its row count, unique uids, and three tar entries per row.
package inspect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/xtxerr/img2shard/internal/shard"
	"github.com/xtxerr/img2shard/internal/stats"
)

// Missing marks a count whose source file does not exist.
const Missing = -1

// ShardInfo describes the outputs of one shard.
type ShardInfo struct {
	Name         string
	Rows         int64
	DistinctUIDs int64
	StatsCount   int
	TarEntries   int
}

// Consistent reports whether the three outputs of the shard agree.
func (s ShardInfo) Consistent() bool {
	return s.StatsCount != Missing &&
		s.TarEntries != Missing &&
		int64(s.StatsCount) == s.Rows &&
		int64(s.TarEntries) == 3*s.Rows &&
		s.DistinctUIDs == s.Rows
}

// Inspector runs queries over converted outputs.
type Inspector struct {
	db *sql.DB
}

// Open creates an inspector backed by an in-memory DuckDB database.
func Open() (*Inspector, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return &Inspector{db: db}, nil
}

// Close closes the inspector.
func (i *Inspector) Close() error {
	if i.db != nil {
		return i.db.Close()
	}
	return nil
}

// Shards inspects every <NNN>.parquet in dir, in name order.
func (i *Inspector) Shards(ctx context.Context, dir string) ([]ShardInfo, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.parquet"))
	if err != nil {
		return nil, fmt.Errorf("glob metadata: %w", err)
	}
	sort.Strings(paths)

	infos := make([]ShardInfo, 0, len(paths))
	for _, p := range paths {
		info, err := i.shard(ctx, dir, p)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (i *Inspector) shard(ctx context.Context, dir, parquetPath string) (ShardInfo, error) {
	name := strings.TrimSuffix(filepath.Base(parquetPath), ".parquet")
	info := ShardInfo{Name: name, StatsCount: Missing, TarEntries: Missing}

	row := i.db.QueryRowContext(ctx,
		`SELECT count(*), count(DISTINCT uid) FROM read_parquet($1)`, parquetPath)
	if err := row.Scan(&info.Rows, &info.DistinctUIDs); err != nil {
		return info, fmt.Errorf("query %s: %w", parquetPath, err)
	}

	rec, err := stats.Read(filepath.Join(dir, name+"_stats.json"))
	switch {
	case err == nil:
		info.StatsCount = rec.Count
	case !errors.Is(err, os.ErrNotExist):
		return info, err
	}

	n, err := shard.Count(filepath.Join(dir, name+".tar"))
	switch {
	case err == nil:
		info.TarEntries = n
	case !errors.Is(err, os.ErrNotExist):
		return info, err
	}

	return info, nil
}

// Sample is one item of a shard.
type Sample struct {
	Shard string
	Key   string
	Text  string
}

// Texts returns up to limit items of a metadata table ordered by key.
// A limit of zero or less returns every item.
func (i *Inspector) Texts(ctx context.Context, parquetPath string, limit int) ([]Sample, error) {
	rows, err := i.db.QueryContext(ctx,
		`SELECT key, text FROM read_parquet($1) ORDER BY key`, parquetPath)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", parquetPath, err)
	}
	defer rows.Close()

	name := strings.TrimSuffix(filepath.Base(parquetPath), ".parquet")

	var out []Sample
	for rows.Next() {
		if limit > 0 && len(out) == limit {
			break
		}
		s := Sample{Shard: name}
		if err := rows.Scan(&s.Key, &s.Text); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
