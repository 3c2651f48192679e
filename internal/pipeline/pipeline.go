// Package pipeline drives a conversion run over every chunk of a dataset.
//
// Chunks are independent: each produces <NNN>.tar, <NNN>.parquet and
// <NNN>_stats.json from its own inputs only. They are started in name
// order; with Workers > 1 up to that many run at once.
//
// By default the first failing chunk cancels the run. With
// ContinueOnError every chunk is attempted and the failures are joined.
// Either way a failed chunk leaves none of its outputs behind.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xtxerr/img2shard/internal/chunk"
	"github.com/xtxerr/img2shard/internal/dataset"
	"github.com/xtxerr/img2shard/internal/errors"
	"github.com/xtxerr/img2shard/internal/logging"
	"github.com/xtxerr/img2shard/internal/parquet"
	"github.com/xtxerr/img2shard/internal/shard"
	"github.com/xtxerr/img2shard/internal/stats"
)

// Options configures a run.
type Options struct {
	InputDir  string
	OutputDir string

	Shard shard.Options

	// Workers is the number of chunks converted concurrently (min 1).
	Workers int

	// ContinueOnError converts the remaining chunks after a failure.
	ContinueOnError bool
}

// Status is the outcome of one chunk.
type Status int

const (
	StatusSkipped Status = iota
	StatusConverted
	StatusFailed
)

// String returns a human-readable representation of the Status.
func (s Status) String() string {
	switch s {
	case StatusConverted:
		return "converted"
	case StatusFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// ChunkResult describes one chunk of a run.
type ChunkResult struct {
	Chunk    chunk.Chunk
	Status   Status
	Images   int
	Sizes    stats.SizeSummary
	Duration time.Duration
	Err      error
}

// Report summarizes a run.
type Report struct {
	Chunks    []ChunkResult
	Converted int
	Failed    int
	Skipped   int
	Images    int
	Sizes     stats.SizeSummary
	Duration  time.Duration
}

// Run converts every chunk under opts.InputDir into opts.OutputDir.
// A dataset without chunks is a successful no-op.
func Run(ctx context.Context, opts Options) (*Report, error) {
	log := logging.Component("pipeline")
	start := time.Now()

	chunks, err := chunk.Discover(opts.InputDir)
	if err != nil {
		return nil, err
	}
	if err := checkIndices(chunks); err != nil {
		return nil, err
	}

	if len(chunks) == 0 {
		log.Warn("no chunks found", "input", opts.InputDir)
		return &Report{}, nil
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	log.Info("conversion started",
		"input", opts.InputDir,
		"output", opts.OutputDir,
		"chunks", len(chunks),
		"caption", opts.Shard.Caption,
		"workers", workers)

	results := make([]ChunkResult, len(chunks))
	for i, c := range chunks {
		results[i] = ChunkResult{Chunk: c}
	}
	sizes := make([]*stats.SizeRecorder, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, c := range chunks {
		i, c := i, c // per-iteration copies (go 1.21 loop semantics)
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			res, err := convertChunk(gctx, c, opts)
			r := &results[i]
			r.Duration = res.duration
			if err != nil && errors.Is(err, context.Canceled) && ctx.Err() == nil {
				// Cancelled because another chunk failed.
				return nil
			}
			if err != nil {
				r.Status = StatusFailed
				r.Err = fmt.Errorf("chunk %s: %w", c.Name, err)
				log.Error("chunk failed", "chunk", c.Name, "error", err)
				if opts.ContinueOnError {
					return nil
				}
				return r.Err
			}

			r.Status = StatusConverted
			r.Images = res.images
			r.Sizes = res.sizes.Summary()
			sizes[i] = res.sizes
			log.Info("chunk converted",
				"chunk", c.Name,
				"shard", dataset.ShardName(c.Index),
				"images", r.Images,
				"sizes", r.Sizes,
				"duration", r.Duration)
			return nil
		})
	}

	waitErr := g.Wait()

	report := summarize(results, sizes)
	report.Duration = time.Since(start)

	log.Info("conversion finished",
		"converted", report.Converted,
		"failed", report.Failed,
		"skipped", report.Skipped,
		"images", report.Images,
		"sizes", report.Sizes,
		"duration", report.Duration)

	if waitErr != nil {
		return report, waitErr
	}
	if report.Failed > 0 {
		var errs []error
		for _, r := range report.Chunks {
			if r.Err != nil {
				errs = append(errs, r.Err)
			}
		}
		return report, errors.Join(errs...)
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

type chunkOutcome struct {
	images   int
	sizes    *stats.SizeRecorder
	duration time.Duration
}

// convertChunk writes the shard, the metadata table and the stats file of
// one chunk. Any failure removes all three.
func convertChunk(ctx context.Context, c chunk.Chunk, opts Options) (chunkOutcome, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return chunkOutcome{}, err
	}

	ctx = logging.ContextWithChunk(ctx, c.Name)
	logging.WithContext(ctx).Debug("converting chunk", "path", c.Path, "index", c.Index)

	tarPath := dataset.TarPath(opts.OutputDir, c.Index)
	parquetPath := dataset.ParquetPath(opts.OutputDir, c.Index)
	statsPath := dataset.StatsPath(opts.OutputDir, c.Index)

	res, err := shard.Transcode(ctx, c, opts.OutputDir, opts.Shard)
	if err == nil {
		err = parquet.WriteMetadata(parquetPath, res.Metadata)
	}
	if err == nil {
		err = stats.Write(statsPath, res.Count())
	}
	if err != nil {
		// Also drops what an earlier run left at these paths.
		removeOutputs(tarPath, parquetPath, statsPath)
		return chunkOutcome{duration: time.Since(start)}, err
	}

	return chunkOutcome{
		images:   res.Count(),
		sizes:    res.Sizes,
		duration: time.Since(start),
	}, nil
}

func removeOutputs(paths ...string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			logging.Warn("remove output failed", "path", p, "error", err)
		}
	}
}

// checkIndices rejects two chunks mapping to the same outputs.
func checkIndices(chunks []chunk.Chunk) error {
	seen := make(map[int]string, len(chunks))
	for _, c := range chunks {
		if prev, ok := seen[c.Index]; ok {
			return errors.NewFormat("chunk directory", c.Name,
				fmt.Sprintf("index %d already used by %s", c.Index, prev))
		}
		seen[c.Index] = c.Name
	}
	return nil
}

func summarize(results []ChunkResult, sizes []*stats.SizeRecorder) *Report {
	report := &Report{Chunks: results}
	total := stats.NewSizeRecorder()

	for i, r := range results {
		switch r.Status {
		case StatusConverted:
			report.Converted++
			report.Images += r.Images
			total.Merge(sizes[i])
		case StatusFailed:
			report.Failed++
		default:
			report.Skipped++
		}
	}

	report.Sizes = total.Summary()
	return report
}
