package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"github.com/xtxerr/img2shard/internal/inspect"
)

func runInspect(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: img2shard inspect <output_directory> [--sample N]")
		fs.PrintDefaults()
	}
	sample := fs.Int("sample", 0, "also print the first N texts of each shard")

	positional, err := parseInterleaved(fs, args)
	if err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		return exitUsage
	}
	if len(positional) != 1 || *sample < 0 {
		fs.Usage()
		return exitUsage
	}

	in, err := inspect.Open()
	if err != nil {
		fmt.Fprintf(stderr, "Open inspector: %v\n", err)
		return exitFailure
	}
	defer in.Close()

	ctx := context.Background()
	dir := positional[0]

	infos, err := in.Shards(ctx, dir)
	if err != nil {
		fmt.Fprintf(stderr, "Inspect: %v\n", err)
		return exitFailure
	}

	inspect.Render(stdout, infos)

	if *sample > 0 {
		var samples []inspect.Sample
		for _, s := range infos {
			texts, err := in.Texts(ctx, filepath.Join(dir, s.Name+".parquet"), *sample)
			if err != nil {
				fmt.Fprintf(stderr, "Inspect: %v\n", err)
				return exitFailure
			}
			samples = append(samples, texts...)
		}
		inspect.RenderSamples(stdout, samples)
	}

	for _, s := range infos {
		if !s.Consistent() {
			fmt.Fprintf(stderr, "shard %s is inconsistent\n", s.Name)
			return exitFailure
		}
	}
	return exitOK
}
