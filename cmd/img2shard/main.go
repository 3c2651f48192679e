// img2shard converts a chunked zip+sidecar image dataset into tar shards
// with parquet metadata and per-shard stats.
package main

import (
	"fmt"
	"io"
	"os"
)

// Version is set at build time via ldflags
var Version = "dev"

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return exitUsage
	}

	switch args[0] {
	case "convert":
		return runConvert(args[1:], stderr)
	case "inspect":
		return runInspect(args[1:], stdout, stderr)
	case "version":
		fmt.Fprintf(stdout, "img2shard %s\n", Version)
		return exitOK
	case "help", "-h", "-help", "--help":
		usage(stdout)
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return exitUsage
	}
}

func usage(w io.Writer) {
	fmt.Fprint(w, `Usage:
  img2shard convert <input_directory> <output_directory> [flags]
  img2shard inspect <output_directory> [--sample N]
  img2shard version

Run "img2shard <command> -h" for the flags of a command.
`)
}
