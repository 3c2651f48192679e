package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/xtxerr/img2shard/internal/config"
	"github.com/xtxerr/img2shard/internal/errors"
	"github.com/xtxerr/img2shard/internal/logging"
	"github.com/xtxerr/img2shard/internal/pipeline"
	"github.com/xtxerr/img2shard/internal/shard"
)

func runConvert(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: img2shard convert <input_directory> <output_directory> [flags]")
		fs.PrintDefaults()
	}

	var caption captionFlag
	fs.Var(&caption, "caption", "caption field: cogvlm_caption, llava_caption or alt_txt")
	cfgPath := fs.String("config", "", "YAML config file")
	workers := fs.Int("workers", 0, "chunks converted concurrently (overrides config)")
	continueOnError := fs.Bool("continue-on-error", false, "keep converting after a chunk fails")
	strictFiles := fs.Bool("strict-files", false, "reject chunks with several sidecars or archives")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn, error")
	logFormat := fs.String("log-format", "", "log format: text, json, auto")

	positional, err := parseInterleaved(fs, args)
	if err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		return exitUsage
	}
	if len(positional) != 2 {
		fs.Usage()
		return exitUsage
	}
	inputDir, outputDir := positional[0], positional[1]

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "Load config: %v\n", err)
		if errors.IsValidation(err) {
			return exitUsage
		}
		return exitFailure
	}

	// CLI overrides
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "caption":
			cfg.Caption = caption.value.String()
		case "workers":
			cfg.Workers = *workers
		case "continue-on-error":
			cfg.ContinueOnError = *continueOnError
		case "strict-files":
			cfg.StrictFiles = *strictFiles
		case "log-level":
			cfg.Log.Level = *logLevel
		case "log-format":
			cfg.Log.Format = *logFormat
		}
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Invalid configuration: %v\n", err)
		return exitUsage
	}

	level, _ := logging.ParseLevel(cfg.Log.Level)
	format, _ := logging.ParseFormat(cfg.Log.Format)
	logging.InitWriter(stderr, level, format)
	log := logging.Component("main")
	log.Debug("img2shard starting", "version", Version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := pipeline.Run(ctx, pipeline.Options{
		InputDir:  inputDir,
		OutputDir: outputDir,
		Shard: shard.Options{
			Caption:     cfg.CaptionField(),
			ImageExt:    cfg.ImageExt,
			StrictFiles: cfg.StrictFiles,
		},
		Workers:         cfg.Workers,
		ContinueOnError: cfg.ContinueOnError,
	})
	if err != nil {
		log.Error("conversion failed", "error", err)
		return exitFailure
	}

	log.Info("done", "chunks", report.Converted, "images", report.Images)
	return exitOK
}
