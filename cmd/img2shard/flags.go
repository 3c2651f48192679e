package main

import (
	"flag"

	"github.com/xtxerr/img2shard/internal/dataset"
)

// captionFlag validates the caption field while flags are parsed, so an
// unknown value is rejected before anything is read from disk.
type captionFlag struct {
	value dataset.CaptionField
	set   bool
}

func (f *captionFlag) String() string {
	if f.value == "" {
		return dataset.DefaultCaption.String()
	}
	return f.value.String()
}

func (f *captionFlag) Set(s string) error {
	c, err := dataset.ParseCaptionField(s)
	if err != nil {
		return err
	}
	f.value = c
	f.set = true
	return nil
}

// parseInterleaved parses fs allowing flags before, between and after
// positional arguments. Everything after "--" is positional.
func parseInterleaved(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}

		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}

		// Parse stops at the first non-flag or after a terminating "--".
		consumed := len(args) - len(rest)
		if consumed > 0 && args[consumed-1] == "--" {
			return append(positional, rest...), nil
		}

		positional = append(positional, rest[0])
		args = rest[1:]
	}
}
