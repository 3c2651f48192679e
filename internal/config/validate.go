package config

import (
	"strings"

	"github.com/xtxerr/img2shard/internal/dataset"
	"github.com/xtxerr/img2shard/internal/errors"
	"github.com/xtxerr/img2shard/internal/logging"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	v := errors.NewValidationErrors()

	if _, err := dataset.ParseCaptionField(c.Caption); err != nil {
		v.Add(err)
	}

	if c.ImageExt == "" {
		v.AddField("image_ext", "must not be empty")
	} else if !strings.HasPrefix(c.ImageExt, ".") {
		v.AddField("image_ext", "must start with '.'")
	}

	if c.Workers < 1 {
		v.AddField("workers", "must be at least 1")
	}

	if err := c.Log.Validate(); err != nil {
		v.Add(err)
	}

	return v.Err()
}

// Validate checks the logging configuration.
func (c *LogConfig) Validate() error {
	v := errors.NewValidationErrors()

	if _, err := logging.ParseLevel(c.Level); err != nil {
		v.AddField("log.level", err.Error())
	}
	if _, err := logging.ParseFormat(c.Format); err != nil {
		v.AddField("log.format", err.Error())
	}

	return v.Err()
}
