// Package config holds the converter configuration.
//
// Values are layered: DefaultConfig, then an optional YAML file, then
// IMG2SHARD_* environment variables, then command-line flags (applied by
// the caller).
package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/xtxerr/img2shard/internal/dataset"
)

// EnvPrefix is the prefix of environment overrides, e.g. IMG2SHARD_WORKERS.
const EnvPrefix = "IMG2SHARD"

// Config represents the complete converter configuration.
type Config struct {
	// Caption is the sidecar field used as item text.
	Caption string `yaml:"caption" split_words:"true"`

	// ImageExt selects image members of the chunk archives.
	ImageExt string `yaml:"image_ext" split_words:"true"`

	// Workers is the number of chunks converted concurrently.
	// 1 converts strictly in order.
	Workers int `yaml:"workers" split_words:"true"`

	// ContinueOnError keeps converting the remaining chunks after a chunk
	// fails. The run still fails at the end.
	ContinueOnError bool `yaml:"continue_on_error" split_words:"true"`

	// StrictFiles rejects chunks with more than one sidecar or archive
	// instead of using the first in name order.
	StrictFiles bool `yaml:"strict_files" split_words:"true"`

	// Log configures logging.
	Log LogConfig `yaml:"log" split_words:"true"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level: debug, info, warn, error.
	Level string `yaml:"level" split_words:"true"`

	// Format: text, json, auto.
	Format string `yaml:"format" split_words:"true"`
}

// DefaultConfig returns a configuration matching the reference layout.
func DefaultConfig() *Config {
	return &Config{
		Caption:  dataset.DefaultCaption.String(),
		ImageExt: dataset.DefaultImageExt,
		Workers:  1,
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load loads configuration from a YAML file on top of the defaults, then
// applies environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides fields from IMG2SHARD_* environment variables.
// Unset variables leave the current value in place.
func (c *Config) ApplyEnv() error {
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return fmt.Errorf("environment overrides: %w", err)
	}
	return nil
}

// CaptionField returns the parsed caption field. Call after Validate.
func (c *Config) CaptionField() dataset.CaptionField {
	return dataset.CaptionField(c.Caption)
}
