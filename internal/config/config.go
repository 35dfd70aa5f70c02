// Package config loads optional .vstrip.toml project configuration.
// Command-line flags always win over file values; the file only supplies
// defaults for flags the user did not set.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the per-project configuration file searched for upward from
// the working directory.
const FileName = ".vstrip.toml"

// Config mirrors the command-line surface of the strip run.
type Config struct {
	Output         string   `toml:"output"`
	InPlace        bool     `toml:"in_place"`
	Recursive      bool     `toml:"recursive"`
	KeepEmpty      bool     `toml:"keep_empty"`
	SpecAsComments bool     `toml:"spec_as_comments"`
	Parallel       int      `toml:"parallel"`
	Exclude        []string `toml:"exclude"`
	Watch          Watch    `toml:"watch"`
}

// Watch configures the file-watching subcommand.
type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

// Load reads the configuration at path and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// Discover walks upward from dir looking for the project configuration.
// Absence is not an error; the zero configuration with defaults applied is
// returned instead.
func Discover(dir string) (*Config, error) {
	for {
		path := filepath.Join(dir, FileName)

		cfg, err := Load(path)
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	cfg := &Config{}
	applyDefaults(cfg)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}

	if cfg.Parallel == 0 {
		cfg.Parallel = 1
	}
}
