// Package config handles configuration loading and validation for
// tally. Configuration is built once at startup and passed into the
// calculator by value; there is no process-wide mutable state.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps all configuration validation failures.
var ErrInvalidConfig = errors.New("invalid configuration")

// Defaults.
const (
	DefaultMaxHistorySize = 100
	DefaultPrecision      = 10
	DefaultMaxInputValue  = 1e308
	DefaultLogLevel       = "info"
)

// Config holds the calculator configuration.
type Config struct {
	MaxHistorySize int     `yaml:"max_history_size"`
	AutoSave       bool    `yaml:"auto_save"`
	Precision      int     `yaml:"precision"`
	MaxInputValue  float64 `yaml:"max_input_value"`
	LogLevel       string  `yaml:"log_level"`

	// DataDir is where the history file, archive, and log live.
	DataDir string `yaml:"data_dir"`

	// Derived paths; set from DataDir unless overridden in the file.
	HistoryFile string `yaml:"history_file"`
	ArchiveFile string `yaml:"archive_file"`
	LogFile     string `yaml:"log_file"`
}

// Default returns a Config with sensible defaults. The data directory
// is ~/.tally, falling back to the working directory when the home
// directory cannot be determined.
func Default() Config {
	dataDir := ".tally"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".tally")
	}

	return Config{
		MaxHistorySize: DefaultMaxHistorySize,
		AutoSave:       true,
		Precision:      DefaultPrecision,
		MaxInputValue:  DefaultMaxInputValue,
		LogLevel:       DefaultLogLevel,
		DataDir:        dataDir,
	}
}

// Load reads configuration from the given YAML file, applies TALLY_*
// environment overrides, derives file paths, and validates the
// result. A missing file is not an error; defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("%w: parse config file: %v", ErrInvalidConfig, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	cfg.applyDerived()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// applyEnv overlays TALLY_* environment variables.
func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("TALLY_MAX_HISTORY_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: TALLY_MAX_HISTORY_SIZE=%q", ErrInvalidConfig, v)
		}
		c.MaxHistorySize = n
	}
	if v, ok := os.LookupEnv("TALLY_AUTO_SAVE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: TALLY_AUTO_SAVE=%q", ErrInvalidConfig, v)
		}
		c.AutoSave = b
	}
	if v, ok := os.LookupEnv("TALLY_PRECISION"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: TALLY_PRECISION=%q", ErrInvalidConfig, v)
		}
		c.Precision = n
	}
	if v, ok := os.LookupEnv("TALLY_MAX_INPUT_VALUE"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: TALLY_MAX_INPUT_VALUE=%q", ErrInvalidConfig, v)
		}
		c.MaxInputValue = f
	}
	if v, ok := os.LookupEnv("TALLY_DATA_DIR"); ok {
		c.DataDir = v
		// Paths derived from an overridden data dir win over file values.
		c.HistoryFile = ""
		c.ArchiveFile = ""
		c.LogFile = ""
	}
	if v, ok := os.LookupEnv("TALLY_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	return nil
}

// applyDerived fills in file paths not set explicitly.
func (c *Config) applyDerived() {
	if c.HistoryFile == "" {
		c.HistoryFile = filepath.Join(c.DataDir, "history.csv")
	}
	if c.ArchiveFile == "" {
		c.ArchiveFile = filepath.Join(c.DataDir, "archive.db")
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.DataDir, "tally.log")
	}
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if c.MaxHistorySize < 1 {
		return fmt.Errorf("%w: max_history_size must be at least 1, got %d", ErrInvalidConfig, c.MaxHistorySize)
	}
	if c.Precision < 0 {
		return fmt.Errorf("%w: precision must be non-negative, got %d", ErrInvalidConfig, c.Precision)
	}
	if c.MaxInputValue <= 0 {
		return fmt.Errorf("%w: max_input_value must be positive, got %v", ErrInvalidConfig, c.MaxInputValue)
	}
	return nil
}

// EnsureDataDir creates the data directory if it does not exist.
func (c Config) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}
