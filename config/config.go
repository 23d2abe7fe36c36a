// Package config holds the adpscan command configuration, loaded from YAML and overridable by flags.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/thomasjungblut/go-adpscan/source"
	"gopkg.in/yaml.v3"
)

// Config represents the complete adpscan configuration
type Config struct {
	Input   InputConfig   `yaml:"input"`
	Scan    ScanConfig    `yaml:"scan"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// InputConfig describes how captures are read
type InputConfig struct {
	Compression     string `yaml:"compression"` // auto, none, gzip, snappy
	MMap            bool   `yaml:"mmap"`
	DirectIO        bool   `yaml:"direct_io"`
	BufferSizeBytes int    `yaml:"buffer_size_bytes"`
}

// ScanConfig contains the frame scanner parameters
type ScanConfig struct {
	MaxCount    int  `yaml:"max_count"` // negative for all frames
	Parallelism int  `yaml:"parallelism"`
	TightSlack  bool `yaml:"tight_slack"`
	CTD         bool `yaml:"ctd"`
	GPS         bool `yaml:"gps"`
	BottomTrack bool `yaml:"bottom_track"`
	OneBased    bool `yaml:"one_based"`
	Legacy      bool `yaml:"legacy"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus textfile export, an empty path disables it
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Compression:     "auto",
			BufferSizeBytes: source.DefaultBufferSize,
		},
		Scan: ScanConfig{
			MaxCount:    -1,
			Parallelism: 1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads and parses the configuration file, unset fields keep their defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	// the legacy encoding is 1-based by definition
	if config.Scan.Legacy {
		config.Scan.OneBased = true
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate performs validation of all sections
func (c *Config) Validate() error {
	if err := c.Input.Validate(); err != nil {
		return fmt.Errorf("input config: %w", err)
	}

	if err := c.Scan.Validate(); err != nil {
		return fmt.Errorf("scan config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

func (c *InputConfig) Validate() error {
	if _, err := source.ParseCompressionType(c.Compression); err != nil {
		return err
	}
	if c.MMap && c.DirectIO {
		return fmt.Errorf("mmap and direct_io are mutually exclusive")
	}
	if c.BufferSizeBytes <= 0 {
		return fmt.Errorf("buffer_size_bytes must be positive, got %d", c.BufferSizeBytes)
	}
	return nil
}

func (c *ScanConfig) Validate() error {
	if c.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1, got %d", c.Parallelism)
	}
	return nil
}

func (c *LoggingConfig) Validate() error {
	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q, must be one of debug, info, warn, error", c.Level)
	}

	switch strings.ToLower(c.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q, must be text or json", c.Format)
	}
	return nil
}
