// Package config provides configuration loading for docdex.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// Config represents the complete docdex configuration
type Config struct {
	// Target is the target triple handed to revisions whose documents
	// do not record one.
	Target string `yaml:"target"`
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
	// Format is the CLI output format, json or text.
	Format string `yaml:"format"`
	// Checks are glob patterns (doublestar syntax) naming check files.
	Checks []string `yaml:"checks"`
	// Scripts is the directory check messages import Risor modules from.
	Scripts string `yaml:"scripts"`
}

var (
	logLevels = []string{"debug", "info", "warn", "error"}
	formats   = []string{"json", "text"}
)

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "warn",
		Format:   "json",
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if !slices.Contains(logLevels, c.LogLevel) {
		return fmt.Errorf("log_level must be one of debug, info, warn, error; got %q", c.LogLevel)
	}
	if !slices.Contains(formats, c.Format) {
		return fmt.Errorf("format must be json or text; got %q", c.Format)
	}
	for _, p := range c.Checks {
		if p == "" {
			return fmt.Errorf("checks must not contain empty patterns")
		}
	}
	return nil
}

// Level returns the slog level named by LogLevel, or warn when unknown.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	}
	return slog.LevelWarn
}

// LoadFromFile loads configuration from a YAML file. Relative check
// patterns and the scripts directory resolve against the file's directory.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i, p := range config.Checks {
		if p != "" && !filepath.IsAbs(p) {
			config.Checks[i] = filepath.Join(dir, p)
		}
	}
	if config.Scripts != "" && !filepath.IsAbs(config.Scripts) {
		config.Scripts = filepath.Join(dir, config.Scripts)
	}
	return config, nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.Target != "" {
		c.Target = other.Target
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.Format != "" {
		c.Format = other.Format
	}
	if len(other.Checks) > 0 {
		c.Checks = other.Checks
	}
	if other.Scripts != "" {
		c.Scripts = other.Scripts
	}
}
