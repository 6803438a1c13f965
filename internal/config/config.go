// Package config loads the optional YAML configuration file and the
// environment overrides used for credentials.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"sysweather/internal/collector"
)

// Config is the file-backed application configuration. Zero values fall back
// to defaults at load time, so a partial file is fine.
type Config struct {
	StateDir              string  `yaml:"state_dir"`
	SampleIntervalSeconds int     `yaml:"sample_interval_seconds"`
	HistoryCapacity       int     `yaml:"history_capacity"`
	Thermal               *bool   `yaml:"thermal"`
	Archive               Archive `yaml:"archive"`
	Graph                 Graph   `yaml:"graph"`
	Gemini                Gemini  `yaml:"gemini"`
}

// Archive configures the DuckDB sample archive.
type Archive struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`    // default: <state_dir>/archive.duckdb
	Threads int    `yaml:"threads"` // DuckDB worker threads, 0 leaves the engine default
}

// Graph configures the optional Neo4j session graph. It is active only when
// URI is set.
type Graph struct {
	URI      string `yaml:"uri"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// Gemini configures the optional AI advisor behind the MCP ask tool. It is
// active only when an API key is present.
type Gemini struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // flash, pro, flash-2
}

// DefaultPath returns the default config file location
// (~/.sysweather/config.yaml).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".sysweather", "config.yaml")
}

// Load reads the config file if it exists, applies defaults, then applies
// environment overrides for credentials. A missing file yields defaults; a
// malformed file is an error.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// Defaults only.
		default:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.SampleIntervalSeconds <= 0 {
		c.SampleIntervalSeconds = 2
	}
	if c.HistoryCapacity <= 0 {
		c.HistoryCapacity = 100
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "flash"
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SYSWEATHER_GEMINI_API_KEY"); v != "" {
		c.Gemini.APIKey = v
	}
	if v := os.Getenv("SYSWEATHER_NEO4J_URI"); v != "" {
		c.Graph.URI = v
	}
	if v := os.Getenv("SYSWEATHER_NEO4J_USER"); v != "" {
		c.Graph.User = v
	}
	if v := os.Getenv("SYSWEATHER_NEO4J_PASSWORD"); v != "" {
		c.Graph.Password = v
	}
	if v := os.Getenv("SYSWEATHER_NEO4J_DATABASE"); v != "" {
		c.Graph.Database = v
	}
}

// Collector converts the file config into the collector's own config.
func (c Config) Collector() collector.Config {
	cc := collector.DefaultConfig().
		WithSampleInterval(time.Duration(c.SampleIntervalSeconds) * time.Second).
		WithHistoryCapacity(c.HistoryCapacity)
	if c.Thermal != nil {
		cc = cc.WithThermal(*c.Thermal)
	}
	return cc
}
