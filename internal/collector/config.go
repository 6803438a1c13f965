package collector

import "time"

// Config contains configurable parameters for the system collector.
// Use DefaultConfig() to get sensible defaults, then override as needed.
type Config struct {
	// SnapshotTimeout bounds one full sensor fan-out (default: 5s).
	SnapshotTimeout time.Duration

	// SampleInterval is how often the sampler collects (default: 2s).
	SampleInterval time.Duration

	// HistoryCapacity is the rolling history bound (default: 100).
	HistoryCapacity int

	// EnableThermal toggles temperature collection (default: true).
	// Disable on hosts where sensor reads are slow or noisy.
	EnableThermal bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SnapshotTimeout: 5 * time.Second,
		SampleInterval:  2 * time.Second,
		HistoryCapacity: 100,
		EnableThermal:   true,
	}
}

// WithSnapshotTimeout returns a copy of the config with modified timeout.
func (c Config) WithSnapshotTimeout(d time.Duration) Config {
	c.SnapshotTimeout = d
	return c
}

// WithSampleInterval returns a copy of the config with modified interval.
func (c Config) WithSampleInterval(d time.Duration) Config {
	c.SampleInterval = d
	return c
}

// WithHistoryCapacity returns a copy of the config with modified capacity.
func (c Config) WithHistoryCapacity(n int) Config {
	c.HistoryCapacity = n
	return c
}

// WithThermal returns a copy of the config with thermal collection toggled.
func (c Config) WithThermal(enabled bool) Config {
	c.EnableThermal = enabled
	return c
}

// Validate checks if the configuration is valid and returns an error if not.
func (c Config) Validate() error {
	if c.SnapshotTimeout <= 0 {
		return &ConfigError{Field: "SnapshotTimeout", Message: "must be positive"}
	}
	if c.SampleInterval <= 0 {
		return &ConfigError{Field: "SampleInterval", Message: "must be positive"}
	}
	if c.HistoryCapacity <= 0 {
		return &ConfigError{Field: "HistoryCapacity", Message: "must be positive"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Field + " " + e.Message
}
