package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SYSWEATHER_GEMINI_API_KEY",
		"SYSWEATHER_NEO4J_URI",
		"SYSWEATHER_NEO4J_USER",
		"SYSWEATHER_NEO4J_PASSWORD",
		"SYSWEATHER_NEO4J_DATABASE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SampleIntervalSeconds != 2 {
		t.Errorf("interval = %d, want 2", cfg.SampleIntervalSeconds)
	}
	if cfg.HistoryCapacity != 100 {
		t.Errorf("capacity = %d, want 100", cfg.HistoryCapacity)
	}
	if cfg.Gemini.Model != "flash" {
		t.Errorf("model = %q, want \"flash\"", cfg.Gemini.Model)
	}
	if cfg.Graph.URI != "" || cfg.Archive.Enabled {
		t.Errorf("optional backends enabled by default: %+v", cfg)
	}
}

func TestLoadParsesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
state_dir: /var/lib/sysweather
sample_interval_seconds: 5
history_capacity: 250
thermal: false
archive:
  enabled: true
  path: /tmp/archive.duckdb
  threads: 4
graph:
  uri: neo4j://localhost:7687
  user: neo4j
  password: secret
gemini:
  model: pro
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StateDir != "/var/lib/sysweather" {
		t.Errorf("state dir = %q", cfg.StateDir)
	}
	if cfg.SampleIntervalSeconds != 5 || cfg.HistoryCapacity != 250 {
		t.Errorf("sampling = %d/%d", cfg.SampleIntervalSeconds, cfg.HistoryCapacity)
	}
	if cfg.Thermal == nil || *cfg.Thermal {
		t.Error("thermal override not parsed")
	}
	if !cfg.Archive.Enabled || cfg.Archive.Path != "/tmp/archive.duckdb" || cfg.Archive.Threads != 4 {
		t.Errorf("archive = %+v", cfg.Archive)
	}
	if cfg.Graph.URI != "neo4j://localhost:7687" || cfg.Graph.Password != "secret" {
		t.Errorf("graph = %+v", cfg.Graph)
	}
	if cfg.Gemini.Model != "pro" {
		t.Errorf("model = %q, want \"pro\"", cfg.Gemini.Model)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "state_dir: [unclosed")
	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted malformed YAML")
	}
}

func TestLoadPartialFileFillsDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "history_capacity: 30\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HistoryCapacity != 30 {
		t.Errorf("capacity = %d, want 30", cfg.HistoryCapacity)
	}
	if cfg.SampleIntervalSeconds != 2 || cfg.Gemini.Model != "flash" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
graph:
  uri: neo4j://file-host:7687
  user: file-user
`)
	t.Setenv("SYSWEATHER_GEMINI_API_KEY", "env-key")
	t.Setenv("SYSWEATHER_NEO4J_URI", "neo4j://env-host:7687")
	t.Setenv("SYSWEATHER_NEO4J_PASSWORD", "env-pass")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Gemini.APIKey != "env-key" {
		t.Errorf("api key = %q", cfg.Gemini.APIKey)
	}
	if cfg.Graph.URI != "neo4j://env-host:7687" {
		t.Errorf("uri = %q, want env override", cfg.Graph.URI)
	}
	// Unset env vars leave file values alone.
	if cfg.Graph.User != "file-user" {
		t.Errorf("user = %q, want file value", cfg.Graph.User)
	}
	if cfg.Graph.Password != "env-pass" {
		t.Errorf("password = %q, want env value", cfg.Graph.Password)
	}
}

func TestCollectorConversion(t *testing.T) {
	off := false
	cfg := Config{SampleIntervalSeconds: 7, HistoryCapacity: 40, Thermal: &off}

	cc := cfg.Collector()
	if cc.SampleInterval != 7*time.Second {
		t.Errorf("interval = %v, want 7s", cc.SampleInterval)
	}
	if cc.HistoryCapacity != 40 {
		t.Errorf("capacity = %d, want 40", cc.HistoryCapacity)
	}
	if cc.EnableThermal {
		t.Error("thermal override not applied")
	}
	if err := cc.Validate(); err != nil {
		t.Errorf("converted config invalid: %v", err)
	}
}

func TestCollectorConversionThermalDefault(t *testing.T) {
	cfg := Config{SampleIntervalSeconds: 2, HistoryCapacity: 100}
	if cc := cfg.Collector(); !cc.EnableThermal {
		t.Error("thermal should default to enabled")
	}
}
