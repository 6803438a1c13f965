// Package store persists session state as JSON documents under one state
// directory: rolling history, analysis context, and optimization profiles.
// All writes are atomic (write to temp file, then rename) so a crash
// mid-write never leaves a corrupt file visible to the next read.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"sysweather/internal/collector"
	"sysweather/internal/history"
)

const (
	historyFile  = "history.json"
	contextFile  = "context.json"
	profilesFile = "profiles.json"
)

// Store is a JSON file store rooted at a state directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// DefaultDir returns the default state directory (~/.sysweather).
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("store: resolve home directory: %w", err)
	}
	return filepath.Join(home, ".sysweather"), nil
}

// New creates a store, creating the directory with 0700 permissions if
// needed. This is the only persistence failure that is fatal to startup.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("store: create state directory %s: %w", dir, err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the state directory path.
func (s *Store) Dir() string {
	return s.dir
}

// ScoreRecord is one archived rule-engine score.
type ScoreRecord struct {
	At    time.Time `json:"at"`
	Score int       `json:"score"`
	Focus string    `json:"focus"`
}

// Context is the accumulated analysis state kept across sessions.
type Context struct {
	Scores      []ScoreRecord     `json:"scores,omitempty"`
	Patterns    map[string]int    `json:"patterns,omitempty"`
	Preferences map[string]string `json:"preferences,omitempty"`
}

// maxScoreRecords bounds the context score history.
const maxScoreRecords = 500

// RecordScore appends a score record, trimming the oldest beyond the bound.
func (c *Context) RecordScore(rec ScoreRecord) {
	c.Scores = append(c.Scores, rec)
	if len(c.Scores) > maxScoreRecords {
		c.Scores = c.Scores[len(c.Scores)-maxScoreRecords:]
	}
}

// LoadHistory rehydrates the rolling history from disk. A missing, corrupt,
// or unreadable file falls back to an empty history with a warning; it is
// never fatal.
func (s *Store) LoadHistory(capacity int) *history.Rolling {
	var samples []collector.Sample
	if ok := s.readJSON(historyFile, &samples); !ok {
		return history.NewRolling(capacity)
	}
	return history.Rehydrate(samples, capacity)
}

// SaveHistory persists the full retained sequence.
func (s *Store) SaveHistory(hist *history.Rolling) error {
	return s.writeJSON(historyFile, hist.Samples())
}

// LoadContext reads the analysis context, falling back to an empty one.
func (s *Store) LoadContext() Context {
	var ctx Context
	s.readJSON(contextFile, &ctx)
	if ctx.Patterns == nil {
		ctx.Patterns = make(map[string]int)
	}
	if ctx.Preferences == nil {
		ctx.Preferences = make(map[string]string)
	}
	return ctx
}

// SaveContext persists the analysis context.
func (s *Store) SaveContext(ctx Context) error {
	return s.writeJSON(contextFile, ctx)
}

// readJSON loads one document. Returns false on miss or corruption; corrupt
// files are logged and left in place for inspection.
func (s *Store) readJSON(name string, v any) bool {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("state file unreadable, using defaults",
				slog.String("file", name), slog.String("error", err.Error()))
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("state file corrupt, using defaults",
			slog.String("file", name), slog.String("error", err.Error()))
		return false
	}
	return true
}

// writeJSON writes one document atomically.
func (s *Store) writeJSON(name string, v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-"+name+"-*")
	if err != nil {
		return fmt.Errorf("store: create temp for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpName)
		}
	}()

	if err := os.Chmod(tmpName, 0600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("store: chmod temp for %s: %w", name, err)
	}
	if _, err := tmp.Write(encoded); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("store: write temp for %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close temp for %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("store: rename temp for %s: %w", name, err)
	}
	success = true
	return nil
}
