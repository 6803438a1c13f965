// Package sampler owns the periodic collection loop: acquire a sample,
// commit it to history, notify the subscriber.
package sampler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"sysweather/internal/collector"
	"sysweather/internal/history"
)

// OnSample is invoked after each successful collection with the freshly
// appended sample. It runs on the sampling goroutine, so it must not block
// for long.
type OnSample func(sample *collector.Sample)

// Sampler drives periodic snapshot acquisition. Ticks are strictly
// sequential: the next collection is armed only after the current one
// completes, so a slow provider stretches the period instead of piling up
// in-flight calls.
type Sampler struct {
	provider collector.MetricsProvider
	history  *history.Rolling
	interval time.Duration
	onSample OnSample
	logger   *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
	wg      sync.WaitGroup
}

// New creates a sampler. Provider and history are required; onSample may be
// nil. A nil logger discards output.
func New(provider collector.MetricsProvider, hist *history.Rolling, interval time.Duration, onSample OnSample, logger *slog.Logger) (*Sampler, error) {
	if provider == nil || hist == nil {
		return nil, errors.New("provider and history are required")
	}
	if interval <= 0 {
		return nil, &collector.ConfigError{Field: "SampleInterval", Message: "must be positive"}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Sampler{
		provider: provider,
		history:  hist,
		interval: interval,
		onSample: onSample,
		logger:   logger,
	}, nil
}

// Start begins the periodic collection loop.
func (s *Sampler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("sampler already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.wg.Add(1)
	s.mu.Unlock()

	go s.loop(ctx)
	return nil
}

// Stop halts the loop. An in-flight acquisition is allowed to finish; no new
// tick is scheduled afterwards.
func (s *Sampler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.running = false
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

// PullOnce executes a single collection cycle immediately.
func (s *Sampler) PullOnce(ctx context.Context) error {
	return s.collect(ctx)
}

// History exposes the sampler-owned rolling window for read access.
func (s *Sampler) History() *history.Rolling {
	return s.history
}

func (s *Sampler) loop(ctx context.Context) {
	defer s.wg.Done()

	// A timer rearmed after each cycle, rather than a ticker, keeps at most
	// one collection in flight: a slow provider delays the next tick
	// instead of queueing a backlog.
	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			if err := s.collect(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("sample acquisition failed, skipping tick", slog.String("error", err.Error()))
			}
			timer.Reset(s.interval)
		}
	}
}

// collect acquires one sample and commits it. The sample reaches history and
// the subscriber only on success, so an abandoned acquisition cannot corrupt
// state.
func (s *Sampler) collect(ctx context.Context) error {
	sample, err := s.provider.Snapshot(ctx)
	if err != nil {
		return err
	}
	s.history.Append(*sample)
	if s.onSample != nil {
		s.onSample(sample)
	}
	return nil
}
