// Package output bundles one collection cycle into a Report, the plain data
// payload every presentation surface (console, TUI, MCP, archive, graph)
// consumes. No formatting happens here.
package output

import (
	"context"
	"fmt"
	"time"

	"sysweather/internal/advisor"
	"sysweather/internal/alerts"
	"sysweather/internal/collector"
	"sysweather/internal/history"
	"sysweather/internal/weather"
)

// Report is the full outcome of one pipeline cycle.
type Report struct {
	Sample      collector.Sample
	Weather     weather.Report
	Alerts      []alerts.Event
	Analysis    advisor.Analysis
	GeneratedAt time.Time
}

// Build assembles a report from an already collected and appended sample.
// Classification, alert evaluation, and the rule engine all run inline; they
// are pure functions over the immutable sample and history.
func Build(sample *collector.Sample, hist *history.Rolling, engine *advisor.Engine, focus advisor.Focus) Report {
	return Report{
		Sample:      *sample,
		Weather:     weather.Classify(sample),
		Alerts:      alerts.Evaluate(sample),
		Analysis:    engine.Analyze(sample, hist, focus),
		GeneratedAt: sample.Timestamp,
	}
}

// RunOnce executes a single full cycle: Collect -> Append -> Classify ->
// Analyze -> Bundle. Used by the one-shot commands; the monitor loop goes
// through the sampler instead.
func RunOnce(ctx context.Context, provider collector.MetricsProvider, hist *history.Rolling, engine *advisor.Engine, focus advisor.Focus) (*Report, error) {
	sample, err := provider.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect sample: %w", err)
	}
	hist.Append(*sample)
	report := Build(sample, hist, engine, focus)
	return &report, nil
}
