// Package history keeps a bounded, time-ordered window of telemetry samples
// and answers trend queries over it.
package history

import (
	"encoding/json"
	"fmt"
	"sync"

	"sysweather/internal/collector"
)

// DefaultCapacity bounds the rolling window when no capacity is given.
const DefaultCapacity = 100

// Direction labels the slope of a metric over a window.
type Direction string

const (
	Increasing Direction = "increasing"
	Decreasing Direction = "decreasing"
	Stable     Direction = "stable"
)

// Trend is the result of a slope query over the recent window.
type Trend struct {
	Direction  Direction
	Rate       float64 // absolute slope, units of the metric per sample
	Confidence float64 // 0.0-1.0, grows with samples used
}

// MetricSelector extracts one numeric metric from a sample. The bool reports
// whether the sample carries that metric at all (e.g. unknown temperature).
type MetricSelector func(*collector.Sample) (float64, bool)

// Common selectors for trend queries.
var (
	CPUUsage MetricSelector = func(s *collector.Sample) (float64, bool) {
		return s.CPU.UsagePercent, true
	}
	MemoryUsage MetricSelector = func(s *collector.Sample) (float64, bool) {
		if s.Memory.TotalBytes == 0 {
			return 0, false
		}
		return s.Memory.UsagePercent(), true
	}
	CPUTemperature MetricSelector = func(s *collector.Sample) (float64, bool) {
		return s.CPU.TemperatureC, s.CPU.TemperatureKnown
	}
)

// Rolling is a capacity-bounded FIFO of samples in capture order. Appends
// evict the oldest entry once the capacity is reached. The storage is a ring:
// head marks the oldest slot once full, so an append is a single slot write.
// A single mutex guards it so a display refresher may read while the sampler
// appends.
type Rolling struct {
	mu       sync.Mutex
	capacity int
	samples  []collector.Sample
	head     int
}

// NewRolling creates an empty history. Capacity ≤ 0 falls back to
// DefaultCapacity.
func NewRolling(capacity int) *Rolling {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Rolling{
		capacity: capacity,
		samples:  make([]collector.Sample, 0, capacity),
	}
}

// Rehydrate builds a history from previously persisted samples, keeping only
// the most recent `capacity` entries.
func Rehydrate(samples []collector.Sample, capacity int) *Rolling {
	r := NewRolling(capacity)
	for i := range samples {
		r.Append(samples[i])
	}
	return r
}

// Append adds a sample. Once at capacity it overwrites the oldest slot and
// advances head, so appends stay O(1) regardless of capacity.
func (r *Rolling) Append(s collector.Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.samples) < r.capacity {
		r.samples = append(r.samples, s)
		return
	}
	r.samples[r.head] = s
	r.head = (r.head + 1) % r.capacity
}

// Len returns the number of retained samples.
func (r *Rolling) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

// Capacity returns the configured bound.
func (r *Rolling) Capacity() int {
	return r.capacity
}

// at returns the sample at logical position i (0 = oldest). Callers hold mu.
func (r *Rolling) at(i int) collector.Sample {
	return r.samples[(r.head+i)%len(r.samples)]
}

// Last returns the most recent sample, or false when empty.
func (r *Rolling) Last() (collector.Sample, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.samples) == 0 {
		return collector.Sample{}, false
	}
	return r.at(len(r.samples) - 1), true
}

// Recent returns up to the last n samples in capture order.
func (r *Rolling) Recent(n int) []collector.Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n <= 0 {
		return nil
	}
	if n > len(r.samples) {
		n = len(r.samples)
	}
	out := make([]collector.Sample, n)
	skip := len(r.samples) - n
	for i := range out {
		out[i] = r.at(skip + i)
	}
	return out
}

// Samples returns a copy of the full retained sequence in capture order.
func (r *Rolling) Samples() []collector.Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]collector.Sample, len(r.samples))
	for i := range out {
		out[i] = r.at(i)
	}
	return out
}

// Trend computes (last-first)/window over the most recent `window` samples
// that carry the selected metric. Slopes above 2 are increasing, below -2
// decreasing, otherwise stable. Confidence grows with the number of samples
// used, capped at 0.9. Fewer than two qualifying samples yield a stable
// trend at baseline confidence.
func (r *Rolling) Trend(selector MetricSelector, window int) Trend {
	if window <= 0 {
		return Trend{Direction: Stable, Rate: 0, Confidence: 0.3}
	}

	recent := r.Recent(window)
	values := make([]float64, 0, len(recent))
	for i := range recent {
		if v, ok := selector(&recent[i]); ok {
			values = append(values, v)
		}
	}
	if len(values) < 2 {
		return Trend{Direction: Stable, Rate: 0, Confidence: 0.3}
	}

	slope := (values[len(values)-1] - values[0]) / float64(window)
	dir := Stable
	switch {
	case slope > 2:
		dir = Increasing
	case slope < -2:
		dir = Decreasing
	}

	confidence := 0.3 + 0.1*float64(len(values))
	if confidence > 0.9 {
		confidence = 0.9
	}

	rate := slope
	if rate < 0 {
		rate = -rate
	}
	return Trend{Direction: dir, Rate: rate, Confidence: confidence}
}

// MarshalJSON serializes the retained sequence. Round-tripping through
// UnmarshalJSON reproduces an equal ordered sequence, bit-exact on all
// numeric fields.
func (r *Rolling) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Samples())
}

// UnmarshalJSON replaces the retained sequence with the persisted one,
// truncated to capacity from the oldest end.
func (r *Rolling) UnmarshalJSON(data []byte) error {
	var samples []collector.Sample
	if err := json.Unmarshal(data, &samples); err != nil {
		return fmt.Errorf("history: decode samples: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.capacity <= 0 {
		r.capacity = DefaultCapacity
	}
	if len(samples) > r.capacity {
		samples = samples[len(samples)-r.capacity:]
	}
	r.samples = make([]collector.Sample, len(samples))
	copy(r.samples, samples)
	r.head = 0
	return nil
}
