package history

import (
	"encoding/json"
	"testing"
	"time"

	"sysweather/internal/collector"
)

func sampleAt(t time.Time, cpu, memPct float64) collector.Sample {
	total := uint64(16) << 30
	return collector.Sample{
		Timestamp: t,
		CPU:       collector.CPUStats{UsagePercent: cpu, CoreCount: 8},
		Memory: collector.MemoryStats{
			TotalBytes: total,
			UsedBytes:  uint64(float64(total) * memPct / 100),
		},
	}
}

func fill(r *Rolling, cpuValues ...float64) {
	base := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	for i, v := range cpuValues {
		r.Append(sampleAt(base.Add(time.Duration(i)*2*time.Second), v, 40))
	}
}

func TestAppendEvictsOldest(t *testing.T) {
	r := NewRolling(3)
	fill(r, 10, 20, 30, 40)

	if r.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", r.Len())
	}
	samples := r.Samples()
	if samples[0].CPU.UsagePercent != 20 {
		t.Errorf("oldest sample = %.0f, want 20", samples[0].CPU.UsagePercent)
	}
	if samples[2].CPU.UsagePercent != 40 {
		t.Errorf("newest sample = %.0f, want 40", samples[2].CPU.UsagePercent)
	}
}

func TestAppendKeepsOrderAcrossManyEvictions(t *testing.T) {
	r := NewRolling(4)
	for i := 0; i < 11; i++ {
		fill(r, float64(i))
	}

	samples := r.Samples()
	if len(samples) != 4 {
		t.Fatalf("Len() = %d, want 4", len(samples))
	}
	for i, want := range []float64{7, 8, 9, 10} {
		if samples[i].CPU.UsagePercent != want {
			t.Errorf("samples[%d] = %.0f, want %.0f", i, samples[i].CPU.UsagePercent, want)
		}
	}
	last, ok := r.Last()
	if !ok || last.CPU.UsagePercent != 10 {
		t.Errorf("Last() = %.0f, %v, want 10, true", last.CPU.UsagePercent, ok)
	}
	recent := r.Recent(2)
	if len(recent) != 2 || recent[0].CPU.UsagePercent != 9 || recent[1].CPU.UsagePercent != 10 {
		t.Errorf("Recent(2) = %v, want [9 10]", recent)
	}
}

func TestNewRollingDefaultCapacity(t *testing.T) {
	for _, cap := range []int{0, -5} {
		r := NewRolling(cap)
		if r.Capacity() != DefaultCapacity {
			t.Errorf("NewRolling(%d).Capacity() = %d, want %d", cap, r.Capacity(), DefaultCapacity)
		}
	}
}

func TestLast(t *testing.T) {
	r := NewRolling(5)
	if _, ok := r.Last(); ok {
		t.Error("Last() on empty history reported ok")
	}

	fill(r, 10, 20)
	last, ok := r.Last()
	if !ok || last.CPU.UsagePercent != 20 {
		t.Errorf("Last() = %.0f, %v; want 20, true", last.CPU.UsagePercent, ok)
	}
}

func TestRecent(t *testing.T) {
	r := NewRolling(10)
	fill(r, 10, 20, 30)

	tests := []struct {
		n    int
		want []float64
	}{
		{0, nil},
		{2, []float64{20, 30}},
		{5, []float64{10, 20, 30}},
	}
	for _, tt := range tests {
		got := r.Recent(tt.n)
		if len(got) != len(tt.want) {
			t.Errorf("Recent(%d) returned %d samples, want %d", tt.n, len(got), len(tt.want))
			continue
		}
		for i, w := range tt.want {
			if got[i].CPU.UsagePercent != w {
				t.Errorf("Recent(%d)[%d] = %.0f, want %.0f", tt.n, i, got[i].CPU.UsagePercent, w)
			}
		}
	}
}

func TestTrend(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		window   int
		wantDir  Direction
		wantRate float64
		wantConf float64
	}{
		{"increasing", []float64{10, 20, 30, 40, 50}, 5, Increasing, 8, 0.8},
		{"decreasing", []float64{50, 40, 30, 20, 10}, 5, Decreasing, 8, 0.8},
		{"stable small slope", []float64{50, 51, 52, 53, 54}, 5, Stable, 0.8, 0.8},
		{"memory forecast case", []float64{50, 55, 60, 65, 72}, 5, Increasing, 4.4, 0.8},
		{"single sample", []float64{50}, 5, Stable, 0, 0.3},
		{"empty", nil, 5, Stable, 0, 0.3},
		{"zero window", []float64{10, 50}, 0, Stable, 0, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRolling(20)
			fill(r, tt.values...)
			got := r.Trend(CPUUsage, tt.window)
			if got.Direction != tt.wantDir {
				t.Errorf("Direction = %s, want %s", got.Direction, tt.wantDir)
			}
			if diff := got.Rate - tt.wantRate; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Rate = %v, want %v", got.Rate, tt.wantRate)
			}
			if diff := got.Confidence - tt.wantConf; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Confidence = %v, want %v", got.Confidence, tt.wantConf)
			}
		})
	}
}

func TestTrendSkipsMissingMetric(t *testing.T) {
	r := NewRolling(10)
	base := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	// Only the middle sample has a known temperature, so fewer than two
	// qualifying samples remain.
	for i, known := range []bool{false, true, false} {
		s := sampleAt(base.Add(time.Duration(i)*time.Second), 50, 40)
		s.CPU.TemperatureKnown = known
		s.CPU.TemperatureC = 60
		r.Append(s)
	}

	got := r.Trend(CPUTemperature, 3)
	if got.Direction != Stable || got.Rate != 0 || got.Confidence != 0.3 {
		t.Errorf("Trend = %+v, want stable baseline", got)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	capacity := 5
	for _, n := range []int{0, 1, capacity} {
		r := NewRolling(capacity)
		values := make([]float64, n)
		for i := range values {
			values[i] = float64(10 * (i + 1))
		}
		fill(r, values...)

		data, err := json.Marshal(r)
		if err != nil {
			t.Fatalf("marshal with %d samples: %v", n, err)
		}

		restored := NewRolling(capacity)
		if err := json.Unmarshal(data, restored); err != nil {
			t.Fatalf("unmarshal with %d samples: %v", n, err)
		}

		if restored.Len() != n {
			t.Errorf("restored Len() = %d, want %d", restored.Len(), n)
		}
		orig, back := r.Samples(), restored.Samples()
		for i := range orig {
			if orig[i].CPU.UsagePercent != back[i].CPU.UsagePercent {
				t.Errorf("sample %d: %.1f != %.1f", i, back[i].CPU.UsagePercent, orig[i].CPU.UsagePercent)
			}
			if !orig[i].Timestamp.Equal(back[i].Timestamp) {
				t.Errorf("sample %d timestamp changed", i)
			}
		}
	}
}

func TestUnmarshalTruncatesToCapacity(t *testing.T) {
	big := NewRolling(10)
	fill(big, 10, 20, 30, 40, 50)
	data, err := json.Marshal(big)
	if err != nil {
		t.Fatal(err)
	}

	small := NewRolling(3)
	if err := json.Unmarshal(data, small); err != nil {
		t.Fatal(err)
	}
	if small.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", small.Len())
	}
	// Truncation drops the oldest entries.
	if got := small.Samples()[0].CPU.UsagePercent; got != 30 {
		t.Errorf("oldest retained = %.0f, want 30", got)
	}
}

func TestRehydrate(t *testing.T) {
	samples := make([]collector.Sample, 6)
	base := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	for i := range samples {
		samples[i] = sampleAt(base.Add(time.Duration(i)*time.Second), float64(i), 40)
	}

	r := Rehydrate(samples, 4)
	if r.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", r.Len())
	}
	if got := r.Samples()[0].CPU.UsagePercent; got != 2 {
		t.Errorf("oldest retained = %.0f, want 2", got)
	}
}
