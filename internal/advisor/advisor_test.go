package advisor

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"sysweather/internal/collector"
	"sysweather/internal/history"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	return &Engine{WorkDir: t.TempDir()}
}

func baseSample() *collector.Sample {
	total := uint64(16) << 30
	return &collector.Sample{
		Timestamp: time.Date(2025, 6, 2, 12, 0, 0, 0, time.Local),
		CPU:       collector.CPUStats{UsagePercent: 30, CoreCount: 4},
		Memory: collector.MemoryStats{
			TotalBytes: total,
			UsedBytes:  total / 4,
		},
		Processes: collector.ProcessStats{
			Running: 50,
			Total:   300,
			Names:   []string{"go", "vim"},
		},
	}
}

func histWithMemory(memPcts ...float64) *history.Rolling {
	r := history.NewRolling(20)
	base := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	total := uint64(16) << 30
	for i, pct := range memPcts {
		r.Append(collector.Sample{
			Timestamp: base.Add(time.Duration(i) * 2 * time.Second),
			Memory: collector.MemoryStats{
				TotalBytes: total,
				UsedBytes:  uint64(float64(total) * pct / 100),
			},
		})
	}
	return r
}

func TestParseFocus(t *testing.T) {
	tests := []struct {
		in      string
		want    Focus
		wantErr bool
	}{
		{"", FocusAll, false},
		{"all", FocusAll, false},
		{"cpu", FocusCPU, false},
		{"memory", FocusMemory, false},
		{"network", FocusNetwork, false},
		{"productivity", FocusProductivity, false},
		{"gpu", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFocus(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFocus(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseFocus(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	e := testEngine(t)
	s := baseSample()
	s.CPU.UsagePercent = 92
	hist := histWithMemory(50, 55, 60, 65, 72)

	a := e.Analyze(s, hist, FocusAll)
	b := e.Analyze(s, hist, FocusAll)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("identical inputs produced different analyses:\n%+v\n%+v", a, b)
	}
}

func TestAnalyzeCPUFocusScenario(t *testing.T) {
	e := testEngine(t)
	s := baseSample()
	s.CPU.UsagePercent = 92

	a := e.Analyze(s, history.NewRolling(10), FocusCPU)

	if len(a.Insights) != 1 {
		t.Fatalf("got %d insights, want 1: %+v", len(a.Insights), a.Insights)
	}
	in := a.Insights[0]
	if in.Severity != SeverityHigh || in.Category != CategoryCPU {
		t.Errorf("insight = %s/%s, want cpu/high", in.Category, in.Severity)
	}

	if len(a.Suggestions) == 0 {
		t.Fatal("expected a suggestion for the high CPU insight")
	}
	sug := a.Suggestions[0]
	if sug.Priority != PriorityHigh {
		t.Errorf("suggestion priority = %s, want high", sug.Priority)
	}
	if sug.RemedyCommand != "ps aux --sort=-%cpu | head -15" {
		t.Errorf("remedy = %q", sug.RemedyCommand)
	}
	if !sug.Automatable {
		t.Error("CPU remedy should be automatable")
	}
}

func TestFocusFiltersRules(t *testing.T) {
	e := testEngine(t)
	s := baseSample()
	s.CPU.UsagePercent = 92
	total := s.Memory.TotalBytes
	s.Memory.UsedBytes = uint64(float64(total) * 0.9)

	a := e.Analyze(s, history.NewRolling(10), FocusMemory)
	for _, in := range a.Insights {
		if in.Category != CategoryMemory {
			t.Errorf("memory focus emitted %s insight: %s", in.Category, in.Message)
		}
	}
	if len(a.Insights) == 0 {
		t.Error("expected a memory insight at 90% usage")
	}
}

func TestThermalRule(t *testing.T) {
	e := testEngine(t)
	s := baseSample()
	s.CPU.TemperatureC = 85
	s.CPU.TemperatureKnown = true

	a := e.Analyze(s, history.NewRolling(10), FocusCPU)
	found := false
	for _, in := range a.Insights {
		if strings.Contains(in.Message, "temperature") {
			found = true
			if in.Severity != SeverityMedium {
				t.Errorf("thermal severity = %s, want medium", in.Severity)
			}
		}
	}
	if !found {
		t.Error("expected thermal insight at 85°C")
	}

	// Unknown temperature never fires, whatever the reading says.
	s.CPU.TemperatureKnown = false
	a = e.Analyze(s, history.NewRolling(10), FocusCPU)
	for _, in := range a.Insights {
		if strings.Contains(in.Message, "temperature") {
			t.Error("thermal insight fired with unknown temperature")
		}
	}
}

func TestSwapRule(t *testing.T) {
	e := testEngine(t)
	s := baseSample()
	s.Memory.SwapTotalBytes = 8 << 30
	s.Memory.SwapUsedBytes = 5 << 30

	a := e.Analyze(s, history.NewRolling(10), FocusMemory)
	found := false
	for _, in := range a.Insights {
		if strings.Contains(in.Message, "swap") {
			found = true
		}
	}
	if !found {
		t.Error("expected swap insight with >50% swap used")
	}
}

func TestNetworkThroughputRule(t *testing.T) {
	e := testEngine(t)
	hist := history.NewRolling(10)
	base := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	mkNet := func(rx uint64) collector.Sample {
		s := *baseSample()
		s.Network = collector.NetworkStats{
			Interfaces: []collector.InterfaceCounters{{Name: "eth0", RxBytes: rx}},
		}
		return s
	}
	first := mkNet(0)
	first.Timestamp = base
	second := mkNet(10 << 20) // 10 MiB over 2 seconds
	second.Timestamp = base.Add(2 * time.Second)
	hist.Append(first)
	hist.Append(second)

	a := e.Analyze(&second, hist, FocusNetwork)
	if len(a.Insights) != 1 || a.Insights[0].Category != CategoryNetwork {
		t.Fatalf("expected one network insight, got %+v", a.Insights)
	}

	// A counter reset must not report a rate.
	third := mkNet(0)
	third.Timestamp = base.Add(4 * time.Second)
	hist.Append(third)
	a = e.Analyze(&third, hist, FocusNetwork)
	if len(a.Insights) != 0 {
		t.Errorf("counter reset still produced insights: %+v", a.Insights)
	}
}

func TestProductivityRules(t *testing.T) {
	e := testEngine(t)

	s := baseSample()
	s.Processes.Names = []string{"bash", "systemd"}
	a := e.Analyze(s, history.NewRolling(10), FocusProductivity)
	if len(a.Insights) != 1 || a.Insights[0].Severity != SeverityInfo {
		t.Fatalf("expected one info insight without dev tools, got %+v", a.Insights)
	}

	s = baseSample()
	s.Processes.Names = []string{"go", "Slack", "discord", "spotify", "steam"}
	a = e.Analyze(s, history.NewRolling(10), FocusProductivity)
	found := false
	for _, in := range a.Insights {
		if strings.Contains(in.Message, "distraction") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected distraction insight with 4 distraction apps, got %+v", a.Insights)
	}
}

func TestPredictMemoryIncrease(t *testing.T) {
	hist := histWithMemory(50, 55, 60, 65, 72)

	preds := predict(hist)
	if len(preds) != 1 {
		t.Fatalf("got %d predictions, want 1: %+v", len(preds), preds)
	}
	p := preds[0]
	if p.Metric != "memory" {
		t.Errorf("metric = %s, want memory", p.Metric)
	}
	if p.Direction != history.Increasing {
		t.Errorf("direction = %s, want increasing", p.Direction)
	}
	if p.Confidence != 0.8 {
		t.Errorf("confidence = %v, want 0.8", p.Confidence)
	}
}

func TestPredictBelowFloor(t *testing.T) {
	// Slope 2.8/sample exceeds the trend threshold but not the cpu floor of 5.
	hist := history.NewRolling(10)
	base := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	for i, cpu := range []float64{50, 54, 58, 61, 64} {
		hist.Append(collector.Sample{
			Timestamp: base.Add(time.Duration(i) * 2 * time.Second),
			CPU:       collector.CPUStats{UsagePercent: cpu},
		})
	}

	for _, p := range predict(hist) {
		if p.Metric == "cpu" {
			t.Errorf("cpu prediction emitted below the rate floor: %+v", p)
		}
	}
}

func TestPredictNilHistory(t *testing.T) {
	if got := predict(nil); got != nil {
		t.Errorf("predict(nil) = %+v, want nil", got)
	}
}

func TestScore(t *testing.T) {
	workHour := time.Date(2025, 6, 2, 12, 0, 0, 0, time.Local)
	offHour := time.Date(2025, 6, 2, 3, 0, 0, 0, time.Local)

	tests := []struct {
		name     string
		at       time.Time
		insights []Insight
		want     int
	}{
		{"clean during work hours caps at 100", workHour, nil, 100},
		{"clean off hours", offHour, nil, 100},
		{
			"penalties off hours",
			offHour,
			[]Insight{{Severity: SeverityHigh}, {Severity: SeverityMedium}, {Severity: SeverityInfo}},
			73,
		},
		{
			"work hours bonus",
			workHour,
			[]Insight{{Severity: SeverityHigh}},
			90,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := baseSample()
			s.Timestamp = tt.at
			if got := score(s, tt.insights); got != tt.want {
				t.Errorf("score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDeriveSuggestionsOrdering(t *testing.T) {
	insights := []Insight{
		{kind: ruleCPUAffinity, Category: CategoryCPU, Severity: SeverityLow},
		{kind: ruleMemHigh, Category: CategoryMemory, Severity: SeverityHigh},
		{kind: ruleCPUThermal, Category: CategoryCPU, Severity: SeverityMedium},
	}

	out := deriveSuggestions(insights)
	if len(out) != 3 {
		t.Fatalf("got %d suggestions, want 3", len(out))
	}
	wantOrder := []Priority{PriorityHigh, PriorityMedium, PriorityLow}
	for i, want := range wantOrder {
		if out[i].Priority != want {
			t.Errorf("suggestion %d priority = %s, want %s", i, out[i].Priority, want)
		}
	}
}

func TestContextSuggestionCacheMarker(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "node_modules"), 0o755); err != nil {
		t.Fatal(err)
	}
	e := &Engine{WorkDir: dir}

	out := e.contextSuggestions(baseSample())
	found := false
	for _, s := range out {
		if strings.Contains(s.Action, "node_modules") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a cache suggestion, got %+v", out)
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	results := Apply(ctx, []Suggestion{
		{Action: "echo something", RemedyCommand: "echo applied-ok", Automatable: true},
		{Action: "manual only", RemedyCommand: "rm -rf /", Automatable: false},
		{Action: "automatable but empty", RemedyCommand: "  ", Automatable: true},
	})

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if !results[0].Ran || results[0].Err != nil {
		t.Errorf("echo should have run cleanly: %+v", results[0])
	}
	if !strings.Contains(results[0].Output, "applied-ok") {
		t.Errorf("output = %q", results[0].Output)
	}
	if results[1].Ran {
		t.Error("non-automatable suggestion was executed")
	}
	if results[2].Ran {
		t.Error("empty remedy command was executed")
	}
}
