package mcpserver

import (
	"context"
	"errors"
	"testing"
	"time"

	"sysweather/internal/advisor"
	"sysweather/internal/collector"
	"sysweather/internal/history"
	"sysweather/internal/output"
)

// fakeProvider implements collector.MetricsProvider for testing.
type fakeProvider struct {
	sample *collector.Sample
	err    error
}

func (f *fakeProvider) Snapshot(ctx context.Context) (*collector.Sample, error) {
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.sample
	return &cp, nil
}

// fakeGraph implements graph.Client for testing.
type fakeGraph struct {
	cypherResult []map[string]any
	cypherErr    error
	resetErr     error
	resetCalled  bool
	closed       bool
}

func (f *fakeGraph) IngestReport(ctx context.Context, hostname string, report *output.Report) error {
	return nil
}

func (f *fakeGraph) Reset(ctx context.Context) error {
	f.resetCalled = true
	return f.resetErr
}

func (f *fakeGraph) ExecuteCypher(ctx context.Context, query string) ([]map[string]any, error) {
	if f.cypherErr != nil {
		return nil, f.cypherErr
	}
	return f.cypherResult, nil
}

func (f *fakeGraph) Close(ctx context.Context) error {
	f.closed = true
	return nil
}

func testSample(cpu, mem float64) *collector.Sample {
	return &collector.Sample{
		Timestamp: time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC),
		CPU:       collector.CPUStats{UsagePercent: cpu, CoreCount: 8},
		Memory: collector.MemoryStats{
			TotalBytes: 16 << 30,
			UsedBytes:  uint64(float64(16<<30) * mem / 100),
		},
		Processes: collector.ProcessStats{Running: 50, Total: 300},
	}
}

func TestHandleRealtimeMetrics(t *testing.T) {
	s := &Server{provider: &fakeProvider{sample: testSample(45.5, 60)}}

	_, result, err := s.handleRealtimeMetrics(context.Background(), nil, MetricsArgs{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result == nil {
		t.Fatal("Expected non-nil result")
	}
	if result.CPU.UsagePercent != 45.5 {
		t.Errorf("Expected CPU usage 45.5, got %f", result.CPU.UsagePercent)
	}
}

func TestHandleRealtimeMetrics_ProviderError(t *testing.T) {
	s := &Server{provider: &fakeProvider{err: errors.New("sensor failure")}}

	_, _, err := s.handleRealtimeMetrics(context.Background(), nil, MetricsArgs{})
	if err == nil {
		t.Error("Expected error when provider fails")
	}
}

func TestHandleWeatherReport(t *testing.T) {
	s := &Server{
		provider: &fakeProvider{sample: testSample(92, 50)},
		hist:     history.NewRolling(10),
		engine:   advisor.NewEngine(),
	}

	_, report, err := s.handleWeatherReport(context.Background(), nil, WeatherReportArgs{Focus: "cpu"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if report == nil {
		t.Fatal("Expected non-nil report")
	}
	if len(report.Alerts) == 0 {
		t.Error("Expected at least one alert at 92 percent CPU")
	}
	if s.hist.Len() != 1 {
		t.Errorf("Expected sample appended to history, len=%d", s.hist.Len())
	}
}

func TestHandleWeatherReport_InvalidFocus(t *testing.T) {
	s := &Server{
		provider: &fakeProvider{sample: testSample(20, 30)},
		hist:     history.NewRolling(10),
		engine:   advisor.NewEngine(),
	}

	_, _, err := s.handleWeatherReport(context.Background(), nil, WeatherReportArgs{Focus: "gpu"})
	if err == nil {
		t.Error("Expected error for unknown focus")
	}
}

func TestHandleQueryGraph_Success(t *testing.T) {
	s := &Server{
		graphClient: &fakeGraph{
			cypherResult: []map[string]any{{"hostname": "test-host", "cpu": 50.0}},
		},
	}

	_, result, err := s.handleQueryGraph(context.Background(), nil, QueryGraphArgs{Cypher: "MATCH (h:Host) RETURN h.hostname"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.Data == nil {
		t.Error("Expected non-nil data")
	}
}

func TestHandleQueryGraph_Error(t *testing.T) {
	s := &Server{graphClient: &fakeGraph{cypherErr: errors.New("cypher syntax error")}}

	_, _, err := s.handleQueryGraph(context.Background(), nil, QueryGraphArgs{Cypher: "INVALID CYPHER"})
	if err == nil {
		t.Error("Expected error for invalid cypher")
	}
}

func TestHandleQueryGraph_Unconfigured(t *testing.T) {
	s := &Server{}

	_, _, err := s.handleQueryGraph(context.Background(), nil, QueryGraphArgs{Cypher: "MATCH (n) RETURN n"})
	if err == nil {
		t.Error("Expected error when graph is not configured")
	}
}

func TestResetGraph(t *testing.T) {
	fg := &fakeGraph{}
	s := &Server{graphClient: fg}
	if err := s.resetGraph(context.Background()); err != nil {
		t.Fatalf("resetGraph: %v", err)
	}
	if !fg.resetCalled {
		t.Error("reset was not forwarded to the graph client")
	}

	fg.resetErr = errors.New("connection lost")
	if err := s.resetGraph(context.Background()); err == nil {
		t.Error("expected reset error to propagate")
	}

	unconfigured := &Server{}
	if err := unconfigured.resetGraph(context.Background()); err != nil {
		t.Errorf("resetGraph without a graph client should be a no-op, got %v", err)
	}
}

func TestHandleSampleHistory_ArchiveDisabled(t *testing.T) {
	s := &Server{}

	_, _, err := s.handleSampleHistory(context.Background(), nil, SampleHistoryArgs{})
	if err == nil {
		t.Error("Expected error when archive is disabled")
	}
}

func TestHandleAskAdvisor_Unconfigured(t *testing.T) {
	s := &Server{}

	_, _, err := s.handleAskAdvisor(context.Background(), nil, AskAdvisorArgs{Question: "why is the host slow?"})
	if err == nil {
		t.Error("Expected error when RAG engine is not configured")
	}
}
