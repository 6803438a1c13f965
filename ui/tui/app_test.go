package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"sysweather/internal/advisor"
	"sysweather/internal/collector"
	"sysweather/internal/history"
)

// gatedProvider blocks inside Snapshot until released so the test can hold
// an acquisition in flight across several ticks.
type gatedProvider struct {
	mu       sync.Mutex
	inFlight int
	peak     int
	calls    int
	entered  chan struct{}
	release  chan struct{}
}

func (p *gatedProvider) Snapshot(ctx context.Context) (*collector.Sample, error) {
	p.mu.Lock()
	p.inFlight++
	p.calls++
	if p.inFlight > p.peak {
		p.peak = p.inFlight
	}
	p.mu.Unlock()

	p.entered <- struct{}{}
	<-p.release

	p.mu.Lock()
	p.inFlight--
	p.mu.Unlock()

	return &collector.Sample{
		Timestamp: time.Now(),
		CPU:       collector.CPUStats{UsagePercent: 40, CoreCount: 4},
		Memory:    collector.MemoryStats{TotalBytes: 16 << 30, UsedBytes: 4 << 30},
		Processes: collector.ProcessStats{Running: 30, Total: 200},
	}, nil
}

// runCmd executes a command tree, fanning batches out the way the Bubble Tea
// runtime does, and forwards produced messages.
func runCmd(cmd tea.Cmd, msgs chan<- tea.Msg) {
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			go runCmd(c, msgs)
		}
		return
	}
	msgs <- msg
}

func TestTickSkipsFetchWhileCollecting(t *testing.T) {
	provider := &gatedProvider{
		entered: make(chan struct{}, 4),
		release: make(chan struct{}),
	}
	hist := history.NewRolling(10)
	model := InitialModel(provider, hist, advisor.NewEngine(), 5*time.Millisecond)
	mdl := &model

	msgs := make(chan tea.Msg, 16)

	_, cmd := mdl.Update(TickMsg(time.Now()))
	go runCmd(cmd, msgs)

	select {
	case <-provider.entered:
	case <-time.After(time.Second):
		t.Fatal("first tick never reached the provider")
	}

	// Ticks that land while the fetch is still in flight must not start
	// another acquisition.
	_, cmd = mdl.Update(TickMsg(time.Now()))
	go runCmd(cmd, msgs)

	select {
	case <-provider.entered:
		t.Fatal("second acquisition started while one was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(provider.release)

	var loaded tea.Msg
	deadline := time.After(time.Second)
	for loaded == nil {
		select {
		case msg := <-msgs:
			if _, ok := msg.(ReportLoadedMsg); ok {
				loaded = msg
			}
		case <-deadline:
			t.Fatal("report never landed")
		}
	}
	mdl.Update(loaded)

	// With the report delivered, the next tick fetches again.
	_, cmd = mdl.Update(TickMsg(time.Now()))
	go runCmd(cmd, msgs)

	select {
	case <-provider.entered:
	case <-time.After(time.Second):
		t.Fatal("fetch did not resume once the report landed")
	}

	provider.mu.Lock()
	defer provider.mu.Unlock()
	if provider.peak != 1 {
		t.Errorf("peak concurrent acquisitions = %d, want 1", provider.peak)
	}
	if provider.calls != 2 {
		t.Errorf("provider calls = %d, want 2", provider.calls)
	}
}
