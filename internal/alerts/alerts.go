// Package alerts evaluates a sample against a fixed threshold rule table.
package alerts

import "sysweather/internal/collector"

// Level grades an alert event.
type Level string

const (
	LevelInfo     Level = "info"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

const (
	CPUWarningThreshold     = 75.0
	CPUCriticalThreshold    = 90.0
	MemoryWarningThreshold  = 75.0
	MemoryCriticalThreshold = 90.0
	RunningProcessThreshold = 200
)

// Event is a single fired alert.
type Event struct {
	Level   Level   `json:"level"`
	Metric  string  `json:"metric"`
	Value   float64 `json:"value"`
	Message string  `json:"message"`
}

// Evaluate runs every rule against the sample. CPU and memory bands are
// mutually exclusive per metric (the critical band shadows the warning
// band); the process rule fires independently, so several events may
// co-occur.
func Evaluate(s *collector.Sample) []Event {
	var events []Event

	if s.CPU.UsagePercent > CPUCriticalThreshold {
		events = append(events, Event{Level: LevelCritical, Metric: "cpu", Value: s.CPU.UsagePercent, Message: "CPU usage critically high"})
	} else if s.CPU.UsagePercent > CPUWarningThreshold {
		events = append(events, Event{Level: LevelWarning, Metric: "cpu", Value: s.CPU.UsagePercent, Message: "CPU usage elevated"})
	}

	memPct := s.Memory.UsagePercent()
	if memPct > MemoryCriticalThreshold {
		events = append(events, Event{Level: LevelCritical, Metric: "memory", Value: memPct, Message: "Memory usage critically high"})
	} else if memPct > MemoryWarningThreshold {
		events = append(events, Event{Level: LevelWarning, Metric: "memory", Value: memPct, Message: "Memory usage elevated"})
	}

	if s.Processes.Running > RunningProcessThreshold {
		events = append(events, Event{Level: LevelInfo, Metric: "processes", Value: float64(s.Processes.Running), Message: "High number of running processes"})
	}

	return events
}
