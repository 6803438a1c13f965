// Package weather maps a telemetry sample onto a qualitative "system
// weather" condition via a fixed severity formula.
package weather

import (
	"fmt"

	"sysweather/internal/collector"
)

// Condition is the qualitative load label for a sample.
type Condition int

const (
	Sunny Condition = iota
	PartlySunny
	Cloudy
	Rainy
	Stormy
)

func (c Condition) String() string {
	switch c {
	case Sunny:
		return "sunny"
	case PartlySunny:
		return "partly-sunny"
	case Cloudy:
		return "cloudy"
	case Rainy:
		return "rainy"
	case Stormy:
		return "stormy"
	default:
		return "unknown"
	}
}

// Icon returns the display glyph for the condition.
func (c Condition) Icon() string {
	switch c {
	case Sunny:
		return "☀"
	case PartlySunny:
		return "⛅"
	case Cloudy:
		return "☁"
	case Rainy:
		return "🌧"
	case Stormy:
		return "⛈"
	default:
		return "?"
	}
}

// Description returns the fixed descriptive text for the condition.
func (c Condition) Description() string {
	switch c {
	case Sunny:
		return "Optimal conditions. The system is idle and responsive."
	case PartlySunny:
		return "Light load. Plenty of headroom remains."
	case Cloudy:
		return "Moderate load. The system is working but comfortable."
	case Rainy:
		return "Heavy load. Expect slower responses under pressure."
	case Stormy:
		return "Critical load. The system is saturated and may stall."
	default:
		return "Condition unknown."
	}
}

// Report is the classification output for one sample.
type Report struct {
	Condition   Condition
	Score       float64 // composite severity, 0-100
	Description string

	// Display-only sub-metrics bucketed independently; none of these feed
	// the score.
	Temperature string // CPU thermal bucket
	Humidity    string // memory pressure bucket
	Wind        string // running-process bucket
	Visibility  string // average disk usage bucket
}

// Summary renders a one-line human summary.
func (r Report) Summary() string {
	return fmt.Sprintf("%s %s (severity %.1f)", r.Condition.Icon(), r.Condition, r.Score)
}

// SeverityScore computes the composite load severity for a sample:
// the mean of CPU usage, memory usage, and running-process pressure
// (running/200 capped at 1, scaled to percent), clamped to [0,100].
func SeverityScore(s *collector.Sample) float64 {
	procLoad := float64(s.Processes.Running) / 200
	if procLoad > 1 {
		procLoad = 1
	}
	score := (s.CPU.UsagePercent + s.Memory.UsagePercent() + procLoad*100) / 3
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Classify derives the weather report for a sample. Band boundaries are
// upper-inclusive: a score of exactly 80 is rainy, not stormy.
func Classify(s *collector.Sample) Report {
	score := SeverityScore(s)

	var cond Condition
	switch {
	case score > 80:
		cond = Stormy
	case score > 60:
		cond = Rainy
	case score > 40:
		cond = Cloudy
	case score > 20:
		cond = PartlySunny
	default:
		cond = Sunny
	}

	return Report{
		Condition:   cond,
		Score:       score,
		Description: cond.Description(),
		Temperature: temperatureBucket(s.CPU),
		Humidity:    humidityBucket(s.Memory.UsagePercent()),
		Wind:        windBucket(s.Processes.Running),
		Visibility:  visibilityBucket(s.AvgDiskUsage()),
	}
}

func temperatureBucket(cpu collector.CPUStats) string {
	if !cpu.TemperatureKnown {
		return "unknown"
	}
	switch {
	case cpu.TemperatureC < 50:
		return "cool"
	case cpu.TemperatureC < 70:
		return "warm"
	default:
		return "hot"
	}
}

func humidityBucket(memPct float64) string {
	switch {
	case memPct < 50:
		return "dry"
	case memPct < 75:
		return "humid"
	default:
		return "saturated"
	}
}

func windBucket(running int) string {
	switch {
	case running < 100:
		return "calm"
	case running < 200:
		return "breezy"
	default:
		return "gusty"
	}
}

func visibilityBucket(avgDiskPct float64) string {
	switch {
	case avgDiskPct < 60:
		return "clear"
	case avgDiskPct < 85:
		return "hazy"
	default:
		return "foggy"
	}
}
