package advisor

import (
	"fmt"
	"strings"

	"sysweather/internal/collector"
	"sysweather/internal/history"
)

// ruleKind identifies a rule for the suggestion lookup table.
type ruleKind string

const (
	ruleCPUHigh         ruleKind = "cpu-high"
	ruleCPUThermal      ruleKind = "cpu-thermal"
	ruleCPUAffinity     ruleKind = "cpu-affinity"
	ruleMemHigh         ruleKind = "mem-high"
	ruleMemSwap         ruleKind = "mem-swap"
	ruleNetThroughput   ruleKind = "net-throughput"
	ruleNoDevTools      ruleKind = "prod-no-devtools"
	ruleDistractions    ruleKind = "prod-distractions"
)

const (
	cpuHighThreshold      = 80.0
	cpuThermalThreshold   = 70.0
	cpuAffinityUsage      = 60.0
	cpuAffinityCores      = 4
	memHighThreshold      = 85.0
	netThroughputBps      = 1_000_000.0
	distractionLimit      = 3
)

// devToolNames are process names recognized as development tooling. Matching
// is case-insensitive on the base name.
var devToolNames = []string{
	"code", "codium", "vim", "nvim", "emacs", "idea", "goland", "pycharm",
	"go", "gopls", "node", "python", "python3", "ruby", "cargo", "rustc",
	"gcc", "clang", "make", "cmake", "git", "docker", "kubectl", "tmux",
}

// distractionNames are process names recognized as likely distractions.
var distractionNames = []string{
	"slack", "discord", "spotify", "telegram", "signal", "steam",
	"zoom", "teams",
}

// evaluateRules runs the insight rules selected by focus, in a fixed order.
func evaluateRules(s *collector.Sample, hist *history.Rolling, focus Focus) []Insight {
	var insights []Insight
	add := func(in Insight) { insights = append(insights, in) }

	if focus == FocusAll || focus == FocusCPU {
		if s.CPU.UsagePercent > cpuHighThreshold {
			add(Insight{
				kind:     ruleCPUHigh,
				Category: CategoryCPU,
				Severity: SeverityHigh,
				Message:  fmt.Sprintf("CPU usage is %.1f%%, above the %.0f%% pressure threshold", s.CPU.UsagePercent, cpuHighThreshold),
				Evidence: map[string]float64{"usage_percent": s.CPU.UsagePercent, "threshold": cpuHighThreshold},
			})
		}
		if s.CPU.TemperatureKnown && s.CPU.TemperatureC > cpuThermalThreshold {
			add(Insight{
				kind:     ruleCPUThermal,
				Category: CategoryCPU,
				Severity: SeverityMedium,
				Message:  fmt.Sprintf("CPU temperature is %.1f°C, thermal throttling is likely above %.0f°C", s.CPU.TemperatureC, cpuThermalThreshold),
				Evidence: map[string]float64{"temperature_c": s.CPU.TemperatureC, "threshold": cpuThermalThreshold},
			})
		}
		if s.CPU.CoreCount > cpuAffinityCores && s.CPU.UsagePercent > cpuAffinityUsage {
			add(Insight{
				kind:     ruleCPUAffinity,
				Category: CategoryCPU,
				Severity: SeverityLow,
				Message:  fmt.Sprintf("%d cores available with %.1f%% total usage; pinning heavy jobs may smooth the load", s.CPU.CoreCount, s.CPU.UsagePercent),
				Evidence: map[string]float64{"cores": float64(s.CPU.CoreCount), "usage_percent": s.CPU.UsagePercent},
			})
		}
	}

	if focus == FocusAll || focus == FocusMemory {
		if memPct := s.Memory.UsagePercent(); memPct > memHighThreshold {
			add(Insight{
				kind:     ruleMemHigh,
				Category: CategoryMemory,
				Severity: SeverityHigh,
				Message:  fmt.Sprintf("Memory usage is %.1f%%, above the %.0f%% critical threshold", memPct, memHighThreshold),
				Evidence: map[string]float64{"usage_percent": memPct, "threshold": memHighThreshold},
			})
		}
		if s.Memory.SwapTotalBytes > 0 && float64(s.Memory.SwapUsedBytes) > 0.5*float64(s.Memory.SwapTotalBytes) {
			add(Insight{
				kind:     ruleMemSwap,
				Category: CategoryMemory,
				Severity: SeverityMedium,
				Message:  "More than half of swap is in use; the system is paging",
				Evidence: map[string]float64{
					"swap_used_bytes":  float64(s.Memory.SwapUsedBytes),
					"swap_total_bytes": float64(s.Memory.SwapTotalBytes),
				},
			})
		}
	}

	if focus == FocusAll || focus == FocusNetwork {
		if rate, ok := networkRate(hist); ok && rate > netThroughputBps {
			add(Insight{
				kind:     ruleNetThroughput,
				Category: CategoryNetwork,
				Severity: SeverityLow,
				Message:  fmt.Sprintf("Network throughput is %.0f B/s across interfaces", rate),
				Evidence: map[string]float64{"bytes_per_second": rate, "threshold": netThroughputBps},
			})
		}
	}

	if focus == FocusAll || focus == FocusProductivity {
		devTools := countMatches(s.Processes.Names, devToolNames)
		if devTools == 0 {
			add(Insight{
				kind:     ruleNoDevTools,
				Category: CategoryProductivity,
				Severity: SeverityInfo,
				Message:  "No recognized development tools are running",
				Evidence: map[string]float64{"dev_tool_count": 0},
			})
		}
		if distractions := countMatches(s.Processes.Names, distractionNames); distractions > distractionLimit {
			add(Insight{
				kind:     ruleDistractions,
				Category: CategoryProductivity,
				Severity: SeverityLow,
				Message:  fmt.Sprintf("%d distraction apps are running", distractions),
				Evidence: map[string]float64{"distraction_count": float64(distractions), "limit": distractionLimit},
			})
		}
	}

	return insights
}

// networkRate derives bytes/second summed over interfaces from the last two
// history samples. Counters are cumulative; a wrap or interface reset makes
// the delta negative, in which case no rate is reported.
func networkRate(hist *history.Rolling) (float64, bool) {
	if hist == nil {
		return 0, false
	}
	recent := hist.Recent(2)
	if len(recent) < 2 {
		return 0, false
	}
	prev, cur := &recent[0], &recent[1]
	dt := cur.Timestamp.Sub(prev.Timestamp).Seconds()
	if dt <= 0 {
		return 0, false
	}
	curTotal := float64(cur.Network.TotalRx() + cur.Network.TotalTx())
	prevTotal := float64(prev.Network.TotalRx() + prev.Network.TotalTx())
	if curTotal < prevTotal {
		return 0, false
	}
	return (curTotal - prevTotal) / dt, true
}

func countMatches(names, recognized []string) int {
	count := 0
	for _, name := range names {
		base := strings.ToLower(name)
		for _, r := range recognized {
			if base == r {
				count++
				break
			}
		}
	}
	return count
}
