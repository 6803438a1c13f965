package advisor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"sysweather/internal/collector"
)

// remedy is the fixed suggestion template for one rule kind.
type remedy struct {
	action      string
	command     string
	impact      string
	automatable bool
}

// remedyTable maps each rule kind to its suggestion. The table is fixed so
// the same insight always yields the same suggestion.
var remedyTable = map[ruleKind]remedy{
	ruleCPUHigh: {
		action:      "Identify and review the heaviest CPU consumers",
		command:     "ps aux --sort=-%cpu | head -15",
		impact:      "frees CPU headroom",
		automatable: true,
	},
	ruleCPUThermal: {
		action:      "Check cooling and reduce sustained load; inspect thermal zones",
		command:     "cat /sys/class/thermal/thermal_zone*/temp",
		impact:      "avoids thermal throttling",
		automatable: true,
	},
	ruleCPUAffinity: {
		action:      "Pin long-running heavy jobs to dedicated cores with taskset",
		command:     "taskset -cp <cpu-list> <pid>",
		impact:      "smooths per-core load",
		automatable: false,
	},
	ruleMemHigh: {
		action:      "Identify and review the heaviest memory consumers",
		command:     "ps aux --sort=-%mem | head -15",
		impact:      "frees memory before the OOM killer does",
		automatable: true,
	},
	ruleMemSwap: {
		action:      "Reduce resident memory pressure so the system stops paging",
		command:     "swapon --show && vmstat 1 5",
		impact:      "restores responsiveness",
		automatable: true,
	},
	ruleNetThroughput: {
		action:      "Inspect which connections are moving the most traffic",
		command:     "ss -tunap | head -20",
		impact:      "explains bandwidth usage",
		automatable: true,
	},
	ruleNoDevTools: {
		action:      "No development tools detected; start your editor or toolchain if you meant to work",
		command:     "",
		impact:      "none",
		automatable: false,
	},
	ruleDistractions: {
		action:      "Consider closing distraction apps to reclaim attention and memory",
		command:     "",
		impact:      "reclaims focus and RAM",
		automatable: false,
	},
}

var priorityRank = map[Priority]int{
	PriorityCritical: 3,
	PriorityHigh:     2,
	PriorityMedium:   1,
	PriorityLow:      0,
}

func severityToPriority(sev Severity) Priority {
	switch sev {
	case SeverityHigh:
		return PriorityHigh
	case SeverityMedium:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// deriveSuggestions maps insights through the remedy table and stable-sorts
// by priority descending; ties keep insight emission order.
func deriveSuggestions(insights []Insight) []Suggestion {
	var out []Suggestion
	for _, in := range insights {
		r, ok := remedyTable[in.kind]
		if !ok {
			continue
		}
		out = append(out, Suggestion{
			Category:      in.Category,
			Priority:      severityToPriority(in.Severity),
			Action:        r.action,
			RemedyCommand: r.command,
			Impact:        r.impact,
			Automatable:   r.automatable,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return priorityRank[out[i].Priority] > priorityRank[out[j].Priority]
	})
	return out
}

// dependencyCacheMarkers are directory names whose presence in the workspace
// indicates a reclaimable dependency or build cache.
var dependencyCacheMarkers = []string{"node_modules", "target", ".gradle", "__pycache__", ".venv"}

// contextSuggestions appends workspace- and load-derived suggestions that are
// not tied to a single insight.
func (e *Engine) contextSuggestions(s *collector.Sample) []Suggestion {
	var out []Suggestion

	for _, marker := range dependencyCacheMarkers {
		if info, err := os.Stat(filepath.Join(e.WorkDir, marker)); err == nil && info.IsDir() {
			out = append(out, Suggestion{
				Category:      CategoryDisk,
				Priority:      PriorityLow,
				Action:        fmt.Sprintf("A %s cache sits in the working directory; prune it if the project is dormant", marker),
				RemedyCommand: "du -sh " + marker,
				Impact:        "reclaims disk space",
				Automatable:   true,
			})
			break // one cache suggestion is enough
		}
	}

	if s.Processes.Running > 150 {
		out = append(out, Suggestion{
			Category:      CategoryProcesses,
			Priority:      PriorityMedium,
			Action:        "Many processes are running; triage what is actually needed",
			RemedyCommand: "ps -eo pid,comm,%cpu,%mem --sort=-%cpu | head -20",
			Impact:        "reduces scheduler pressure",
			Automatable:   true,
		})
	}

	return out
}

// ApplyResult reports the outcome of executing one selected suggestion.
type ApplyResult struct {
	Suggestion Suggestion
	Ran        bool
	Output     string
	Err        error
}

// Apply executes the remedy commands of the explicitly selected suggestions.
// This is the second phase of propose-then-apply: nothing runs unless the
// caller passed it in, and non-automatable suggestions are reported back
// unexecuted.
func Apply(ctx context.Context, selected []Suggestion) []ApplyResult {
	results := make([]ApplyResult, 0, len(selected))
	for _, sug := range selected {
		if !sug.Automatable || strings.TrimSpace(sug.RemedyCommand) == "" {
			results = append(results, ApplyResult{Suggestion: sug, Ran: false})
			continue
		}
		cmd := exec.CommandContext(ctx, "sh", "-c", sug.RemedyCommand)
		output, err := cmd.CombinedOutput()
		results = append(results, ApplyResult{
			Suggestion: sug,
			Ran:        true,
			Output:     string(output),
			Err:        err,
		})
	}
	return results
}
