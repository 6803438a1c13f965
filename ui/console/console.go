// Package console renders reports as compact colored terminal text. Given an
// identical report the rendered bytes are identical.
package console

import (
	"fmt"
	"io"
	"strings"

	"sysweather/internal/advisor"
	"sysweather/internal/alerts"
	"sysweather/internal/history"
	"sysweather/internal/output"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// Print renders the full report to the writer.
func Print(w io.Writer, r *output.Report) {
	fmt.Fprintf(w, "%s■ SYSTEM WEATHER%s\n", colorCyan, colorReset)

	fmt.Fprintf(w, "%s─ Conditions%s\n", colorCyan, colorReset)
	fmt.Fprintf(w, "  %s\n", r.Weather.Summary())
	fmt.Fprintf(w, "  %s\n", r.Weather.Description)
	fmt.Fprintf(w, "  temperature: %-10s humidity: %s\n", r.Weather.Temperature, r.Weather.Humidity)
	fmt.Fprintf(w, "  wind: %-17s visibility: %s\n", r.Weather.Wind, r.Weather.Visibility)

	fmt.Fprintf(w, "%s─ Metrics%s\n", colorCyan, colorReset)
	printMetric(w, "CPU", r.Sample.CPU.UsagePercent)
	printMetric(w, "Memory", r.Sample.Memory.UsagePercent())
	printMetric(w, "Disk avg", r.Sample.AvgDiskUsage())
	fmt.Fprintf(w, "  %-22s %10d\n", "Running processes", r.Sample.Processes.Running)

	if len(r.Alerts) > 0 {
		fmt.Fprintf(w, "%s─ Alerts%s\n", colorCyan, colorReset)
		for _, a := range r.Alerts {
			color := colorFor(a.Level)
			fmt.Fprintf(w, "  %s[%s]%s %s (%.1f)\n", color, strings.ToUpper(string(a.Level)), colorReset, a.Message, a.Value)
		}
	}

	PrintAnalysis(w, r.Analysis)
}

// PrintAnalysis renders insights, suggestions, predictions and the score.
func PrintAnalysis(w io.Writer, a advisor.Analysis) {
	if len(a.Insights) > 0 {
		fmt.Fprintf(w, "%s─ Insights%s\n", colorCyan, colorReset)
		for _, in := range a.Insights {
			color := colorForSeverity(in.Severity)
			fmt.Fprintf(w, "  %s[%s]%s %s: %s\n", color, in.Severity, colorReset, in.Category, in.Message)
		}
	}

	PrintSuggestions(w, a.Suggestions)

	if len(a.Predictions) > 0 {
		fmt.Fprintf(w, "%s─ Forecast%s\n", colorCyan, colorReset)
		for _, p := range a.Predictions {
			fmt.Fprintf(w, "  %s %s over the %s (confidence %.0f%%)\n",
				p.Metric, p.Direction, p.Horizon, p.Confidence*100)
		}
	}

	fmt.Fprintf(w, "%s─ Score%s: %d/100\n\n", colorCyan, colorReset, a.Score)
}

// PrintSuggestions renders the numbered suggestion list. The numbers are the
// indices accepted by the optimize -apply flag.
func PrintSuggestions(w io.Writer, suggestions []advisor.Suggestion) {
	if len(suggestions) == 0 {
		return
	}
	fmt.Fprintf(w, "%s─ Suggestions%s\n", colorCyan, colorReset)
	for i, s := range suggestions {
		auto := ""
		if s.Automatable {
			auto = " (automatable)"
		}
		fmt.Fprintf(w, "  %d. [%s] %s%s\n", i+1, s.Priority, s.Action, auto)
		if s.RemedyCommand != "" {
			fmt.Fprintf(w, "     $ %s\n", s.RemedyCommand)
		}
		if s.Impact != "" {
			fmt.Fprintf(w, "     impact: %s\n", s.Impact)
		}
	}
}

// PrintApplyResults renders the outcome of executed remedies.
func PrintApplyResults(w io.Writer, results []advisor.ApplyResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "Nothing to apply.")
		return
	}
	for _, res := range results {
		switch {
		case !res.Ran:
			fmt.Fprintf(w, "%sskipped%s %s (not automatable)\n", colorYellow, colorReset, res.Suggestion.Action)
		case res.Err != nil:
			fmt.Fprintf(w, "%sfailed%s  %s: %v\n", colorRed, colorReset, res.Suggestion.Action, res.Err)
		default:
			fmt.Fprintf(w, "%sapplied%s %s\n", colorGreen, colorReset, res.Suggestion.Action)
			if out := strings.TrimSpace(res.Output); out != "" {
				fmt.Fprintln(w, indent(out, "  "))
			}
		}
	}
}

// PrintTrends renders trend lines for the forecast view.
func PrintTrends(w io.Writer, trends map[string]history.Trend) {
	fmt.Fprintf(w, "%s─ Trends%s\n", colorCyan, colorReset)
	for _, name := range []string{"cpu", "memory"} {
		t, ok := trends[name]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "  %-8s %s (%.1f/sample, confidence %.0f%%)\n",
			name, t.Direction, t.Rate, t.Confidence*100)
	}
}

func printMetric(w io.Writer, label string, pct float64) {
	status := "OK"
	color := colorGreen
	switch {
	case pct > 90:
		status, color = "CRIT", colorRed
	case pct > 75:
		status, color = "WARN", colorYellow
	}
	fmt.Fprintf(w, "  %-22s %9.1f%% %s%s%s\n", label, pct, color, status, colorReset)
}

func colorFor(level alerts.Level) string {
	switch level {
	case alerts.LevelWarning:
		return colorYellow
	case alerts.LevelCritical:
		return colorRed
	default:
		return colorGreen
	}
}

func colorForSeverity(s advisor.Severity) string {
	switch s {
	case advisor.SeverityHigh:
		return colorRed
	case advisor.SeverityMedium:
		return colorYellow
	default:
		return colorGreen
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n")
}
