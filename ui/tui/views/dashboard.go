package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sysweather/internal/alerts"
	"sysweather/ui/tui/state"
	"sysweather/ui/tui/styles"
)

type DashboardView struct{}

func (v DashboardView) Render(s state.AppState, props ViewProps) string {
	if s.Err != nil {
		return fmt.Sprintf("Error: %v", s.Err)
	}
	if s.Report == nil {
		return lipgloss.JoinHorizontal(lipgloss.Left,
			props.SpinnerView,
			" collecting first sample...",
		)
	}

	r := s.Report

	header := lipgloss.JoinHorizontal(lipgloss.Left,
		props.SpinnerView,
		styles.TitleStyle.Render("System Weather"),
		fmt.Sprintf(" Last Update: %s", s.LastUpdate.Format("15:04:05")),
	)

	condName := r.Weather.Condition.String()
	weatherCard := styles.CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.ConditionStyle(condName).Render(
			fmt.Sprintf("%s %s  severity %.1f", r.Weather.Condition.Icon(), condName, r.Weather.Score)),
		r.Weather.Description,
		"",
		fmt.Sprintf("temperature: %-9s humidity: %s", r.Weather.Temperature, r.Weather.Humidity),
		fmt.Sprintf("wind: %-16s visibility: %s", r.Weather.Wind, r.Weather.Visibility),
		"",
		fmt.Sprintf("health score: %d/100", r.Analysis.Score),
	))

	cpuCard := styles.CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Render("CPU"),
		fmt.Sprintf("usage  : %.1f%%", r.Sample.CPU.UsagePercent),
		fmt.Sprintf("cores  : %d", r.Sample.CPU.CoreCount),
		tempLine(r.Sample.CPU.TemperatureC, r.Sample.CPU.TemperatureKnown),
		props.CPUChart,
	))

	memCard := styles.CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Render("Memory"),
		fmt.Sprintf("usage  : %.1f%%", r.Sample.Memory.UsagePercent()),
		fmt.Sprintf("used   : %.1f GiB / %.1f GiB",
			gib(r.Sample.Memory.UsedBytes), gib(r.Sample.Memory.TotalBytes)),
		fmt.Sprintf("swap   : %.1f GiB", gib(r.Sample.Memory.SwapUsedBytes)),
		props.MemChart,
	))

	procCard := styles.CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Render("Processes"),
		fmt.Sprintf("running: %d", r.Sample.Processes.Running),
		fmt.Sprintf("total  : %d", r.Sample.Processes.Total),
	))

	netCard := styles.CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Render("Network"),
		fmt.Sprintf("primary: %s", orDash(r.Sample.Network.PrimaryInterface)),
		fmt.Sprintf("rx     : %.1f MiB", mib(r.Sample.Network.TotalRx())),
		fmt.Sprintf("tx     : %.1f MiB", mib(r.Sample.Network.TotalTx())),
	))

	row1 := lipgloss.JoinHorizontal(lipgloss.Top, weatherCard, renderAdvice(s))
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cpuCard, memCard)
	row3 := lipgloss.JoinHorizontal(lipgloss.Top, procCard, netCard)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		row1,
		row2,
		row3,
		lipgloss.NewStyle().Foreground(styles.Subtle).Render("\nPress 'tab' for the sample log, 'q' to quit"),
	)
}

func renderAdvice(s state.AppState) string {
	r := s.Report
	var lines []string

	if len(r.Alerts) > 0 {
		lines = append(lines, lipgloss.NewStyle().Bold(true).Render("Alerts"))
		for _, a := range r.Alerts {
			lines = append(lines, ColorForLevel(a.Level).Render(
				fmt.Sprintf("[%s] %s (%.1f)", strings.ToUpper(string(a.Level)), a.Message, a.Value)))
		}
		lines = append(lines, "")
	}

	if len(r.Analysis.Insights) > 0 {
		lines = append(lines, lipgloss.NewStyle().Bold(true).Render("Insights"))
		for _, in := range r.Analysis.Insights {
			lines = append(lines, fmt.Sprintf("• [%s/%s] %s", in.Category, in.Severity, in.Message))
		}
		lines = append(lines, "")
	}

	if len(r.Analysis.Predictions) > 0 {
		lines = append(lines, lipgloss.NewStyle().Bold(true).Render("Forecast"))
		for _, p := range r.Analysis.Predictions {
			lines = append(lines, fmt.Sprintf("• %s %s over the %s (confidence %.0f%%)",
				p.Metric, p.Direction, p.Horizon, p.Confidence*100))
		}
	}

	if len(lines) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(styles.Special).Render("All clear."))
	}
	return styles.CardStyle.Render(strings.Join(lines, "\n"))
}

func tempLine(c float64, known bool) string {
	if !known {
		return "temp   : unknown"
	}
	return fmt.Sprintf("temp   : %.1f°C", c)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func gib(b uint64) float64 { return float64(b) / (1 << 30) }
func mib(b uint64) float64 { return float64(b) / (1 << 20) }

// ColorForLevel colors alert lines by their level.
func ColorForLevel(level alerts.Level) lipgloss.Style {
	sStyle := styles.StatusStyle
	switch level {
	case alerts.LevelCritical:
		return sStyle.Foreground(lipgloss.Color("196"))
	case alerts.LevelWarning:
		return sStyle.Foreground(lipgloss.Color("220"))
	default:
		return sStyle.Foreground(lipgloss.Color("46"))
	}
}
