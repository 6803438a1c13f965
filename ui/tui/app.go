// Package tui is the live monitoring dashboard built on Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sysweather/internal/advisor"
	"sysweather/internal/collector"
	"sysweather/internal/history"
	"sysweather/internal/output"
	"sysweather/ui/tui/components"
	"sysweather/ui/tui/state"
	"sysweather/ui/tui/views"
)

// MainModel is the Bubble Tea model acting as the controller.
type MainModel struct {
	provider collector.MetricsProvider
	hist     *history.Rolling
	engine   *advisor.Engine
	interval time.Duration

	state          state.AppState
	spinner        spinner.Model
	cpuWidget      *components.UsageWidget
	memWidget      *components.UsageWidget
	consoleScrollY int
	quitting       bool
	width          int
	height         int

	// collecting suppresses further fetches until the in-flight one
	// reports back, so a provider slower than the interval never has two
	// concurrent acquisitions appending to history.
	collecting bool
}

// Messages
type TickMsg time.Time
type ReportLoadedMsg struct {
	Report *output.Report
	Err    error
}

func InitialModel(provider collector.MetricsProvider, hist *history.Rolling, engine *advisor.Engine, interval time.Duration) MainModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	if interval <= 0 {
		interval = time.Second
	}

	return MainModel{
		provider:  provider,
		hist:      hist,
		engine:    engine,
		interval:  interval,
		spinner:   s,
		cpuWidget: components.NewUsageWidget("CPU History", 30, 8),
		memWidget: components.NewUsageWidget("Memory History", 30, 8),
		state: state.AppState{
			CurrentPage: state.PageDashboard,
		},
	}
}

func (m *MainModel) Init() tea.Cmd {
	m.collecting = true
	return tea.Batch(
		m.spinner.Tick,
		fetchReportCmd(m.provider, m.hist, m.engine),
		m.tickCmd(),
	)
}

// Commands
func (m *MainModel) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func fetchReportCmd(provider collector.MetricsProvider, hist *history.Rolling, engine *advisor.Engine) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		report, err := output.RunOnce(ctx, provider, hist, engine, advisor.FocusAll)
		return ReportLoadedMsg{Report: report, Err: err}
	}
}

func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		return m.handleWindowSizeMsg(msg)

	case TickMsg:
		cmds := []tea.Cmd{m.tickCmd()}
		if !m.collecting {
			m.collecting = true
			cmds = append(cmds, fetchReportCmd(m.provider, m.hist, m.engine))
		}
		return m, tea.Batch(cmds...)

	case ReportLoadedMsg:
		return m.handleReportLoadedMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *MainModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "tab":
		if m.state.CurrentPage == state.PageDashboard {
			m.state.CurrentPage = state.PageConsole
		} else {
			m.state.CurrentPage = state.PageDashboard
			m.consoleScrollY = 0
		}
		return m, nil
	}

	if m.state.CurrentPage == state.PageConsole {
		switch msg.String() {
		case "up", "k":
			if m.consoleScrollY > 0 {
				m.consoleScrollY--
			}
		case "down", "j":
			m.consoleScrollY++
		}
	}

	return m, nil
}

func (m *MainModel) handleWindowSizeMsg(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	newW := msg.Width/2 - 10
	if newW > 10 {
		m.cpuWidget.Resize(newW, 8)
		m.memWidget.Resize(newW, 8)
	}
	return m, nil
}

func (m *MainModel) handleReportLoadedMsg(msg ReportLoadedMsg) (tea.Model, tea.Cmd) {
	m.collecting = false
	if msg.Err != nil {
		m.state.Err = msg.Err
		return m, nil
	}
	m.state.Err = nil
	m.state.Report = msg.Report
	m.state.LastUpdate = time.Now()

	m.cpuWidget.Push(msg.Report.Sample.CPU.UsagePercent)
	m.memWidget.Push(msg.Report.Sample.Memory.UsagePercent())

	logLine := fmt.Sprintf("[%s] %s | CPU: %.1f%% | MEM: %.1f%% | procs: %d",
		msg.Report.Sample.Timestamp.Format("15:04:05"),
		msg.Report.Weather.Condition,
		msg.Report.Sample.CPU.UsagePercent,
		msg.Report.Sample.Memory.UsagePercent(),
		msg.Report.Sample.Processes.Running,
	)
	m.state.ConsoleLogs = append(m.state.ConsoleLogs, logLine)
	if len(m.state.ConsoleLogs) > 200 {
		m.state.ConsoleLogs = m.state.ConsoleLogs[1:]
	}
	return m, nil
}

func (m *MainModel) View() string {
	if m.quitting {
		return "Bye!\n"
	}

	switch m.state.CurrentPage {
	case state.PageConsole:
		return views.RenderConsole(m.state, m.width, m.height, m.consoleScrollY)
	default:
		return views.RenderDashboard(m.state, m.spinner.View(), m.cpuWidget.View(), m.memWidget.View())
	}
}

// Start runs the dashboard until the user quits.
func Start(provider collector.MetricsProvider, hist *history.Rolling, engine *advisor.Engine, interval time.Duration) error {
	m := InitialModel(provider, hist, engine, interval)
	p := tea.NewProgram(
		&m,
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
