package components

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Component is the interface that all UI widgets implement. It mirrors
// tea.Model but is tailored for embedded widgets.
type Component interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (tea.Model, tea.Cmd)
	View() string
}
