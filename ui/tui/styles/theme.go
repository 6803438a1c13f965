package styles

import "github.com/charmbracelet/lipgloss"

var (
	Subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	Highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	Special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	TitleStyle = lipgloss.NewStyle().
			MarginLeft(1).
			MarginRight(5).
			Padding(0, 1).
			Italic(true).
			Foreground(lipgloss.Color("#FFF7DB"))

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Highlight).
			Padding(1, 2).
			Margin(1, 1)

	StatusStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFF"))

	// Condition colors, sunny through stormy.
	ConditionColors = map[string]lipgloss.Color{
		"sunny":        lipgloss.Color("226"),
		"partly-sunny": lipgloss.Color("222"),
		"cloudy":       lipgloss.Color("250"),
		"rainy":        lipgloss.Color("39"),
		"stormy":       lipgloss.Color("196"),
	}
)

// ConditionStyle returns a bold style colored for the given condition name.
func ConditionStyle(condition string) lipgloss.Style {
	color, ok := ConditionColors[condition]
	if !ok {
		color = lipgloss.Color("250")
	}
	return lipgloss.NewStyle().Bold(true).Foreground(color)
}
