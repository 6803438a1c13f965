package components

import (
	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sysweather/ui/tui/styles"
)

const historyPoints = 31

// UsageWidget charts a rolling percentage series as a braille line.
type UsageWidget struct {
	Title   string
	Chart   linechart.Model
	History []float64
	Width   int
	Height  int
}

func NewUsageWidget(title string, width, height int) *UsageWidget {
	lc := linechart.New(width, height, 0, float64(historyPoints-1), 0, 100)
	return &UsageWidget{
		Title:   title,
		Chart:   lc,
		History: make([]float64, 0, historyPoints),
		Width:   width,
		Height:  height,
	}
}

func (w *UsageWidget) Init() tea.Cmd {
	return nil
}

// Push appends a value and evicts the oldest once the window is full.
func (w *UsageWidget) Push(value float64) {
	w.History = append(w.History, value)
	if len(w.History) > historyPoints {
		w.History = w.History[1:]
	}
}

func (w *UsageWidget) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return w, nil
}

func (w *UsageWidget) Resize(width, height int) {
	w.Width = width
	w.Height = height
	w.Chart.Resize(width, height)
}

func (w *UsageWidget) View() string {
	w.Chart.Clear()
	for i := 0; i < len(w.History)-1; i++ {
		w.Chart.DrawBrailleLine(
			canvas.Float64Point{X: float64(i), Y: w.History[i]},
			canvas.Float64Point{X: float64(i + 1), Y: w.History[i+1]},
		)
	}
	w.Chart.DrawXYAxisAndLabel()

	return styles.CardStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render(w.Title),
			w.Chart.View(),
		),
	)
}
