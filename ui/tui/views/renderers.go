package views

import (
	"sysweather/ui/tui/state"
)

func RenderDashboard(s state.AppState, spinnerView, cpuChart, memChart string) string {
	v := DashboardView{}
	return v.Render(s, ViewProps{
		SpinnerView: spinnerView,
		CPUChart:    cpuChart,
		MemChart:    memChart,
	})
}

func RenderConsole(s state.AppState, width, height, scrollY int) string {
	v := ConsoleView{}
	return v.Render(s, ViewProps{
		Width:   width,
		Height:  height,
		ScrollY: scrollY,
	})
}
