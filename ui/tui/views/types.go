package views

import (
	"sysweather/ui/tui/state"
)

// ViewProps contains UI-specific properties provided by the controller.
type ViewProps struct {
	Width, Height int

	SpinnerView string
	CPUChart    string
	MemChart    string
	ScrollY     int
}

// View defines the contract for any renderable page in the TUI.
type View interface {
	Render(s state.AppState, props ViewProps) string
}
