package state

import (
	"time"

	"sysweather/internal/output"
)

type Page int

const (
	PageDashboard Page = iota
	PageConsole // scrolling sample log
)

// AppState holds the latest report and the rendering history.
type AppState struct {
	Report      *output.Report
	LastUpdate  time.Time
	Err         error
	ConsoleLogs []string
	CurrentPage Page
}
