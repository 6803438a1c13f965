// Package advisor is the deterministic rule engine: it maps a sample plus
// rolling history to ranked insights, remediation suggestions, short-horizon
// trend predictions, and a composite health score. There is no learned
// inference here; every output follows from a fixed rule table.
package advisor

import (
	"math"
	"os"

	"sysweather/internal/collector"
	"sysweather/internal/history"
)

// Category groups insights and suggestions by subsystem.
type Category string

const (
	CategoryCPU          Category = "cpu"
	CategoryMemory       Category = "memory"
	CategoryNetwork      Category = "network"
	CategoryProductivity Category = "productivity"
	CategoryDisk         Category = "disk"
	CategoryProcesses    Category = "processes"
)

// Severity grades an insight.
type Severity string

const (
	SeverityInfo   Severity = "info"
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Priority grades a suggestion.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Focus restricts which insight rules run.
type Focus string

const (
	FocusCPU          Focus = "cpu"
	FocusMemory       Focus = "memory"
	FocusNetwork      Focus = "network"
	FocusProductivity Focus = "productivity"
	FocusAll          Focus = "all"
)

// ParseFocus validates a focus string from the CLI or a profile.
func ParseFocus(s string) (Focus, error) {
	switch Focus(s) {
	case FocusCPU, FocusMemory, FocusNetwork, FocusProductivity, FocusAll:
		return Focus(s), nil
	case "":
		return FocusAll, nil
	}
	return "", &FocusError{Value: s}
}

// FocusError reports an unrecognized focus value.
type FocusError struct {
	Value string
}

func (e *FocusError) Error() string {
	return "unknown focus: " + e.Value + " (want cpu, memory, network, productivity, or all)"
}

// Insight is one detected notable condition.
type Insight struct {
	kind     ruleKind // suggestion lookup key, stable across runs
	Category Category
	Severity Severity
	Message  string
	Evidence map[string]float64
}

// Suggestion is a recommended remedy derived from an insight or from
// workspace context. RemedyCommand is advisory: it is only executed through
// Apply, with an explicit selection.
type Suggestion struct {
	Category      Category
	Priority      Priority
	Action        string
	RemedyCommand string
	Impact        string
	Automatable   bool
}

// Prediction is a short-horizon trend forecast for one metric.
type Prediction struct {
	Metric     string
	Direction  history.Direction
	Horizon    string
	Confidence float64
}

// Analysis bundles one full rule-engine pass.
type Analysis struct {
	Focus       Focus
	Insights    []Insight
	Suggestions []Suggestion
	Predictions []Prediction
	Score       int // 0-100, higher is healthier
}

// Engine evaluates the rule table. WorkDir is consulted for the
// dependency-cache context suggestion; it defaults to the process working
// directory.
type Engine struct {
	WorkDir string
}

// NewEngine returns an engine rooted at the current working directory.
func NewEngine() *Engine {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	return &Engine{WorkDir: wd}
}

// Analyze runs every rule selected by focus against the sample and history.
// Given identical inputs the output is identical, including ordering: rules
// fire in a fixed sequence and suggestion sorting is stable.
func (e *Engine) Analyze(sample *collector.Sample, hist *history.Rolling, focus Focus) Analysis {
	insights := evaluateRules(sample, hist, focus)
	suggestions := deriveSuggestions(insights)
	suggestions = append(suggestions, e.contextSuggestions(sample)...)

	return Analysis{
		Focus:       focus,
		Insights:    insights,
		Suggestions: suggestions,
		Predictions: predict(hist),
		Score:       score(sample, insights),
	}
}

// predictionFloor is the minimum per-sample rate before an increasing trend
// is worth forecasting, per metric.
var predictionFloor = map[string]float64{
	"cpu":    5,
	"memory": 3,
}

const predictionWindow = 5

// predict emits a forecast per metric only when its trend over the last
// predictionWindow samples is increasing faster than the metric's floor.
func predict(hist *history.Rolling) []Prediction {
	if hist == nil {
		return nil
	}
	var out []Prediction
	for _, m := range []struct {
		name     string
		selector history.MetricSelector
	}{
		{"cpu", history.CPUUsage},
		{"memory", history.MemoryUsage},
	} {
		t := hist.Trend(m.selector, predictionWindow)
		if t.Direction != history.Increasing || t.Rate <= predictionFloor[m.name] {
			continue
		}
		out = append(out, Prediction{
			Metric:     m.name,
			Direction:  t.Direction,
			Horizon:    "next few minutes",
			Confidence: t.Confidence,
		})
	}
	return out
}

var severityPenalty = map[Severity]int{
	SeverityHigh:   15,
	SeverityMedium: 10,
	SeverityLow:    5,
	SeverityInfo:   2,
}

// score starts at 100, subtracts a penalty per insight, and grants a small
// bonus during work hours. The work-hours check reads the sample's own
// timestamp, so the result is a pure function of the inputs.
func score(sample *collector.Sample, insights []Insight) int {
	total := 100.0
	for _, in := range insights {
		total -= float64(severityPenalty[in.Severity])
	}
	if hour := sample.Timestamp.Local().Hour(); hour >= 9 && hour <= 17 {
		total += 5
	}
	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}
	return int(math.Round(total))
}
