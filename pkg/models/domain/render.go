package domain

import "time"

// RenderedSection is a hydrated section reshaped for its chart. Series is
// set for line and bar charts, Groups for small multiples and Views for
// pivoted sections.
type RenderedSection struct {
	ID        string
	Key       string
	Title     string
	ChartType string
	Kind      StrategyKind
	Props     ChartProps
	Series    []SeriesRow
	Groups    []Group
	Views     []ViewRecord
	Domain    *ValueDomain
	Trend     *Trend
	Trends    map[string]Trend
	Sentence  string // sanitized HTML
	Outcome   Outcome
}

type RenderedPage struct {
	ID        string
	Title     string
	Subtitle  string
	Source    string
	DatasetID string
	LoadedAt  time.Time
	Vars      map[string]string
	Sections  []RenderedSection
	Report    HydrationReport
}

type PageSummary struct {
	ID       string
	Title    string
	Subtitle string
	Source   string
	Sections []string
}
