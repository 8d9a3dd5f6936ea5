package api

import "time"

type PageSummary struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle"`
	Source   string   `json:"source"`
	Sections []string `json:"sections"`
}

type Page struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Subtitle  string            `json:"subtitle"`
	Source    string            `json:"source"`
	DatasetID string            `json:"dataset_id"`
	LoadedAt  *time.Time        `json:"loaded_at,omitempty"`
	Vars      map[string]string `json:"vars"`
	Sections  []Section         `json:"sections"`
	RunID     string            `json:"run_id"`
	Outcomes  []Outcome         `json:"outcomes"`
}

type Section struct {
	ID        string           `json:"id"`
	Key       string           `json:"key"`
	Title     string           `json:"title"`
	ChartType string           `json:"chart_type"`
	Kind      string           `json:"kind,omitempty"`
	Props     ChartProps       `json:"props"`
	Series    []SeriesPoint    `json:"series,omitempty"`
	Groups    []Group          `json:"groups,omitempty"`
	Views     []ViewPoint      `json:"views,omitempty"`
	Domain    *Domain          `json:"domain,omitempty"`
	Trend     *Trend           `json:"trend,omitempty"`
	Trends    map[string]Trend `json:"trends,omitempty"`
	Sentence  string           `json:"sentence,omitempty"`
	Status    string           `json:"status"`
	Message   string           `json:"message,omitempty"`
}

type ChartProps struct {
	GroupField   string `json:"group_field,omitempty"`
	ValueKey     string `json:"value_key,omitempty"`
	Display      string `json:"display,omitempty"`
	YAxisLabel   string `json:"y_axis_label,omitempty"`
	SharedDomain bool   `json:"shared_domain,omitempty"`
	StackOrder   bool   `json:"stack_order,omitempty"`
}

// SeriesPoint is one chart row. Date is empty when the source date did
// not parse; Value is null for suppressed or non-numeric values.
type SeriesPoint struct {
	Date      string   `json:"date"`
	Week      string   `json:"week"`
	Metric    string   `json:"metric"`
	Submetric string   `json:"submetric"`
	Display   string   `json:"display"`
	Value     *float64 `json:"value"`
	ValueRaw  string   `json:"value_raw"`
	Series    string   `json:"series,omitempty"`
	Label     string   `json:"label,omitempty"`
}

type Group struct {
	Key    string        `json:"key"`
	Points []SeriesPoint `json:"points"`
}

type ViewPoint struct {
	Date                string   `json:"date"`
	Week                string   `json:"week"`
	Group               string   `json:"group,omitempty"`
	Visits              *float64 `json:"visits"`
	VisitsRaw           string   `json:"visits_raw"`
	Hospitalizations    *float64 `json:"hospitalizations"`
	HospitalizationsRaw string   `json:"hospitalizations_raw"`
}

type Domain struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type Trend struct {
	Label     string `json:"label"`
	Value     string `json:"value"`
	Direction string `json:"direction"`
}

type Outcome struct {
	Section  string `json:"section"`
	Severity string `json:"severity"`
	Message  string `json:"message,omitempty"`
}

type ContentSection struct {
	File  string `json:"file"`
	Title string `json:"title"`
	HTML  string `json:"html"`
}
