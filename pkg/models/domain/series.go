package domain

import "time"

const (
	ViewVisits           = "visits"
	ViewHospitalizations = "hospitalizations"
)

// SeriesPoint is a row reshaped for charting, carrying its ISO week.
type SeriesPoint struct {
	Row
	Week string // 2025-W02
}

// SeriesRow is a flattened point tagged with the series it came from.
type SeriesRow struct {
	SeriesPoint
	Series string
	Label  string
}

// ValueDomain is a y-axis range shared by sibling mini-charts.
type ValueDomain struct {
	Min float64
	Max float64
}

type Group struct {
	Key    string
	Points []SeriesPoint
}

// ViewRecord merges the visits and hospitalizations streams of one
// base metric for a single date (and group, when pivoted by one).
type ViewRecord struct {
	Date                time.Time
	Week                string
	Group               string
	Visits              *float64
	VisitsRaw           string
	Hospitalizations    *float64
	HospitalizationsRaw string
}

// View returns the value stored for the named view.
func (v ViewRecord) View(name string) *float64 {
	switch name {
	case ViewVisits:
		return v.Visits
	case ViewHospitalizations:
		return v.Hospitalizations
	}
	return nil
}

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionSame Direction = "same"
)

const (
	TrendIncreased  = "increased"
	TrendDecreased  = "decreased"
	TrendNotChanged = "not changed"
)

type Trend struct {
	Label     string    // increased
	Value     string    // 20%, empty when the previous value was zero
	Direction Direction // up
}
