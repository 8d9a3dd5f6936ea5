package domain

import (
	"strings"
	"time"
)

const (
	DisplayPercent = "Percent"
	DisplayNumber  = "Number"
)

// Row is the canonical unit every source is normalized into.
type Row struct {
	Date      time.Time // 2025-01-08 00:00 UTC, epoch 0 when DateValid is false
	DateValid bool
	Metric    string   // COVID-19 visits
	Submetric string   // Overall, 0-4, Bronx
	Display   string   // Percent, Number
	Value     *float64 // nil when the source value is not numeric
	ValueRaw  string   // <5, 12.3%, 1,024
}

func (r Row) HasValue() bool {
	return r.Value != nil
}

// Dataset is one load of rows from a named source. ID changes on every
// load so caches keyed on it never serve rows from a previous load.
type Dataset struct {
	ID       string
	Name     string
	LoadedAt time.Time
	Rows     []Row
}

func (d Dataset) Empty() bool {
	return len(d.Rows) == 0
}

type Criteria struct {
	Metric    string
	Submetric string
	Display   string
}

// MetricName composes a metric name out of a base ("COVID-19"), a view
// ("visits") and an optional qualifier ("by age group").
func MetricName(base, view, qualifier string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{base, view, qualifier} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func Float(v float64) *float64 {
	return &v
}
