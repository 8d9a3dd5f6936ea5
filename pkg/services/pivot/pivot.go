// Package pivot reshapes filtered rows into per-group or per-view series.
package pivot

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/de-tools/resp-atlas/pkg/models/domain"
	"github.com/de-tools/resp-atlas/pkg/services/normalize"
)

const viewToken = "{view}"

var DefaultViews = []string{domain.ViewVisits, domain.ViewHospitalizations}

// ISOWeek labels t with its ISO-8601 week, e.g. 2021-01-01 → 2020-W53.
// The week belongs to the year of its Thursday.
func ISOWeek(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// Point attaches the ISO week to a row.
func Point(r domain.Row) domain.SeriesPoint {
	return domain.SeriesPoint{Row: r, Week: ISOWeek(r.Date)}
}

// FieldValue reads a grouping field off a row. Unknown fields group
// everything under "".
func FieldValue(r domain.Row, field string) string {
	switch strings.ToLower(field) {
	case normalize.FieldSubmetric:
		return strings.TrimSpace(r.Submetric)
	case normalize.FieldMetric:
		return r.Metric
	case normalize.FieldDisplay:
		return strings.TrimSpace(r.Display)
	}
	return ""
}

// GroupBy splits rows into one series per distinct field value, in
// first-seen order, each ascending by date. Rows with a nil value are kept.
func GroupBy(rows []domain.Row, field string) []domain.Group {
	index := make(map[string]int)
	groups := make([]domain.Group, 0)

	for _, r := range rows {
		key := FieldValue(r, field)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, domain.Group{Key: key})
		}
		groups[i].Points = append(groups[i].Points, Point(r))
	}

	for i := range groups {
		pts := groups[i].Points
		sort.SliceStable(pts, func(a, b int) bool {
			return pts[a].Date.Before(pts[b].Date)
		})
	}
	return groups
}

// Flatten concatenates grouped points back into one slice.
func Flatten(groups []domain.Group) []domain.SeriesPoint {
	n := 0
	for _, g := range groups {
		n += len(g.Points)
	}
	out := make([]domain.SeriesPoint, 0, n)
	for _, g := range groups {
		out = append(out, g.Points...)
	}
	return out
}

// ViewMetric names the metric stream of one view. A base containing
// "{view}" is expanded in place, otherwise the view is appended.
func ViewMetric(base, view string) string {
	if strings.Contains(base, viewToken) {
		return strings.ReplaceAll(base, viewToken, view)
	}
	return domain.MetricName(base, view, "")
}

type viewKey struct {
	date  time.Time
	group string
}

// PivotViews merges the rows of each view's metric into one record per
// date (and per group value when groupField is set). Output is ascending
// by date, groups in first-seen order within a date.
func PivotViews(rows []domain.Row, base string, views []string, groupField string) []domain.ViewRecord {
	if len(views) == 0 {
		views = DefaultViews
	}
	metricView := make(map[string]string, len(views))
	for _, v := range views {
		metricView[ViewMetric(base, v)] = v
	}

	index := make(map[viewKey]int)
	groupOrder := make(map[string]int)
	records := make([]domain.ViewRecord, 0)

	for _, r := range rows {
		view, ok := metricView[r.Metric]
		if !ok {
			continue
		}
		group := ""
		if groupField != "" {
			group = FieldValue(r, groupField)
		}
		if _, seen := groupOrder[group]; !seen {
			groupOrder[group] = len(groupOrder)
		}

		k := viewKey{date: r.Date, group: group}
		i, ok := index[k]
		if !ok {
			i = len(records)
			index[k] = i
			records = append(records, domain.ViewRecord{
				Date:  r.Date,
				Week:  ISOWeek(r.Date),
				Group: group,
			})
		}

		switch view {
		case domain.ViewVisits:
			records[i].Visits = r.Value
			records[i].VisitsRaw = r.ValueRaw
		case domain.ViewHospitalizations:
			records[i].Hospitalizations = r.Value
			records[i].HospitalizationsRaw = r.ValueRaw
		}
	}

	sort.SliceStable(records, func(a, b int) bool {
		if !records[a].Date.Equal(records[b].Date) {
			return records[a].Date.Before(records[b].Date)
		}
		return groupOrder[records[a].Group] < groupOrder[records[b].Group]
	})
	return records
}

// ValueRange returns min and max over finite, non-nil values.
func ValueRange(points []domain.SeriesPoint) (float64, float64, bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		if p.Value == nil || math.IsNaN(*p.Value) || math.IsInf(*p.Value, 0) {
			continue
		}
		lo = math.Min(lo, *p.Value)
		hi = math.Max(hi, *p.Value)
	}
	if math.IsInf(lo, 1) {
		return 0, 0, false
	}
	return lo, hi, true
}
