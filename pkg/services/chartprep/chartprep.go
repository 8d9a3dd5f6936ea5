// Package chartprep applies the per-chart reshaping done right before data
// is handed to the charting layer.
package chartprep

import (
	"math"
	"sort"
	"strings"

	"github.com/de-tools/resp-atlas/pkg/models/domain"
	"github.com/de-tools/resp-atlas/pkg/services/pivot"
)

// UnknownStackOrder is the position of labels missing from the stack table.
const UnknownStackOrder = 4

// DomainPadding is the fraction of the value range added on each side of
// a shared y-axis domain.
const DomainPadding = 0.05

var seriesLabels = []struct{ from, to string }{
	{"Influenza", "Flu"},
	{"COVID-19", "COVID"},
}

var stackOrder = map[string]int{
	"Flu B":                0,
	"Flu A H3":             1,
	"Flu A H1":             2,
	"Flu A (not subtyped)": 3,
}

// FlattenKeyed turns metric → rows into one slice. Series are emitted in
// sorted name order so output is stable across runs.
func FlattenKeyed(keyed map[string][]domain.Row) []domain.SeriesRow {
	names := make([]string, 0, len(keyed))
	n := 0
	for name, rows := range keyed {
		names = append(names, name)
		n += len(rows)
	}
	sort.Strings(names)

	out := make([]domain.SeriesRow, 0, n)
	for _, name := range names {
		label := SeriesLabel(name)
		for _, r := range keyed[name] {
			out = append(out, domain.SeriesRow{SeriesPoint: pivot.Point(r), Series: name, Label: label})
		}
	}
	return out
}

// SeriesLabel shortens virus names for display: "Influenza visits" →
// "Flu visits", "COVID-19" → "COVID".
func SeriesLabel(name string) string {
	for _, l := range seriesLabels {
		name = strings.ReplaceAll(name, l.from, l.to)
	}
	return name
}

// SharedDomain spans every finite value across all series, padded by 5%
// of the range, floored/ceiled to one decimal.
func SharedDomain(series ...[]domain.Row) (domain.ValueDomain, bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, rows := range series {
		for _, r := range rows {
			if r.Value == nil || math.IsNaN(*r.Value) || math.IsInf(*r.Value, 0) {
				continue
			}
			lo = math.Min(lo, *r.Value)
			hi = math.Max(hi, *r.Value)
		}
	}
	if math.IsInf(lo, 1) {
		return domain.ValueDomain{}, false
	}

	pad := (hi - lo) * DomainPadding
	if hi == lo {
		// a flat series still needs a visible band
		pad = math.Abs(hi) * DomainPadding
		if pad == 0 {
			pad = 0.1
		}
	}
	return domain.ValueDomain{
		Min: math.Floor((lo-pad)*10) / 10,
		Max: math.Ceil((hi+pad)*10) / 10,
	}, true
}

// StackOrder positions flu subtypes in their conventional stacking order.
func StackOrder(label string) int {
	if o, ok := stackOrder[strings.TrimSpace(label)]; ok {
		return o
	}
	return UnknownStackOrder
}

// SortStacked orders rows by date, then by stack position of the
// submetric. The sort is stable for equal positions.
func SortStacked(rows []domain.SeriesPoint) {
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return StackOrder(rows[i].Submetric) < StackOrder(rows[j].Submetric)
	})
}

// WeekRows adds the ISO week to each row.
func WeekRows(rows []domain.Row) []domain.SeriesPoint {
	out := make([]domain.SeriesPoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, pivot.Point(r))
	}
	return out
}

// Tag labels single-series points so every chart consumes the same shape.
func Tag(series string, points []domain.SeriesPoint) []domain.SeriesRow {
	label := SeriesLabel(series)
	out := make([]domain.SeriesRow, 0, len(points))
	for _, p := range points {
		out = append(out, domain.SeriesRow{SeriesPoint: p, Series: series, Label: label})
	}
	return out
}
