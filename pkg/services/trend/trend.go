// Package trend derives week-over-week change from the last two points of
// a series. Every surface that shows a trend (stat cards, subtitles, chart
// titles, CLI reports) goes through FromValues and Sentence so the
// rounding and threshold policy cannot drift between callers.
package trend

import (
	"fmt"
	"math"

	"github.com/de-tools/resp-atlas/pkg/models/domain"
)

// Threshold is the absolute percent change under which a move is
// reported as "not changed".
const Threshold = 1.0

// Compute uses the last two points with a value, in the order given.
// Series must already be ascending by date; it is not re-sorted here.
func Compute[T any](series []T, value func(T) *float64) (domain.Trend, bool) {
	var prev, curr *float64
	for i := len(series) - 1; i >= 0 && prev == nil; i-- {
		v := value(series[i])
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			continue
		}
		if curr == nil {
			curr = v
		} else {
			prev = v
		}
	}
	if prev == nil || curr == nil {
		return domain.Trend{}, false
	}
	return FromValues(*prev, *curr), true
}

// FromValues applies the division-by-zero and threshold rules.
func FromValues(prev, curr float64) domain.Trend {
	if prev == 0 {
		if curr == 0 {
			return notChanged()
		}
		// percentage undefined; the value is empty, never absent
		return domain.Trend{Label: domain.TrendIncreased, Value: "", Direction: domain.DirectionUp}
	}

	pct := (curr - prev) / prev * 100
	if math.Abs(pct) < Threshold {
		return notChanged()
	}

	rounded := roundHalfUp(pct)
	value := fmt.Sprintf("%d%%", int64(math.Abs(rounded)))
	if rounded > 0 {
		return domain.Trend{Label: domain.TrendIncreased, Value: value, Direction: domain.DirectionUp}
	}
	return domain.Trend{Label: domain.TrendDecreased, Value: value, Direction: domain.DirectionDown}
}

// roundHalfUp rounds ties toward positive infinity, so -12.5 becomes -12.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

func Rows(series []domain.Row) (domain.Trend, bool) {
	return Compute(series, func(r domain.Row) *float64 { return r.Value })
}

func Points(series []domain.SeriesPoint) (domain.Trend, bool) {
	return Compute(series, func(p domain.SeriesPoint) *float64 { return p.Value })
}

// Views computes the trend of one view column of a pivoted series.
func Views(series []domain.ViewRecord, view string) (domain.Trend, bool) {
	return Compute(series, func(v domain.ViewRecord) *float64 { return v.View(view) })
}

// Sentence renders a trend as the phrase used across the dashboard, e.g.
// "increased by 20%" or "not changed".
func Sentence(t domain.Trend) string {
	if t.Label == domain.TrendNotChanged || t.Value == "" {
		return t.Label
	}
	return fmt.Sprintf("%s by %s", t.Label, t.Value)
}

// Describe prefixes the sentence with a subject and the comparison window.
func Describe(subject string, t domain.Trend) string {
	return fmt.Sprintf("%s %s from the previous week", subject, Sentence(t))
}

func notChanged() domain.Trend {
	return domain.Trend{Label: domain.TrendNotChanged, Value: "0%", Direction: domain.DirectionSame}
}
