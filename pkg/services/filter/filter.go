// Package filter selects the rows of one metric stream out of a dataset.
package filter

import (
	"strings"

	"github.com/de-tools/resp-atlas/pkg/models/domain"
)

const percentPrefix = "percent"

// ByMetric returns the rows matching c in their original order. It never
// returns nil: an empty slice means "no data for this section".
func ByMetric(rows []domain.Row, c domain.Criteria) []domain.Row {
	out := make([]domain.Row, 0)
	for _, r := range rows {
		if Match(r, c) {
			out = append(out, r)
		}
	}
	return out
}

// Match reports whether a single row satisfies c.
func Match(r domain.Row, c domain.Criteria) bool {
	if r.Metric != c.Metric {
		return false
	}
	if c.Submetric != "" && strings.TrimSpace(r.Submetric) != c.Submetric {
		return false
	}
	if c.Display != "" && !MatchDisplay(r.Display, c.Display) {
		return false
	}
	return true
}

// MatchDisplay compares trimmed values case-insensitively. A requested
// "Percent" also accepts any label starting with "percent" since sources
// label the same scale "Percent", "percentage" or "Percent of visits".
func MatchDisplay(rowDisplay, want string) bool {
	got := strings.TrimSpace(rowDisplay)
	want = strings.TrimSpace(want)
	if strings.EqualFold(got, want) {
		return true
	}
	return strings.EqualFold(want, domain.DisplayPercent) &&
		strings.HasPrefix(strings.ToLower(got), percentPrefix)
}
