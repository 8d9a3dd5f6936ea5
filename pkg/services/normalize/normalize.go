// Package normalize turns raw CSV/JSON records into canonical rows.
// Malformed values never produce errors: they surface as a nil Value or
// an invalid date and the row is kept for display-only paths.
package normalize

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/de-tools/resp-atlas/pkg/models/domain"
)

const (
	FieldDate      = "date"
	FieldMetric    = "metric"
	FieldSubmetric = "submetric"
	FieldDisplay   = "display"
	FieldValue     = "value"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate parses an ISO date into UTC midnight of the same calendar day.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Unix(0, 0).UTC(), false
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Unix(0, 0).UTC(), false
}

// CoerceNumber strips percent signs, whitespace and thousands separators
// before parsing. "<5" and other placeholders report false.
func CoerceNumber(raw string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if r == '%' || r == ',' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	if cleaned == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// NormalizeRecord maps a header→value record onto a Row. Header keys are
// matched case-insensitively.
func NormalizeRecord(rec map[string]string) domain.Row {
	get := func(key string) string {
		if v, ok := rec[key]; ok {
			return v
		}
		for k, v := range rec {
			if strings.EqualFold(strings.TrimSpace(k), key) {
				return v
			}
		}
		return ""
	}

	date, ok := ParseDate(get(FieldDate))
	row := domain.Row{
		Date:      date,
		DateValid: ok,
		Metric:    strings.TrimSpace(get(FieldMetric)),
		Submetric: strings.TrimSpace(get(FieldSubmetric)),
		Display:   strings.TrimSpace(get(FieldDisplay)),
		ValueRaw:  get(FieldValue),
	}
	if f, ok := CoerceNumber(row.ValueRaw); ok {
		row.Value = &f
	}
	return row
}

// SortByDate sorts rows ascending by date in place. Rows with an invalid
// date carry epoch 0 and therefore sort first.
func SortByDate(rows []domain.Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})
}

// Sorted returns an ascending copy, leaving the input untouched.
func Sorted(rows []domain.Row) []domain.Row {
	out := make([]domain.Row, len(rows))
	copy(out, rows)
	SortByDate(out)
	return out
}
