package dashboard

import (
	"github.com/de-tools/resp-atlas/pkg/models/domain"
	"github.com/de-tools/resp-atlas/pkg/services/chartprep"
	"github.com/de-tools/resp-atlas/pkg/services/content"
	"github.com/de-tools/resp-atlas/pkg/services/pivot"
	"github.com/de-tools/resp-atlas/pkg/services/trend"
)

// TrendVar is the token a sentence template uses for the trend phrase.
const TrendVar = "trend"

func renderSection(section domain.Section, sd domain.SectionData, props domain.ChartProps) domain.RenderedSection {
	rs := domain.RenderedSection{
		ID:        section.ID,
		Key:       section.DataSourceKey,
		ChartType: section.ChartType,
		Kind:      sd.Kind,
		Props:     props,
	}
	if rs.Key == "" {
		rs.Key = section.ID
	}

	switch sd.Kind {
	case domain.StrategyMultiMetric:
		rs.Series = chartprep.FlattenKeyed(sd.ByMetric)
		if props.SharedDomain {
			all := make([][]domain.Row, 0, len(sd.ByMetric))
			for _, rows := range sd.ByMetric {
				all = append(all, rows)
			}
			rs.Domain = sharedDomain(all...)
		}
		if props.Trend {
			rs.Trends = make(map[string]domain.Trend, len(sd.ByMetric))
			for metric, rows := range sd.ByMetric {
				if t, ok := trend.Rows(rows); ok {
					rs.Trends[metric] = t
				}
			}
		}

	case domain.StrategyPivotView:
		rs.Views = sd.Views
		if props.Trend && props.GroupField == "" {
			rs.Trends = make(map[string]domain.Trend, len(pivot.DefaultViews))
			for _, view := range pivot.DefaultViews {
				if t, ok := trend.Views(sd.Views, view); ok {
					rs.Trends[view] = t
				}
			}
			if t, ok := rs.Trends[pivot.DefaultViews[0]]; ok {
				rs.Trend = &t
			}
		}

	default:
		if len(sd.Groups) > 0 {
			rs.Groups = sd.Groups
			if props.SharedDomain {
				all := make([][]domain.Row, 0, len(sd.Groups))
				for _, g := range sd.Groups {
					rows := make([]domain.Row, 0, len(g.Points))
					for _, p := range g.Points {
						rows = append(rows, p.Row)
					}
					all = append(all, rows)
				}
				rs.Domain = sharedDomain(all...)
			}
		}

		points := chartprep.WeekRows(sd.Rows)
		if props.StackOrder {
			chartprep.SortStacked(points)
		}
		metric := ""
		if len(sd.Rows) > 0 {
			metric = sd.Rows[0].Metric
		}
		rs.Series = chartprep.Tag(metric, points)

		if props.Trend && len(sd.Groups) == 0 {
			if t, ok := trend.Rows(sd.Rows); ok {
				rs.Trend = &t
			}
		}
	}

	return rs
}

func sharedDomain(series ...[]domain.Row) *domain.ValueDomain {
	d, ok := chartprep.SharedDomain(series...)
	if !ok {
		return nil
	}
	return &d
}

// sentence renders "sections.<id>.sentence" with the trend phrase. Sections
// without a trend or without a sentence in the copy get none.
func (s *service) sentence(section domain.Section, t *domain.Trend, vars map[string]string) string {
	if t == nil {
		return ""
	}
	tmpl, ok := s.texts.Lookup("sections." + section.ID + ".sentence")
	if !ok {
		return ""
	}

	withTrend := s.displayVars(vars)
	withTrend[TrendVar] = trend.Sentence(*t)
	return string(content.ParseTemplate(tmpl).Render(withTrend))
}

// displayVars swaps token values for their display copy, e.g. view
// "visits" becomes "emergency department visits".
func (s *service) displayVars(vars map[string]string) map[string]string {
	out := make(map[string]string, len(vars)+1)
	for k, v := range vars {
		out[k] = v
	}
	if view, ok := s.texts.Lookup("views." + vars["view"]); ok {
		out["view"] = view
	}
	return out
}
