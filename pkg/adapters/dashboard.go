package adapters

import (
	"github.com/de-tools/resp-atlas/pkg/models/api"
	"github.com/de-tools/resp-atlas/pkg/models/domain"
)

const dateLayout = "2006-01-02"

func MapDomainPageSummaryToAPI(s domain.PageSummary) api.PageSummary {
	sections := s.Sections
	if sections == nil {
		sections = []string{}
	}
	return api.PageSummary{
		ID:       s.ID,
		Title:    s.Title,
		Subtitle: s.Subtitle,
		Source:   s.Source,
		Sections: sections,
	}
}

func MapDomainRenderedPageToAPI(p domain.RenderedPage) api.Page {
	out := api.Page{
		ID:        p.ID,
		Title:     p.Title,
		Subtitle:  p.Subtitle,
		Source:    p.Source,
		DatasetID: p.DatasetID,
		Vars:      p.Vars,
		Sections:  make([]api.Section, 0, len(p.Sections)),
		RunID:     p.Report.RunID,
		Outcomes:  make([]api.Outcome, 0, len(p.Report.Outcomes)),
	}
	if !p.LoadedAt.IsZero() {
		loaded := p.LoadedAt
		out.LoadedAt = &loaded
	}
	for _, s := range p.Sections {
		out.Sections = append(out.Sections, MapDomainRenderedSectionToAPI(s))
	}
	for _, o := range p.Report.Outcomes {
		out.Outcomes = append(out.Outcomes, MapDomainOutcomeToAPI(o))
	}
	return out
}

func MapDomainRenderedSectionToAPI(s domain.RenderedSection) api.Section {
	out := api.Section{
		ID:        s.ID,
		Key:       s.Key,
		Title:     s.Title,
		ChartType: s.ChartType,
		Kind:      string(s.Kind),
		Props: api.ChartProps{
			GroupField:   s.Props.GroupField,
			ValueKey:     s.Props.ValueKey,
			Display:      s.Props.Display,
			YAxisLabel:   s.Props.YAxisLabel,
			SharedDomain: s.Props.SharedDomain,
			StackOrder:   s.Props.StackOrder,
		},
		Sentence: s.Sentence,
		Status:   string(s.Outcome.Severity),
		Message:  s.Outcome.Message,
	}

	for _, p := range s.Series {
		point := MapDomainSeriesPointToAPI(p.SeriesPoint)
		point.Series = p.Series
		point.Label = p.Label
		out.Series = append(out.Series, point)
	}
	for _, g := range s.Groups {
		group := api.Group{Key: g.Key, Points: make([]api.SeriesPoint, 0, len(g.Points))}
		for _, p := range g.Points {
			group.Points = append(group.Points, MapDomainSeriesPointToAPI(p))
		}
		out.Groups = append(out.Groups, group)
	}
	for _, v := range s.Views {
		out.Views = append(out.Views, MapDomainViewRecordToAPI(v))
	}
	if s.Domain != nil {
		out.Domain = &api.Domain{Min: s.Domain.Min, Max: s.Domain.Max}
	}
	if s.Trend != nil {
		t := MapDomainTrendToAPI(*s.Trend)
		out.Trend = &t
	}
	if len(s.Trends) > 0 {
		out.Trends = make(map[string]api.Trend, len(s.Trends))
		for k, t := range s.Trends {
			out.Trends[k] = MapDomainTrendToAPI(t)
		}
	}
	return out
}

func MapDomainSeriesPointToAPI(p domain.SeriesPoint) api.SeriesPoint {
	out := api.SeriesPoint{
		Week:      p.Week,
		Metric:    p.Metric,
		Submetric: p.Submetric,
		Display:   p.Display,
		Value:     p.Value,
		ValueRaw:  p.ValueRaw,
	}
	if p.DateValid {
		out.Date = p.Date.Format(dateLayout)
	}
	return out
}

func MapDomainViewRecordToAPI(v domain.ViewRecord) api.ViewPoint {
	return api.ViewPoint{
		Date:                v.Date.Format(dateLayout),
		Week:                v.Week,
		Group:               v.Group,
		Visits:              v.Visits,
		VisitsRaw:           v.VisitsRaw,
		Hospitalizations:    v.Hospitalizations,
		HospitalizationsRaw: v.HospitalizationsRaw,
	}
}

func MapDomainTrendToAPI(t domain.Trend) api.Trend {
	return api.Trend{
		Label:     t.Label,
		Value:     t.Value,
		Direction: string(t.Direction),
	}
}

func MapDomainOutcomeToAPI(o domain.Outcome) api.Outcome {
	return api.Outcome{
		Section:  o.Section,
		Severity: string(o.Severity),
		Message:  o.Message,
	}
}
