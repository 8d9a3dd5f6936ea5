package dashboard

import (
	"fmt"
	"sort"

	"github.com/de-tools/resp-atlas/pkg/models/domain"
	"github.com/de-tools/resp-atlas/pkg/services/pivot"
	"github.com/de-tools/resp-atlas/pkg/services/trend"
)

// BuildReport condenses a rendered page into the latest value of every
// series, for terminal output.
func BuildReport(page domain.RenderedPage) domain.Report {
	report := domain.Report{
		Title:    page.Title,
		Subtitle: page.Subtitle,
		Sections: make([]domain.ReportSection, 0, len(page.Sections)),
	}

	weeks := make(map[string]bool)
	for _, section := range page.Sections {
		rs := domain.ReportSection{
			Title:   section.Title,
			Summary: map[string]interface{}{"status": string(section.Outcome.Severity)},
		}
		if section.Outcome.Message != "" {
			rs.Summary["message"] = section.Outcome.Message
		}
		if section.Trend != nil {
			rs.Sentence = trend.Describe("Latest value has", *section.Trend)
		}

		for _, p := range section.Series {
			if !p.DateValid {
				continue
			}
			if report.Period.Start.IsZero() || p.Date.Before(report.Period.Start) {
				report.Period.Start = p.Date
			}
			if p.Date.After(report.Period.End) {
				report.Period.End = p.Date
			}
			weeks[p.Week] = true
		}

		rs.Details = latestDetails(section)
		report.Sections = append(report.Sections, rs)
	}
	report.Period.Weeks = len(weeks)
	return report
}

// latestDetails returns the last valued point of each series, in series
// name order.
func latestDetails(section domain.RenderedSection) []domain.ReportDetail {
	if len(section.Views) > 0 {
		return latestViews(section)
	}

	latest := make(map[string]domain.SeriesRow)
	for _, p := range section.Series {
		if p.Value == nil {
			continue
		}
		name := p.Label
		if len(section.Groups) > 0 || section.Props.StackOrder {
			name = p.Submetric
		}
		if prev, ok := latest[name]; !ok || !p.Date.Before(prev.Date) {
			latest[name] = p
		}
	}

	names := make([]string, 0, len(latest))
	for name := range latest {
		names = append(names, name)
	}
	sort.Strings(names)

	details := make([]domain.ReportDetail, 0, len(names))
	for _, name := range names {
		p := latest[name]
		detail := domain.ReportDetail{
			Name:        name,
			Value:       *p.Value,
			Description: fmt.Sprintf("week %s", p.Week),
		}
		if p.Display == domain.DisplayPercent {
			detail.Unit = "%"
		}
		if t, ok := section.Trends[p.Series]; ok {
			detail.Description += ", " + trend.Sentence(t)
		}
		details = append(details, detail)
	}
	return details
}

func latestViews(section domain.RenderedSection) []domain.ReportDetail {
	details := make([]domain.ReportDetail, 0, len(pivot.DefaultViews))
	for _, view := range pivot.DefaultViews {
		for i := len(section.Views) - 1; i >= 0; i-- {
			rec := section.Views[i]
			v := rec.View(view)
			if v == nil {
				continue
			}
			detail := domain.ReportDetail{
				Name:        view,
				Value:       *v,
				Unit:        "%",
				Description: fmt.Sprintf("week %s", rec.Week),
			}
			if t, ok := section.Trends[view]; ok {
				detail.Description += ", " + trend.Sentence(t)
			}
			details = append(details, detail)
			break
		}
	}
	return details
}
