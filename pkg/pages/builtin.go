package pages

import "github.com/de-tools/resp-atlas/pkg/models/domain"

const DefaultSource = "weekly"

// virusPage is shared by the COVID-19, Influenza and RSV pages; the
// virus-specific parts come in through the {virus} and {view} tokens.
func virusPage(id, virus string, extra ...domain.Section) domain.Page {
	sections := []domain.Section{
		{
			ID:            "overview",
			TitleKey:      "sections.overview.title",
			ChartType:     "line",
			DataSourceKey: "overview",
			Strategy: domain.Strategy{
				Kind:       domain.StrategySingleMetric,
				MetricName: "{virus} {view}",
				Submetric:  "Overall",
				Display:    domain.DisplayPercent,
			},
			Props: domain.ChartProps{YAxisLabel: "Percent of {view}", Trend: true},
		},
		{
			ID:            "views",
			TitleKey:      "sections.views.title",
			ChartType:     "line",
			DataSourceKey: "views",
			Strategy: domain.Strategy{
				Kind:       domain.StrategyPivotView,
				BaseMetric: "{virus}",
				Submetric:  "Overall",
				Display:    domain.DisplayPercent,
			},
			Props: domain.ChartProps{Trend: true},
		},
		{
			ID:            "age",
			TitleKey:      "sections.age.title",
			ChartType:     "small-multiples",
			DataSourceKey: "age",
			Strategy: domain.Strategy{
				Kind:       domain.StrategySingleMetric,
				MetricName: "{virus} {view} by age group",
				Display:    domain.DisplayPercent,
			},
			Props: domain.ChartProps{GroupField: "submetric", SharedDomain: true},
		},
		{
			ID:            "borough",
			TitleKey:      "sections.borough.title",
			ChartType:     "small-multiples",
			DataSourceKey: "borough",
			Strategy: domain.Strategy{
				Kind:       domain.StrategySingleMetric,
				MetricName: "{virus} {view} by borough",
				Display:    domain.DisplayPercent,
			},
			Props: domain.ChartProps{GroupField: "submetric", SharedDomain: true},
		},
		{
			ID:            "race",
			TitleKey:      "sections.race.title",
			ChartType:     "small-multiples",
			DataSourceKey: "race",
			Strategy: domain.Strategy{
				Kind:       domain.StrategySingleMetric,
				MetricName: "{virus} {view} by race and ethnicity",
				Display:    domain.DisplayPercent,
			},
			Props: domain.ChartProps{GroupField: "submetric", SharedDomain: true},
		},
		{
			ID:            "cases",
			TitleKey:      "sections.cases.title",
			ChartType:     "bar",
			DataSourceKey: "cases",
			Strategy: domain.Strategy{
				Kind:       domain.StrategySingleMetric,
				MetricName: "{virus} lab-confirmed cases",
				Submetric:  "Overall",
				Display:    domain.DisplayNumber,
			},
			Props: domain.ChartProps{Trend: true},
		},
		{
			ID:            "deaths",
			TitleKey:      "sections.deaths.title",
			ChartType:     "bar",
			DataSourceKey: "deaths",
			Strategy: domain.Strategy{
				Kind:       domain.StrategySingleMetric,
				MetricName: "{virus} deaths",
				Submetric:  "Overall",
				Display:    domain.DisplayNumber,
			},
			Props: domain.ChartProps{Trend: true},
		},
	}

	return domain.Page{
		ID:          id,
		TitleKey:    "pages." + id + ".title",
		SubtitleKey: "pages." + id + ".subtitle",
		Source:      DefaultSource,
		Vars:        map[string]string{"virus": virus, "view": domain.ViewVisits},
		Sections:    append(sections, extra...),
	}
}

func ariPage() domain.Page {
	return domain.Page{
		ID:          "ari",
		TitleKey:    "pages.ari.title",
		SubtitleKey: "pages.ari.subtitle",
		Source:      DefaultSource,
		Vars:        map[string]string{"view": domain.ViewVisits},
		Sections: []domain.Section{
			{
				ID:            "comparison",
				TitleKey:      "sections.comparison.title",
				ChartType:     "line",
				DataSourceKey: "comparison",
				Strategy: domain.Strategy{
					Kind:      domain.StrategyMultiMetric,
					Metrics:   []string{"COVID-19 {view}", "Influenza {view}", "RSV {view}"},
					Submetric: "Overall",
					Display:   domain.DisplayPercent,
				},
				Props: domain.ChartProps{SharedDomain: true, Trend: true},
			},
			{
				ID:            "ari",
				TitleKey:      "sections.ari.title",
				ChartType:     "line",
				DataSourceKey: "ari",
				Strategy: domain.Strategy{
					Kind:       domain.StrategySingleMetric,
					MetricName: "ARI {view}",
					Submetric:  "Overall",
					Display:    domain.DisplayPercent,
				},
				Props: domain.ChartProps{Trend: true},
			},
			{
				ID:            "ari-age",
				TitleKey:      "sections.age.title",
				ChartType:     "small-multiples",
				DataSourceKey: "ari-age",
				Strategy: domain.Strategy{
					Kind:       domain.StrategySingleMetric,
					MetricName: "ARI {view} by age group",
					Display:    domain.DisplayPercent,
				},
				Props: domain.ChartProps{GroupField: "submetric", SharedDomain: true},
			},
		},
	}
}

// Builtin returns the pages shipped with the service, in display order.
func Builtin() []domain.Page {
	return []domain.Page{
		ariPage(),
		virusPage("covid", "COVID-19"),
		virusPage("flu", "Influenza", domain.Section{
			ID:            "subtypes",
			TitleKey:      "sections.subtypes.title",
			ChartType:     "stacked-bar",
			DataSourceKey: "subtypes",
			Strategy: domain.Strategy{
				Kind:       domain.StrategySingleMetric,
				MetricName: "Influenza lab-confirmed cases by subtype",
				Display:    domain.DisplayNumber,
			},
			Props: domain.ChartProps{GroupField: "submetric", StackOrder: true},
		}),
		virusPage("rsv", "RSV"),
	}
}
