// Package hydrate walks a page configuration and fills its data map from a
// dataset. It reports per-section outcomes instead of failing the page.
package hydrate

import (
	"context"
	"fmt"

	"github.com/de-tools/resp-atlas/pkg/models/domain"
	"github.com/de-tools/resp-atlas/pkg/services/filter"
	"github.com/de-tools/resp-atlas/pkg/services/normalize"
	"github.com/de-tools/resp-atlas/pkg/services/pivot"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Option func(*Hydrator)

// WithRunID fixes the run id instead of generating one per Hydrate call.
func WithRunID(id string) Option {
	return func(h *Hydrator) {
		h.runID = func() string { return id }
	}
}

type Hydrator struct {
	filterer *filter.Filterer
	runID    func() string
}

func New(filterer *filter.Filterer, opts ...Option) *Hydrator {
	if filterer == nil {
		filterer = filter.NewFilterer(nil)
	}
	h := &Hydrator{
		filterer: filterer,
		runID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Hydrate resolves every section of page against ds. Sections without a
// resolvable strategy get an error outcome and are left out of the data
// map; the remaining sections are still hydrated.
func (h *Hydrator) Hydrate(
	ctx context.Context,
	page domain.Page,
	ds domain.Dataset,
	vars Vars,
) (domain.DataMap, domain.HydrationReport) {
	report := domain.HydrationReport{RunID: h.runID(), Page: page.ID}
	logger := zerolog.Ctx(ctx).With().
		Str("page", page.ID).
		Str("run_id", report.RunID).
		Str("dataset", ds.Name).
		Logger()

	data := make(domain.DataMap, len(page.Sections))
	for _, section := range page.Sections {
		key := SectionKey(section)

		strategy := ResolveStrategy(section.Strategy, vars)
		props := ResolveProps(section.Props, vars)

		kind, inferred, err := resolveKind(strategy)
		if err != nil {
			report.Add(key, domain.SeverityError, err.Error())
			logger.Warn().Err(err).Str("section", key).Msg("skipping section")
			continue
		}
		if inferred {
			report.Add(key, domain.SeverityWarning, fmt.Sprintf("strategy inferred as %s", kind))
		}
		strategy.Kind = kind

		sd := h.resolve(strategy, props, ds)
		data[key] = sd

		if sd.Empty() {
			report.Add(key, domain.SeverityWarning, "no data")
			logger.Debug().Str("section", key).Msg("section has no matching rows")
			continue
		}
		report.Add(key, domain.SeverityOK, "")
	}

	logger.Debug().
		Int("sections", len(page.Sections)).
		Int("errors", len(report.Errors())).
		Int("warnings", len(report.Warnings())).
		Msg("page hydrated")

	return data, report
}

// SectionKey is the data-map key of a section.
func SectionKey(s domain.Section) string {
	if s.DataSourceKey != "" {
		return s.DataSourceKey
	}
	return s.ID
}

// resolveKind infers a kind for untagged sections by field presence
// (metrics, then pivot base, then metric name) and validates the result.
func resolveKind(s domain.Strategy) (domain.StrategyKind, bool, error) {
	inferred := false
	if s.Kind == "" {
		switch {
		case len(s.Metrics) > 0:
			s.Kind = domain.StrategyMultiMetric
		case s.BaseMetric != "":
			s.Kind = domain.StrategyPivotView
		case s.MetricName != "":
			s.Kind = domain.StrategySingleMetric
		default:
			return "", false, domain.ErrNoStrategy
		}
		inferred = true
	}
	if err := s.Validate(); err != nil {
		return "", false, err
	}
	return s.Kind, inferred, nil
}

func (h *Hydrator) resolve(s domain.Strategy, props domain.ChartProps, ds domain.Dataset) domain.SectionData {
	display := s.Display
	if display == "" {
		display = props.Display
	}

	switch s.Kind {
	case domain.StrategyMultiMetric:
		byMetric := make(map[string][]domain.Row, len(s.Metrics))
		for _, m := range s.Metrics {
			rows := h.filterer.ByMetric(ds, domain.Criteria{Metric: m, Submetric: s.Submetric, Display: display})
			byMetric[m] = normalize.Sorted(rows)
		}
		return domain.SectionData{Kind: s.Kind, ByMetric: byMetric}

	case domain.StrategyPivotView:
		views := s.Views
		if len(views) == 0 {
			views = pivot.DefaultViews
		}
		groupField := s.GroupField
		if groupField == "" {
			groupField = props.GroupField
		}
		var rows []domain.Row
		for _, v := range views {
			rows = append(rows, h.filterer.ByMetric(ds, domain.Criteria{
				Metric:    pivot.ViewMetric(s.BaseMetric, v),
				Submetric: s.Submetric,
				Display:   display,
			})...)
		}
		return domain.SectionData{Kind: s.Kind, Views: pivot.PivotViews(rows, s.BaseMetric, views, groupField)}

	default:
		rows := normalize.Sorted(h.filterer.ByMetric(ds, domain.Criteria{
			Metric:    s.MetricName,
			Submetric: s.Submetric,
			Display:   display,
		}))
		sd := domain.SectionData{Kind: domain.StrategySingleMetric, Rows: rows}
		if props.GroupField != "" {
			sd.Groups = pivot.GroupBy(rows, props.GroupField)
		}
		return sd
	}
}
