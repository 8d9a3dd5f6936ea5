package domain

import (
	"errors"
	"fmt"
	"strings"
)

type StrategyKind string

const (
	StrategyMultiMetric  StrategyKind = "multiMetric"
	StrategyPivotView    StrategyKind = "pivotView"
	StrategySingleMetric StrategyKind = "singleMetric"
)

var (
	ErrNoStrategy    = errors.New("section has no data strategy")
	ErrUnknownKind   = errors.New("unknown strategy kind")
	ErrDuplicateKey  = errors.New("duplicate data source key")
	ErrMissingPageID = errors.New("page id is required")
	ErrUnknownView   = errors.New("unknown pivot view")
)

// Strategy is the data-resolution variant of a section. Only the fields
// of the chosen Kind are read.
type Strategy struct {
	Kind StrategyKind `yaml:"kind" json:"kind"`

	// multiMetric
	Metrics []string `yaml:"metrics,omitempty" json:"metrics,omitempty"`

	// pivotView
	BaseMetric string   `yaml:"baseMetric,omitempty" json:"baseMetric,omitempty"`
	Views      []string `yaml:"views,omitempty" json:"views,omitempty"`
	GroupField string   `yaml:"groupField,omitempty" json:"groupField,omitempty"`

	// singleMetric
	MetricName string `yaml:"metricName,omitempty" json:"metricName,omitempty"`
	Submetric  string `yaml:"submetric,omitempty" json:"submetric,omitempty"`
	Display    string `yaml:"display,omitempty" json:"display,omitempty"`
}

func (s Strategy) Validate() error {
	switch s.Kind {
	case StrategyMultiMetric:
		if len(s.Metrics) == 0 {
			return fmt.Errorf("%s: %w", s.Kind, ErrNoStrategy)
		}
	case StrategyPivotView:
		if s.BaseMetric == "" {
			return fmt.Errorf("%s: %w", s.Kind, ErrNoStrategy)
		}
		for _, v := range s.Views {
			// placeholders are checked again once interpolated
			if strings.Contains(v, "{") {
				continue
			}
			if v != ViewVisits && v != ViewHospitalizations {
				return fmt.Errorf("%s view %q: %w", s.Kind, v, ErrUnknownView)
			}
		}
	case StrategySingleMetric:
		if s.MetricName == "" {
			return fmt.Errorf("%s: %w", s.Kind, ErrNoStrategy)
		}
	case "":
		// inferred at hydration time
	default:
		return fmt.Errorf("%q: %w", s.Kind, ErrUnknownKind)
	}
	return nil
}

type ChartProps struct {
	GroupField   string `yaml:"groupField,omitempty" json:"groupField,omitempty"`
	ValueKey     string `yaml:"valueKey,omitempty" json:"valueKey,omitempty"`
	Display      string `yaml:"display,omitempty" json:"display,omitempty"`
	YAxisLabel   string `yaml:"yAxisLabel,omitempty" json:"yAxisLabel,omitempty"`
	SharedDomain bool   `yaml:"sharedDomain,omitempty" json:"sharedDomain,omitempty"`
	StackOrder   bool   `yaml:"stackOrder,omitempty" json:"stackOrder,omitempty"`
	Trend        bool   `yaml:"trend,omitempty" json:"trend,omitempty"`
}

type Section struct {
	ID            string     `yaml:"id" json:"id"`
	TitleKey      string     `yaml:"titleKey" json:"titleKey"`
	ChartType     string     `yaml:"chartType" json:"chartType"`
	DataSourceKey string     `yaml:"dataSourceKey" json:"dataSourceKey"`
	Strategy      Strategy   `yaml:"data" json:"data"`
	Props         ChartProps `yaml:"props" json:"props"`
}

type Page struct {
	ID          string            `yaml:"id" json:"id"`
	TitleKey    string            `yaml:"titleKey" json:"titleKey"`
	SubtitleKey string            `yaml:"subtitleKey" json:"subtitleKey"`
	Source      string            `yaml:"source" json:"source"`
	Vars        map[string]string `yaml:"vars,omitempty" json:"vars,omitempty"` // defaults for tokens the caller leaves out
	Sections    []Section         `yaml:"sections" json:"sections"`
}

// MergeVars overlays vars on the page defaults without modifying either.
func (p Page) MergeVars(vars map[string]string) map[string]string {
	out := make(map[string]string, len(p.Vars)+len(vars))
	for k, v := range p.Vars {
		out[k] = v
	}
	for k, v := range vars {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// Validate reports structural errors only. Sections without a resolvable
// strategy are left to the hydrator, which skips them and keeps going.
func (p Page) Validate() error {
	if p.ID == "" {
		return ErrMissingPageID
	}
	seen := make(map[string]bool, len(p.Sections))
	for _, s := range p.Sections {
		key := s.DataSourceKey
		if key == "" {
			key = s.ID
		}
		if seen[key] {
			return fmt.Errorf("page %s: %w: %s", p.ID, ErrDuplicateKey, key)
		}
		seen[key] = true
		if s.Strategy.Kind != "" {
			if err := s.Strategy.Validate(); err != nil {
				return fmt.Errorf("page %s section %s: %w", p.ID, s.ID, err)
			}
		}
	}
	return nil
}

// SectionData is the hydrated slice for one section. Which field is set
// follows Kind.
type SectionData struct {
	Kind     StrategyKind
	Rows     []Row
	ByMetric map[string][]Row
	Views    []ViewRecord
	Groups   []Group
}

func (d SectionData) Empty() bool {
	switch d.Kind {
	case StrategyMultiMetric:
		for _, rows := range d.ByMetric {
			if len(rows) > 0 {
				return false
			}
		}
		return true
	case StrategyPivotView:
		return len(d.Views) == 0
	default:
		return len(d.Rows) == 0
	}
}

type DataMap map[string]SectionData
