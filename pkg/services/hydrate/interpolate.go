package hydrate

import (
	"regexp"

	"github.com/de-tools/resp-atlas/pkg/models/domain"
)

var tokenPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Vars are the context variables substituted into "{name}" tokens,
// e.g. {"virus": "COVID-19", "view": "visits"}.
type Vars map[string]string

// Interpolate replaces known tokens and leaves unknown ones untouched.
// It is plain string substitution; HTML-bound text goes through
// content.Template instead.
func Interpolate(s string, vars Vars) string {
	if len(vars) == 0 || s == "" {
		return s
	}
	return tokenPattern.ReplaceAllStringFunc(s, func(tok string) string {
		name := tok[1 : len(tok)-1]
		if v, ok := vars[name]; ok {
			return v
		}
		return tok
	})
}

// Tokens lists the token names referenced by s, in order of appearance.
func Tokens(s string) []string {
	matches := tokenPattern.FindAllStringSubmatch(s, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// ResolveStrategy returns a copy of s with every string interpolated.
func ResolveStrategy(s domain.Strategy, vars Vars) domain.Strategy {
	out := s
	if len(s.Metrics) > 0 {
		out.Metrics = make([]string, len(s.Metrics))
		for i, m := range s.Metrics {
			out.Metrics[i] = Interpolate(m, vars)
		}
	}
	if len(s.Views) > 0 {
		out.Views = make([]string, len(s.Views))
		for i, v := range s.Views {
			out.Views[i] = Interpolate(v, vars)
		}
	}
	out.BaseMetric = interpolateKeepView(s.BaseMetric, vars)
	out.GroupField = Interpolate(s.GroupField, vars)
	out.MetricName = Interpolate(s.MetricName, vars)
	out.Submetric = Interpolate(s.Submetric, vars)
	out.Display = Interpolate(s.Display, vars)
	return out
}

func ResolveProps(p domain.ChartProps, vars Vars) domain.ChartProps {
	out := p
	out.GroupField = Interpolate(p.GroupField, vars)
	out.ValueKey = Interpolate(p.ValueKey, vars)
	out.Display = Interpolate(p.Display, vars)
	out.YAxisLabel = Interpolate(p.YAxisLabel, vars)
	return out
}

// interpolateKeepView leaves "{view}" in a pivot base metric so the
// pivoter can expand it once per view.
func interpolateKeepView(s string, vars Vars) string {
	if _, ok := vars["view"]; !ok {
		return Interpolate(s, vars)
	}
	scoped := make(Vars, len(vars))
	for k, v := range vars {
		if k != "view" {
			scoped[k] = v
		}
	}
	return Interpolate(s, scoped)
}
