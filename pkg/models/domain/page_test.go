package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrategy_Validate(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
		wantErr  error
	}{
		{"untagged", Strategy{MetricName: "RSV visits"}, nil},
		{"default views", Strategy{Kind: StrategyPivotView, BaseMetric: "RSV"}, nil},
		{"known views", Strategy{Kind: StrategyPivotView, BaseMetric: "RSV", Views: []string{ViewHospitalizations, ViewVisits}}, nil},
		{"placeholder view", Strategy{Kind: StrategyPivotView, BaseMetric: "RSV", Views: []string{"{view}"}}, nil},
		{"unknown view", Strategy{Kind: StrategyPivotView, BaseMetric: "RSV", Views: []string{"cases", "deaths"}}, ErrUnknownView},
		{"pivot without base", Strategy{Kind: StrategyPivotView}, ErrNoStrategy},
		{"unknown kind", Strategy{Kind: "heatmap"}, ErrUnknownKind},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.strategy.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
		})
	}
}
