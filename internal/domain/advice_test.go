package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdvise(t *testing.T) {
	cases := []struct {
		name string
		norm FactorBreakdown
		want []AdvisoryTag
	}{
		{
			name: "balanced",
			norm: FactorBreakdown{Income: 0.5, Unemployment: 0.5, CostOfLiving: 0.5},
			want: []AdvisoryTag{},
		},
		{
			name: "all favorable",
			norm: FactorBreakdown{Income: 0.9, Unemployment: 0.1, CostOfLiving: 0.2},
			want: []AdvisoryTag{TagStrongIncome, TagVeryLowUnemployment, TagAffordableCost},
		},
		{
			name: "all unfavorable",
			norm: FactorBreakdown{Income: 0.1, Unemployment: 0.95, CostOfLiving: 0.8},
			want: []AdvisoryTag{TagLowIncome, TagHighUnemployment, TagHighCost},
		},
		{
			name: "thresholds are exclusive",
			norm: FactorBreakdown{Income: 0.75, Unemployment: 0.3, CostOfLiving: 0.4},
			want: []AdvisoryTag{},
		},
		{
			name: "upper thresholds are exclusive",
			norm: FactorBreakdown{Income: 0.4, Unemployment: 0.7, CostOfLiving: 0.75},
			want: []AdvisoryTag{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Advise(tc.norm))
		})
	}
}

func TestInsight(t *testing.T) {
	assert.Equal(t,
		"This county has balanced factors across income, unemployment, and cost.",
		Insight(nil))
	assert.Equal(t,
		"This score reflects strong income levels.",
		Insight([]AdvisoryTag{TagStrongIncome}))
	assert.Equal(t,
		"This score reflects low income levels and high unemployment.",
		Insight([]AdvisoryTag{TagLowIncome, TagHighUnemployment}))
	assert.Equal(t,
		"This score reflects strong income levels, very low unemployment, and affordable cost of living.",
		Insight([]AdvisoryTag{TagStrongIncome, TagVeryLowUnemployment, TagAffordableCost}))
}
