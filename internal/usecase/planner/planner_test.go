package planner

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/folio-backend/internal/domain"
)

func TestFutureValue(t *testing.T) {
	tests := []struct {
		name    string
		initial int64
		monthly int64
		period  int
		annual  float64
		want    int64
	}{
		{name: "monthly only", initial: 0, monthly: 100000, period: 120, annual: 0.06, want: 16387935},
		{name: "lump sum only", initial: 1000000, monthly: 0, period: 12, annual: 0.12, want: 1126825},
		{name: "single month", initial: 0, monthly: 100000, period: 1, annual: 0.06, want: 100000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FutureValue(decimal.NewFromInt(tt.initial), decimal.NewFromInt(tt.monthly), tt.period, decimal.NewFromFloat(tt.annual))
			assert.True(t, got.Equal(decimal.NewFromInt(tt.want)), "got %s want %d", got, tt.want)
		})
	}
}

func TestFutureValue_LongHorizon(t *testing.T) {
	got := FutureValue(decimal.NewFromInt(10000000), decimal.NewFromInt(500000), 360, decimal.NewFromFloat(0.07))
	assert.InDelta(t, 691150473, got.InexactFloat64(), 1)

	// the largest accepted plan stays finite
	assert.NotPanics(t, func() {
		got = FutureValue(decimal.Zero, decimal.NewFromInt(100000), domain.MaxPlanPeriod, domain.MaxPlanReturn)
	})
	assert.True(t, got.GreaterThan(decimal.RequireFromString("5e46")))
}

func plan(target decimal.Decimal) domain.InvestmentPlan {
	return domain.InvestmentPlan{
		MonthlyAmount:  decimal.NewFromInt(100000),
		Period:         120,
		ExpectedReturn: decimal.NewFromFloat(0.06),
		TargetAmount:   target,
	}
}

func TestIsValidPlan_Boundary(t *testing.T) {
	fv := FutureValue(decimal.Zero, decimal.NewFromInt(100000), 120, decimal.NewFromFloat(0.06))

	assert.True(t, IsValidPlan(plan(fv), DefaultTolerance))

	// +5% target is out of reach
	assert.False(t, IsValidPlan(plan(fv.Mul(decimal.NewFromFloat(1.05))), DefaultTolerance))
	assert.False(t, IsValidPlan(plan(fv.Mul(decimal.NewFromFloat(0.95))), DefaultTolerance))

	// inside the 1% band
	assert.True(t, IsValidPlan(plan(fv.Mul(decimal.NewFromFloat(1.005))), DefaultTolerance))
}

func TestIsValidPlan_RejectsNonPositiveFields(t *testing.T) {
	target := decimal.NewFromInt(16387935)

	tests := []struct {
		name   string
		mutate func(p *domain.InvestmentPlan)
	}{
		{name: "negative initial", mutate: func(p *domain.InvestmentPlan) { p.InitialAmount = decimal.NewFromInt(-1) }},
		{name: "zero monthly", mutate: func(p *domain.InvestmentPlan) { p.MonthlyAmount = decimal.Zero }},
		{name: "zero period", mutate: func(p *domain.InvestmentPlan) { p.Period = 0 }},
		{name: "zero return", mutate: func(p *domain.InvestmentPlan) { p.ExpectedReturn = decimal.Zero }},
		{name: "negative target", mutate: func(p *domain.InvestmentPlan) { p.TargetAmount = decimal.NewFromInt(-5) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := plan(target)
			tt.mutate(&p)
			assert.False(t, IsValidPlan(p, DefaultTolerance))
		})
	}
}

func TestIsValidPlan_RejectsOutOfRangeFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *domain.InvestmentPlan)
	}{
		{name: "period of a hundred thousand years", mutate: func(p *domain.InvestmentPlan) { p.Period = 1200000 }},
		{name: "period just over the limit", mutate: func(p *domain.InvestmentPlan) { p.Period = domain.MaxPlanPeriod + 1 }},
		{name: "huge return", mutate: func(p *domain.InvestmentPlan) { p.ExpectedReturn = decimal.NewFromInt(1000000) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := plan(decimal.NewFromInt(1000000))
			tt.mutate(&p)
			assert.NotPanics(t, func() {
				assert.False(t, IsValidPlan(p, DefaultTolerance))
			})
		})
	}
}

func TestDetermineRiskType(t *testing.T) {
	tests := []struct {
		score  int
		want   domain.RiskType
		wantOK bool
	}{
		{score: 9, wantOK: false},
		{score: 10, want: domain.RiskTypeStable, wantOK: true},
		{score: 15, want: domain.RiskTypeStable, wantOK: true},
		{score: 16, want: domain.RiskTypeStableSeek, wantOK: true},
		{score: 20, want: domain.RiskTypeStableSeek, wantOK: true},
		{score: 21, want: domain.RiskTypeNeutral, wantOK: true},
		{score: 25, want: domain.RiskTypeNeutral, wantOK: true},
		{score: 26, want: domain.RiskTypeActive, wantOK: true},
		{score: 30, want: domain.RiskTypeActive, wantOK: true},
		{score: 31, want: domain.RiskTypeAggressive, wantOK: true},
		{score: 40, want: domain.RiskTypeAggressive, wantOK: true},
		{score: 41, wantOK: false},
		{score: 0, wantOK: false},
	}

	for _, tt := range tests {
		got, ok := DetermineRiskType(tt.score)
		assert.Equal(t, tt.wantOK, ok, "score %d", tt.score)
		assert.Equal(t, tt.want, got, "score %d", tt.score)
	}
}

func TestDetermineRiskType_Totality(t *testing.T) {
	order := []domain.RiskType{
		domain.RiskTypeStable,
		domain.RiskTypeStableSeek,
		domain.RiskTypeNeutral,
		domain.RiskTypeActive,
		domain.RiskTypeAggressive,
	}
	rank := make(map[domain.RiskType]int, len(order))
	for i, r := range order {
		rank[r] = i
	}

	prev := -1
	for score := MinRiskScore; score <= MaxRiskScore; score++ {
		got, ok := DetermineRiskType(score)
		require.True(t, ok, "score %d", score)
		r, known := rank[got]
		require.True(t, known)
		assert.GreaterOrEqual(t, r, prev, "tiers must not decrease at score %d", score)
		prev = r
	}
	assert.Equal(t, len(order)-1, prev)
}

func TestGenerateSchedules(t *testing.T) {
	p := domain.InvestmentPlan{
		ID:            uuid.New(),
		MonthlyAmount: decimal.NewFromInt(300000),
		StartDate:     time.Date(2026, time.November, 10, 0, 0, 0, 0, time.UTC),
		PaymentDay:    31,
		Period:        4,
	}

	schedules := GenerateSchedules(p)
	require.Len(t, schedules, 4)

	wantDates := []time.Time{
		time.Date(2026, time.November, 30, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2027, time.January, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2027, time.February, 28, 0, 0, 0, 0, time.UTC),
	}
	for i, s := range schedules {
		assert.Equal(t, i+1, s.Sequence)
		assert.Equal(t, p.ID, s.PlanID)
		assert.True(t, s.Amount.Equal(p.MonthlyAmount))
		assert.Equal(t, domain.PaymentStatusPending, s.Status)
		assert.True(t, wantDates[i].Equal(s.ExpectedDate), "sequence %d: got %s", s.Sequence, s.ExpectedDate)
		assert.Nil(t, s.ActualPaidAmount)
	}
}

func TestGenerateSchedules_EmptyPeriod(t *testing.T) {
	assert.Empty(t, GenerateSchedules(domain.InvestmentPlan{Period: 0}))
}
