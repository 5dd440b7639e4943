package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInvestmentPlan_Validate(t *testing.T) {
	valid := func() InvestmentPlan {
		return InvestmentPlan{
			UserID:         uuid.New(),
			MonthlyAmount:  decimal.NewFromInt(100000),
			StartDate:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			PaymentDay:     25,
			Period:         120,
			ExpectedReturn: decimal.NewFromFloat(0.06),
			TargetAmount:   decimal.NewFromInt(16387935),
		}
	}

	tests := []struct {
		name    string
		mutate  func(p *InvestmentPlan)
		wantErr bool
		errMsg  string
	}{
		{name: "valid plan", mutate: func(p *InvestmentPlan) {}},
		{name: "missing user", mutate: func(p *InvestmentPlan) { p.UserID = uuid.Nil }, wantErr: true, errMsg: "plan must belong to a user"},
		{name: "missing start date", mutate: func(p *InvestmentPlan) { p.StartDate = time.Time{} }, wantErr: true, errMsg: "plan start date is required"},
		{name: "payment day out of range", mutate: func(p *InvestmentPlan) { p.PaymentDay = 32 }, wantErr: true, errMsg: "plan payment day must be between 1 and 31"},
		{name: "negative initial", mutate: func(p *InvestmentPlan) { p.InitialAmount = decimal.NewFromInt(-1) }, wantErr: true, errMsg: "plan initial amount cannot be negative"},
		{name: "zero monthly", mutate: func(p *InvestmentPlan) { p.MonthlyAmount = decimal.Zero }, wantErr: true, errMsg: "plan monthly amount must be positive"},
		{name: "zero period", mutate: func(p *InvestmentPlan) { p.Period = 0 }, wantErr: true, errMsg: "plan period must be positive"},
		{name: "period too long", mutate: func(p *InvestmentPlan) { p.Period = MaxPlanPeriod + 1 }, wantErr: true, errMsg: "plan period cannot exceed 1200 months"},
		{name: "longest period", mutate: func(p *InvestmentPlan) { p.Period = MaxPlanPeriod }},
		{name: "return too high", mutate: func(p *InvestmentPlan) { p.ExpectedReturn = decimal.NewFromFloat(1.5) }, wantErr: true, errMsg: "plan expected return cannot exceed 1"},
		{name: "zero return", mutate: func(p *InvestmentPlan) { p.ExpectedReturn = decimal.Zero }, wantErr: true, errMsg: "plan expected return must be positive"},
		{name: "zero target", mutate: func(p *InvestmentPlan) { p.TargetAmount = decimal.Zero }, wantErr: true, errMsg: "plan target amount must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.errMsg, err.Error())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
