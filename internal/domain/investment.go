package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RiskType represents the five ordered risk tiers derived from the survey score
type RiskType string

const (
	RiskTypeStable     RiskType = "STABLE"
	RiskTypeStableSeek RiskType = "STABLE_SEEK"
	RiskTypeNeutral    RiskType = "NEUTRAL"
	RiskTypeActive     RiskType = "ACTIVE"
	RiskTypeAggressive RiskType = "AGGRESSIVE"
)

// MaxPlanPeriod is the longest accepted plan, in months
const MaxPlanPeriod = 1200

// MaxPlanReturn is the highest accepted annual expected return (100%)
var MaxPlanReturn = decimal.NewFromInt(1)

// InvestmentPlan represents a versioned financial goal of a user.
// Only one plan per user is active at a time.
type InvestmentPlan struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Version        int
	InitialAmount  decimal.Decimal // optional lump sum, zero when absent
	MonthlyAmount  decimal.Decimal
	StartDate      time.Time
	PaymentDay     int // 1-31, clamped to the last day of short months
	Period         int // months
	ExpectedReturn decimal.Decimal // annual, as a decimal (0.06 = 6%)
	TargetAmount   decimal.Decimal
	IsActive       bool
	CreatedAt      time.Time
}

// Validate checks that the required fields of a plan request are present.
// Feasibility against the target is checked separately by the planner.
func (p *InvestmentPlan) Validate() error {
	if p.UserID == uuid.Nil {
		return errors.New("plan must belong to a user")
	}
	if p.StartDate.IsZero() {
		return errors.New("plan start date is required")
	}
	if p.PaymentDay < 1 || p.PaymentDay > 31 {
		return errors.New("plan payment day must be between 1 and 31")
	}
	if p.InitialAmount.IsNegative() {
		return errors.New("plan initial amount cannot be negative")
	}
	if !p.MonthlyAmount.IsPositive() {
		return errors.New("plan monthly amount must be positive")
	}
	if p.Period <= 0 {
		return errors.New("plan period must be positive")
	}
	if p.Period > MaxPlanPeriod {
		return fmt.Errorf("plan period cannot exceed %d months", MaxPlanPeriod)
	}
	if !p.ExpectedReturn.IsPositive() {
		return errors.New("plan expected return must be positive")
	}
	if p.ExpectedReturn.GreaterThan(MaxPlanReturn) {
		return fmt.Errorf("plan expected return cannot exceed %s", MaxPlanReturn)
	}
	if !p.TargetAmount.IsPositive() {
		return errors.New("plan target amount must be positive")
	}
	return nil
}
