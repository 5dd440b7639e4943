package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the lifecycle of a single scheduled payment
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusMissed  PaymentStatus = "MISSED"
	PaymentStatusSkipped PaymentStatus = "SKIPPED"
)

// PaymentSchedule represents one planned monthly contribution of a plan
type PaymentSchedule struct {
	ID               uuid.UUID
	PlanID           uuid.UUID
	Sequence         int // 1..plan.Period
	ExpectedDate     time.Time
	Amount           decimal.Decimal
	Status           PaymentStatus
	ActualPaidAmount *decimal.Decimal // NULL until paid
	ActualPaidDate   *time.Time
}

// InvestmentProgress summarises the paid schedules of the active plan
type InvestmentProgress struct {
	TotalPrincipal    decimal.Decimal
	CurrentAssetValue decimal.Decimal
	TotalReturnAmount decimal.Decimal
	TotalReturnRate   decimal.Decimal // percent, 2dp
	TotalProgressRate decimal.Decimal // percent of target, 2dp
	PaidCount         int
	RemainingPeriod   int
	Currency          string
	Display           ProgressDisplay
}

// ProgressDisplay holds the monetary fields formatted for the configured currency
type ProgressDisplay struct {
	TotalPrincipal    string
	CurrentAssetValue string
	TotalReturnAmount string
	TargetAmount      string
}
