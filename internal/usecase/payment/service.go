package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/simaogato/folio-backend/internal/domain"
)

// DefaultCurrency is used when no currency is configured
const DefaultCurrency = "KRW"

var (
	hundred       = decimal.NewFromInt(100)
	monthsPerYear = decimal.NewFromInt(12)
	two           = decimal.NewFromInt(2)
)

// PaymentService handles payment schedules of the active plan and the progress report
type PaymentService struct {
	PaymentRepo   domain.PaymentRepository
	ProfileRepo   domain.ProfileRepository
	PortfolioRepo domain.PortfolioReader
	Currency      string
	Log           zerolog.Logger
}

// NewPaymentService creates a new PaymentService instance
func NewPaymentService(paymentRepo domain.PaymentRepository, profileRepo domain.ProfileRepository, portfolioRepo domain.PortfolioReader, currency string, log zerolog.Logger) *PaymentService {
	if money.GetCurrency(currency) == nil {
		currency = DefaultCurrency
	}
	return &PaymentService{
		PaymentRepo:   paymentRepo,
		ProfileRepo:   profileRepo,
		PortfolioRepo: portfolioRepo,
		Currency:      currency,
		Log:           log.With().Str("service", "payment").Logger(),
	}
}

// GetSchedules returns the schedules of the user's active plan ordered by sequence
func (s *PaymentService) GetSchedules(ctx context.Context, userID uuid.UUID) ([]domain.PaymentSchedule, error) {
	plan, err := s.activePlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	schedules, err := s.PaymentRepo.ListSchedules(ctx, plan.ID)
	if err != nil {
		return nil, domain.Internal(fmt.Errorf("failed to list schedules: %w", err))
	}
	return schedules, nil
}

// RecordPayment marks a schedule of the user's active plan as paid.
// A missed schedule can still be paid late.
func (s *PaymentService) RecordPayment(ctx context.Context, userID, scheduleID uuid.UUID, amount decimal.Decimal, paidAt time.Time) (*domain.PaymentSchedule, error) {
	if !amount.IsPositive() {
		return nil, domain.NewError(domain.CodeInvalidPayment, "paid amount must be positive")
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	plan, err := s.activePlan(ctx, userID)
	if err != nil {
		return nil, err
	}

	schedule, err := s.PaymentRepo.GetSchedule(ctx, scheduleID)
	if err != nil || schedule.PlanID != plan.ID {
		if err == nil || domain.IsNotFound(err) {
			return nil, &domain.Error{Code: domain.CodePaymentScheduleNotFound, Message: "payment schedule not found", Err: err}
		}
		return nil, domain.Internal(fmt.Errorf("failed to get schedule: %w", err))
	}
	if schedule.Status == domain.PaymentStatusPaid {
		return nil, domain.NewError(domain.CodeInvalidPayment, fmt.Sprintf("schedule %d is already paid", schedule.Sequence))
	}

	if err := s.PaymentRepo.MarkPaid(ctx, scheduleID, amount, paidAt); err != nil {
		return nil, domain.Internal(fmt.Errorf("failed to record payment: %w", err))
	}

	schedule.Status = domain.PaymentStatusPaid
	schedule.ActualPaidAmount = &amount
	schedule.ActualPaidDate = &paidAt

	s.Log.Debug().Str("user_id", userID.String()).Str("schedule_id", scheduleID.String()).Str("amount", amount.String()).Msg("payment recorded")
	return schedule, nil
}

// GetPaidPayments returns every paid schedule of a user across all plan versions
func (s *PaymentService) GetPaidPayments(ctx context.Context, userID uuid.UUID) ([]domain.PaymentSchedule, error) {
	paid, err := s.PaymentRepo.ListPaidByUser(ctx, userID)
	if err != nil {
		return nil, domain.Internal(fmt.Errorf("failed to list paid payments: %w", err))
	}
	return paid, nil
}

// GetProgress estimates how far the user has come towards the target of the active plan.
//
// Logic:
//   - principal: sum of paid amounts across all plan versions
//   - annual return: midpoint of the portfolio's expected return, or the plan's when the
//     user has no portfolio with items
//   - current value: principal * (1 + return * paidCount / 12), rounded to whole units
//   - return rate and progress rate are percentages with 2 decimals
func (s *PaymentService) GetProgress(ctx context.Context, userID uuid.UUID) (*domain.InvestmentProgress, error) {
	plan, err := s.activePlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	paid, err := s.GetPaidPayments(ctx, userID)
	if err != nil {
		return nil, err
	}
	annual, err := s.expectedReturn(ctx, userID, plan)
	if err != nil {
		return nil, err
	}

	principal := decimal.Zero
	for _, ps := range paid {
		if ps.ActualPaidAmount != nil {
			principal = principal.Add(*ps.ActualPaidAmount)
		} else {
			principal = principal.Add(ps.Amount)
		}
	}
	paidCount := len(paid)

	growth := annual.Mul(decimal.NewFromInt(int64(paidCount))).Div(monthsPerYear)
	current := principal.Mul(decimal.NewFromInt(1).Add(growth)).Round(0)
	returnAmount := current.Sub(principal)

	returnRate := decimal.Zero
	if principal.IsPositive() {
		returnRate = returnAmount.Div(principal).Mul(hundred).Round(2)
	}
	progressRate := current.Div(plan.TargetAmount).Mul(hundred).Round(2)

	remaining := plan.Period - paidCount
	if remaining < 0 {
		remaining = 0
	}

	return &domain.InvestmentProgress{
		TotalPrincipal:    principal,
		CurrentAssetValue: current,
		TotalReturnAmount: returnAmount,
		TotalReturnRate:   returnRate,
		TotalProgressRate: progressRate,
		PaidCount:         paidCount,
		RemainingPeriod:   remaining,
		Currency:          s.Currency,
		Display: domain.ProgressDisplay{
			TotalPrincipal:    Format(principal, s.Currency),
			CurrentAssetValue: Format(current, s.Currency),
			TotalReturnAmount: Format(returnAmount, s.Currency),
			TargetAmount:      Format(plan.TargetAmount, s.Currency),
		},
	}, nil
}

func (s *PaymentService) expectedReturn(ctx context.Context, userID uuid.UUID, plan *domain.InvestmentPlan) (decimal.Decimal, error) {
	if s.PortfolioRepo == nil {
		return plan.ExpectedReturn, nil
	}

	p, err := s.PortfolioRepo.GetPortfolioByUser(ctx, userID)
	if err != nil {
		if domain.IsNotFound(err) {
			return plan.ExpectedReturn, nil
		}
		return decimal.Zero, domain.Internal(fmt.Errorf("failed to get portfolio: %w", err))
	}
	items, err := s.PortfolioRepo.ListItems(ctx, p.ID)
	if err != nil {
		return decimal.Zero, domain.Internal(fmt.Errorf("failed to list items: %w", err))
	}
	if len(items) == 0 {
		return plan.ExpectedReturn, nil
	}

	lo := decimal.NewFromFloat(p.ExpectedReturn.Min)
	hi := decimal.NewFromFloat(p.ExpectedReturn.Max)
	return lo.Add(hi).Div(two), nil
}

func (s *PaymentService) activePlan(ctx context.Context, userID uuid.UUID) (*domain.InvestmentPlan, error) {
	plan, err := s.ProfileRepo.GetActivePlan(ctx, userID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, &domain.Error{Code: domain.CodePlanNotFound, Message: "no active investment plan", Err: err}
		}
		return nil, domain.Internal(fmt.Errorf("failed to get active plan: %w", err))
	}
	return plan, nil
}

// Format renders a decimal amount in the display format of a currency
func Format(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.String()
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}
