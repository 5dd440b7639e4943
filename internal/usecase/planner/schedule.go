package planner

import (
	"time"

	"github.com/google/uuid"

	"github.com/simaogato/folio-backend/internal/domain"
)

// GenerateSchedules builds the monthly payment schedules of a plan.
//
// Logic:
//   - One PENDING schedule per month, sequence 1..plan.Period
//   - Schedule i is expected in start month + (i-1) on plan.PaymentDay
//   - Short months clamp the payment day to their last day (31 -> Feb 28/29)
func GenerateSchedules(plan domain.InvestmentPlan) []domain.PaymentSchedule {
	if plan.Period <= 0 {
		return []domain.PaymentSchedule{}
	}

	start := plan.StartDate
	schedules := make([]domain.PaymentSchedule, 0, plan.Period)
	for i := 1; i <= plan.Period; i++ {
		schedules = append(schedules, domain.PaymentSchedule{
			ID:           uuid.New(),
			PlanID:       plan.ID,
			Sequence:     i,
			ExpectedDate: paymentDate(start.Year(), start.Month()+time.Month(i-1), plan.PaymentDay, start.Location()),
			Amount:       plan.MonthlyAmount,
			Status:       domain.PaymentStatusPending,
		})
	}
	return schedules
}

// paymentDate returns day of the given month, clamped to the month's last day.
// month may overflow 12; time.Date normalises it.
func paymentDate(year int, month time.Month, day int, loc *time.Location) time.Time {
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	lastDay := firstOfMonth.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfMonth.Year(), firstOfMonth.Month(), day, 0, 0, 0, 0, loc)
}
