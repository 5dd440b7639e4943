package planner

import (
	"github.com/shopspring/decimal"

	"github.com/simaogato/folio-backend/internal/domain"
)

// DefaultTolerance is the accepted relative distance between the projected value and the target
const DefaultTolerance = 0.01

// growthPrecision is the number of decimal places kept while compounding
const growthPrecision = 16

var monthsPerYear = decimal.NewFromInt(12)

// FutureValue projects the value of a plan at the end of its period.
//
// Logic:
//   - r = annualReturn / 12, t = periodMonths
//   - lump sum: initial * (1+r)^t
//   - monthly contributions (ordinary annuity): monthly * ((1+r)^t - 1) / r
//
// The sum is rounded to the nearest whole currency unit.
func FutureValue(initial, monthly decimal.Decimal, periodMonths int, annualReturn decimal.Decimal) decimal.Decimal {
	r := annualReturn.Div(monthsPerYear)
	t := decimal.NewFromInt(int64(periodMonths))
	growth := compound(decimal.NewFromInt(1).Add(r), periodMonths)

	lumpSum := initial.Mul(growth)
	var annuity decimal.Decimal
	if r.IsZero() {
		annuity = monthly.Mul(t)
	} else {
		annuity = monthly.Mul(growth.Sub(decimal.NewFromInt(1))).Div(r)
	}

	return lumpSum.Add(annuity).Round(0)
}

// compound raises base to the n-th power by squaring, rounding every step to growthPrecision
func compound(base decimal.Decimal, n int) decimal.Decimal {
	result := decimal.NewFromInt(1)
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base).Round(growthPrecision)
		}
		base = base.Mul(base).Round(growthPrecision)
		n >>= 1
	}
	return result
}

// IsValidPlan reports whether the plan's numbers reach its target within tolerance.
// It never adjusts the plan.
func IsValidPlan(plan domain.InvestmentPlan, tolerance float64) bool {
	if plan.InitialAmount.IsNegative() ||
		!plan.MonthlyAmount.IsPositive() ||
		plan.Period <= 0 || plan.Period > domain.MaxPlanPeriod ||
		!plan.ExpectedReturn.IsPositive() || plan.ExpectedReturn.GreaterThan(domain.MaxPlanReturn) ||
		!plan.TargetAmount.IsPositive() {
		return false
	}

	fv := FutureValue(plan.InitialAmount, plan.MonthlyAmount, plan.Period, plan.ExpectedReturn)
	tol := decimal.NewFromFloat(tolerance)
	lower := plan.TargetAmount.Mul(decimal.NewFromInt(1).Sub(tol))
	upper := plan.TargetAmount.Mul(decimal.NewFromInt(1).Add(tol))

	return fv.GreaterThanOrEqual(lower) && fv.LessThanOrEqual(upper)
}
