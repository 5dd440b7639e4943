package planner

import "github.com/simaogato/folio-backend/internal/domain"

// Survey score limits
const (
	MinRiskScore = 10
	MaxRiskScore = 40
)

// DetermineRiskType buckets a survey score into one of the five risk tiers.
// ok is false for scores outside [MinRiskScore, MaxRiskScore].
func DetermineRiskType(score int) (riskType domain.RiskType, ok bool) {
	switch {
	case score < MinRiskScore || score > MaxRiskScore:
		return "", false
	case score <= 15:
		return domain.RiskTypeStable, true
	case score <= 20:
		return domain.RiskTypeStableSeek, true
	case score <= 25:
		return domain.RiskTypeNeutral, true
	case score <= 30:
		return domain.RiskTypeActive, true
	default:
		return domain.RiskTypeAggressive, true
	}
}
