package profile

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/simaogato/folio-backend/internal/domain"
	"github.com/simaogato/folio-backend/internal/usecase/planner"
)

// ProfileService handles the investment profile of a user: the assessed risk type and
// the versioned investment plan with its payment schedules.
type ProfileService struct {
	ProfileRepo domain.ProfileRepository
	Tolerance   float64
	Log         zerolog.Logger
}

// NewProfileService creates a new ProfileService instance.
// A non-positive tolerance falls back to planner.DefaultTolerance.
func NewProfileService(profileRepo domain.ProfileRepository, tolerance float64, log zerolog.Logger) *ProfileService {
	if tolerance <= 0 {
		tolerance = planner.DefaultTolerance
	}
	return &ProfileService{
		ProfileRepo: profileRepo,
		Tolerance:   tolerance,
		Log:         log.With().Str("service", "profile").Logger(),
	}
}

// AssessRisk classifies a survey score and stores the resulting risk type
func (s *ProfileService) AssessRisk(ctx context.Context, userID uuid.UUID, score int) (domain.RiskType, error) {
	riskType, ok := planner.DetermineRiskType(score)
	if !ok {
		return "", domain.NewError(domain.CodeInvalidRiskScore,
			fmt.Sprintf("risk score %d is outside [%d, %d]", score, planner.MinRiskScore, planner.MaxRiskScore))
	}

	if err := s.ProfileRepo.SetRiskType(ctx, userID, &riskType); err != nil {
		return "", domain.Internal(fmt.Errorf("failed to store risk type: %w", err))
	}

	s.Log.Debug().Str("user_id", userID.String()).Int("score", score).Str("risk_type", string(riskType)).Msg("risk assessed")
	return riskType, nil
}

// GetRiskType returns the stored risk type, nil when the user was never assessed
func (s *ProfileService) GetRiskType(ctx context.Context, userID uuid.UUID) (*domain.RiskType, error) {
	rt, err := s.ProfileRepo.GetRiskType(ctx, userID)
	if err != nil {
		return nil, domain.Internal(fmt.Errorf("failed to get risk type: %w", err))
	}
	return rt, nil
}

// ClearRiskType forgets the assessed risk type
func (s *ProfileService) ClearRiskType(ctx context.Context, userID uuid.UUID) error {
	if err := s.ProfileRepo.SetRiskType(ctx, userID, nil); err != nil {
		return domain.Internal(fmt.Errorf("failed to clear risk type: %w", err))
	}
	return nil
}

// CreatePlan validates a plan and stores it as the user's active plan.
// An existing active plan is superseded by the new version.
func (s *ProfileService) CreatePlan(ctx context.Context, plan domain.InvestmentPlan) (*domain.InvestmentPlan, error) {
	return s.replacePlan(ctx, plan)
}

// UpdatePlan supersedes the active plan with a new version.
//
// Logic:
//   - The user must have an active plan
//   - The previous version is deactivated, never modified
//   - The new version gets a fresh schedule; payments of old versions stay recorded
func (s *ProfileService) UpdatePlan(ctx context.Context, plan domain.InvestmentPlan) (*domain.InvestmentPlan, error) {
	if _, err := s.GetPlan(ctx, plan.UserID); err != nil {
		return nil, err
	}
	return s.replacePlan(ctx, plan)
}

func (s *ProfileService) replacePlan(ctx context.Context, plan domain.InvestmentPlan) (*domain.InvestmentPlan, error) {
	if err := plan.Validate(); err != nil {
		return nil, &domain.Error{Code: domain.CodeInvalidInvestmentPlan, Message: err.Error()}
	}
	if !planner.IsValidPlan(plan, s.Tolerance) {
		fv := planner.FutureValue(plan.InitialAmount, plan.MonthlyAmount, plan.Period, plan.ExpectedReturn)
		return nil, domain.NewError(domain.CodeInvalidInvestmentPlan,
			fmt.Sprintf("projected value %s does not reach target %s within %.2f%%", fv, plan.TargetAmount, s.Tolerance*100))
	}

	plan.ID = uuid.New()
	schedules := planner.GenerateSchedules(plan)
	if err := s.ProfileRepo.ReplaceActivePlan(ctx, &plan, schedules); err != nil {
		return nil, domain.Internal(fmt.Errorf("failed to store investment plan: %w", err))
	}

	s.Log.Info().
		Str("user_id", plan.UserID.String()).
		Str("plan_id", plan.ID.String()).
		Int("version", plan.Version).
		Int("schedules", len(schedules)).
		Msg("investment plan stored")
	return &plan, nil
}

// GetPlan returns the active plan of a user
func (s *ProfileService) GetPlan(ctx context.Context, userID uuid.UUID) (*domain.InvestmentPlan, error) {
	plan, err := s.ProfileRepo.GetActivePlan(ctx, userID)
	if err != nil {
		return nil, notFound(err, domain.CodePlanNotFound, "no active investment plan")
	}
	return plan, nil
}

// ClearPlan deactivates every plan of a user. Recorded payments are kept.
func (s *ProfileService) ClearPlan(ctx context.Context, userID uuid.UUID) error {
	if err := s.ProfileRepo.DeactivatePlans(ctx, userID); err != nil {
		return domain.Internal(fmt.Errorf("failed to deactivate plans: %w", err))
	}
	return nil
}

func notFound(err error, code domain.ErrorCode, message string) error {
	if domain.IsNotFound(err) {
		return &domain.Error{Code: code, Message: message, Err: err}
	}
	return domain.Internal(err)
}
