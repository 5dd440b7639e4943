package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/simaogato/folio-backend/internal/domain"
)

// ProfileRepository implements domain.ProfileRepository on a Store
type ProfileRepository struct {
	s *Store
}

// NewProfileRepository creates a new memory profile repository
func NewProfileRepository(s *Store) *ProfileRepository {
	return &ProfileRepository{s: s}
}

func (r *ProfileRepository) GetRiskType(ctx context.Context, userID uuid.UUID) (rt *domain.RiskType, err error) {
	err = r.s.read(func(st *state) error {
		if found, ok := st.riskTypes[userID]; ok {
			rt = &found
		}
		return nil
	})
	return rt, err
}

func (r *ProfileRepository) SetRiskType(ctx context.Context, userID uuid.UUID, riskType *domain.RiskType) error {
	return r.s.write(func(st *state) error {
		if riskType == nil {
			delete(st.riskTypes, userID)
			return nil
		}
		st.riskTypes[userID] = *riskType
		return nil
	})
}

func (r *ProfileRepository) GetActivePlan(ctx context.Context, userID uuid.UUID) (plan *domain.InvestmentPlan, err error) {
	err = r.s.read(func(st *state) error {
		for _, p := range st.plans {
			if p.UserID == userID && p.IsActive {
				plan = &p
				return nil
			}
		}
		return fmt.Errorf("active plan for user %s: %w", userID, domain.ErrNotFound)
	})
	return plan, err
}

func (r *ProfileRepository) ReplaceActivePlan(ctx context.Context, plan *domain.InvestmentPlan, schedules []domain.PaymentSchedule) error {
	return r.s.write(func(st *state) error {
		version := 0
		for id, p := range st.plans {
			if p.UserID != plan.UserID {
				continue
			}
			if p.Version > version {
				version = p.Version
			}
			p.IsActive = false
			st.plans[id] = p
		}

		if plan.ID == uuid.Nil {
			plan.ID = uuid.New()
		}
		plan.Version = version + 1
		plan.IsActive = true
		plan.CreatedAt = r.s.now()
		st.plans[plan.ID] = *plan

		for _, s := range schedules {
			s.PlanID = plan.ID
			st.schedules[s.ID] = cloneSchedule(s)
		}
		return nil
	})
}

func (r *ProfileRepository) DeactivatePlans(ctx context.Context, userID uuid.UUID) error {
	return r.s.write(func(st *state) error {
		for id, p := range st.plans {
			if p.UserID == userID {
				p.IsActive = false
				st.plans[id] = p
			}
		}
		return nil
	})
}
