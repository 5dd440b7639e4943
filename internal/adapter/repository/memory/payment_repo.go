package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/folio-backend/internal/domain"
)

// PaymentRepository implements domain.PaymentRepository on a Store
type PaymentRepository struct {
	s *Store
}

// NewPaymentRepository creates a new memory payment repository
func NewPaymentRepository(s *Store) *PaymentRepository {
	return &PaymentRepository{s: s}
}

func (r *PaymentRepository) GetSchedule(ctx context.Context, id uuid.UUID) (ps *domain.PaymentSchedule, err error) {
	err = r.s.read(func(st *state) error {
		found, ok := st.schedules[id]
		if !ok {
			return fmt.Errorf("payment schedule %s: %w", id, domain.ErrNotFound)
		}
		out := cloneSchedule(found)
		ps = &out
		return nil
	})
	return ps, err
}

func (r *PaymentRepository) ListSchedules(ctx context.Context, planID uuid.UUID) (out []domain.PaymentSchedule, err error) {
	err = r.s.read(func(st *state) error {
		out = st.schedulesWhere(func(ps domain.PaymentSchedule) bool { return ps.PlanID == planID })
		return nil
	})
	return out, err
}

func (r *PaymentRepository) MarkPaid(ctx context.Context, id uuid.UUID, amount decimal.Decimal, paidAt time.Time) error {
	return r.s.write(func(st *state) error {
		ps, ok := st.schedules[id]
		if !ok {
			return fmt.Errorf("failed to mark payment schedule %s paid: %w", id, domain.ErrNotFound)
		}
		ps.Status = domain.PaymentStatusPaid
		ps.ActualPaidAmount = &amount
		ps.ActualPaidDate = &paidAt
		st.schedules[id] = ps
		return nil
	})
}

func (r *PaymentRepository) ListPaidByUser(ctx context.Context, userID uuid.UUID) (out []domain.PaymentSchedule, err error) {
	err = r.s.read(func(st *state) error {
		out = st.schedulesWhere(func(ps domain.PaymentSchedule) bool {
			plan, ok := st.plans[ps.PlanID]
			return ok && plan.UserID == userID && ps.Status == domain.PaymentStatusPaid
		})
		return nil
	})
	return out, err
}

func (r *PaymentRepository) MarkMissedBefore(ctx context.Context, cutoff time.Time) (changed int, err error) {
	err = r.s.write(func(st *state) error {
		for id, ps := range st.schedules {
			plan, ok := st.plans[ps.PlanID]
			if !ok || !plan.IsActive || ps.Status != domain.PaymentStatusPending || !ps.ExpectedDate.Before(cutoff) {
				continue
			}
			ps.Status = domain.PaymentStatusMissed
			st.schedules[id] = ps
			changed++
		}
		return nil
	})
	return changed, err
}

func (st *state) schedulesWhere(keep func(domain.PaymentSchedule) bool) []domain.PaymentSchedule {
	out := make([]domain.PaymentSchedule, 0)
	for _, ps := range st.schedules {
		if keep(ps) {
			out = append(out, cloneSchedule(ps))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PlanID != out[j].PlanID {
			return out[i].ExpectedDate.Before(out[j].ExpectedDate)
		}
		return out[i].Sequence < out[j].Sequence
	})
	return out
}
