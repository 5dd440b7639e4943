package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/folio-backend/internal/domain"
)

const scheduleColumns = `s.id, s.plan_id, s.sequence, s.expected_date, s.amount, s.status,
	s.actual_paid_amount, s.actual_paid_date`

// PaymentRepository implements domain.PaymentRepository
type PaymentRepository struct {
	db *DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) GetSchedule(ctx context.Context, id uuid.UUID) (*domain.PaymentSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM payment_schedules s WHERE s.id = $1`
	ps, err := scanSchedule(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, scanError(err, fmt.Sprintf("payment schedule %s", id))
	}
	return ps, nil
}

func (r *PaymentRepository) ListSchedules(ctx context.Context, planID uuid.UUID) ([]domain.PaymentSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM payment_schedules s WHERE s.plan_id = $1 ORDER BY s.sequence`
	return r.list(ctx, query, planID)
}

func (r *PaymentRepository) MarkPaid(ctx context.Context, id uuid.UUID, amount decimal.Decimal, paidAt time.Time) error {
	query := `
		UPDATE payment_schedules
		SET status = $2, actual_paid_amount = $3, actual_paid_date = $4
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, string(domain.PaymentStatusPaid), amount.String(), paidAt)
	if err != nil {
		return fmt.Errorf("failed to mark schedule paid: %w", err)
	}
	return expectOne(res, fmt.Sprintf("payment schedule %s", id))
}

func (r *PaymentRepository) ListPaidByUser(ctx context.Context, userID uuid.UUID) ([]domain.PaymentSchedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM payment_schedules s
		JOIN investment_plans p ON p.id = s.plan_id
		WHERE p.user_id = $1 AND s.status = $2
		ORDER BY s.expected_date, s.sequence
	`
	return r.list(ctx, query, userID, string(domain.PaymentStatusPaid))
}

func (r *PaymentRepository) MarkMissedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	query := `
		UPDATE payment_schedules s
		SET status = $1
		FROM investment_plans p
		WHERE p.id = s.plan_id AND p.is_active AND s.status = $2 AND s.expected_date < $3
	`
	res, err := r.db.ExecContext(ctx, query, string(domain.PaymentStatusMissed), string(domain.PaymentStatusPending), cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to mark missed schedules: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return int(n), nil
}

func (r *PaymentRepository) list(ctx context.Context, query string, args ...any) ([]domain.PaymentSchedule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payment schedules: %w", err)
	}
	defer rows.Close()

	out := make([]domain.PaymentSchedule, 0)
	for rows.Next() {
		ps, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment schedule: %w", err)
		}
		out = append(out, *ps)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment schedules: %w", err)
	}
	return out, nil
}

func scanSchedule(s scanner) (*domain.PaymentSchedule, error) {
	var ps domain.PaymentSchedule
	var amountStr string
	var paidAmount sql.NullString
	var paidDate sql.NullTime

	err := s.Scan(
		&ps.ID,
		&ps.PlanID,
		&ps.Sequence,
		&ps.ExpectedDate,
		&amountStr,
		&ps.Status,
		&paidAmount,
		&paidDate,
	)
	if err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount: %w", err)
	}
	ps.Amount = amount

	// Parse actual_paid_amount (nullable)
	if paidAmount.Valid {
		paid, err := decimal.NewFromString(paidAmount.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse actual_paid_amount: %w", err)
		}
		ps.ActualPaidAmount = &paid
	}
	if paidDate.Valid {
		t := paidDate.Time
		ps.ActualPaidDate = &t
	}
	return &ps, nil
}
