package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/folio-backend/internal/domain"
)

const planColumns = `id, user_id, version, initial_amount, monthly_amount, start_date, payment_day,
	period, expected_return, target_amount, is_active, created_at`

// ProfileRepository implements domain.ProfileRepository
type ProfileRepository struct {
	db *DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetRiskType(ctx context.Context, userID uuid.UUID) (*domain.RiskType, error) {
	var rt domain.RiskType
	err := r.db.QueryRowContext(ctx, `SELECT risk_type FROM user_risk_types WHERE user_id = $1`, userID).Scan(&rt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get risk type: %w", err)
	}
	return &rt, nil
}

func (r *ProfileRepository) SetRiskType(ctx context.Context, userID uuid.UUID, riskType *domain.RiskType) error {
	if riskType == nil {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM user_risk_types WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("failed to clear risk type: %w", err)
		}
		return nil
	}

	query := `
		INSERT INTO user_risk_types (user_id, risk_type, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET risk_type = EXCLUDED.risk_type, updated_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, userID, string(*riskType)); err != nil {
		return fmt.Errorf("failed to set risk type: %w", err)
	}
	return nil
}

func (r *ProfileRepository) GetActivePlan(ctx context.Context, userID uuid.UUID) (*domain.InvestmentPlan, error) {
	query := `SELECT ` + planColumns + ` FROM investment_plans WHERE user_id = $1 AND is_active`
	plan, err := scanPlan(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, scanError(err, fmt.Sprintf("active plan of user %s", userID))
	}
	return plan, nil
}

// ReplaceActivePlan locks the user's plans, deactivates them and inserts the next version
// with its schedules
func (r *ProfileRepository) ReplaceActivePlan(ctx context.Context, plan *domain.InvestmentPlan, schedules []domain.PaymentSchedule) error {
	return r.db.inTx(ctx, func(tx *sql.Tx) error {
		var version int
		err := tx.QueryRowContext(ctx, `
			SELECT COALESCE(MAX(version), 0)
			FROM (SELECT version FROM investment_plans WHERE user_id = $1 FOR UPDATE) v
		`, plan.UserID).Scan(&version)
		if err != nil {
			return fmt.Errorf("failed to read plan version: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `UPDATE investment_plans SET is_active = FALSE WHERE user_id = $1 AND is_active`, plan.UserID); err != nil {
			return fmt.Errorf("failed to deactivate plans: %w", err)
		}

		if plan.ID == uuid.Nil {
			plan.ID = uuid.New()
		}
		plan.Version = version + 1
		plan.IsActive = true

		err = tx.QueryRowContext(ctx, `
			INSERT INTO investment_plans (id, user_id, version, initial_amount, monthly_amount, start_date,
				payment_day, period, expected_return, target_amount, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE)
			RETURNING created_at
		`,
			plan.ID,
			plan.UserID,
			plan.Version,
			plan.InitialAmount.String(),
			plan.MonthlyAmount.String(),
			plan.StartDate,
			plan.PaymentDay,
			plan.Period,
			plan.ExpectedReturn.String(),
			plan.TargetAmount.String(),
		).Scan(&plan.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert plan: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO payment_schedules (id, plan_id, sequence, expected_date, amount, status)
			VALUES ($1, $2, $3, $4, $5, $6)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare schedule insert: %w", err)
		}
		defer stmt.Close()

		for _, s := range schedules {
			if _, err := stmt.ExecContext(ctx, s.ID, plan.ID, s.Sequence, s.ExpectedDate, s.Amount.String(), string(s.Status)); err != nil {
				return fmt.Errorf("failed to insert schedule %d: %w", s.Sequence, err)
			}
		}
		return nil
	})
}

func (r *ProfileRepository) DeactivatePlans(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE investment_plans SET is_active = FALSE WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to deactivate plans: %w", err)
	}
	return nil
}

func scanPlan(s scanner) (*domain.InvestmentPlan, error) {
	var p domain.InvestmentPlan
	var initialStr, monthlyStr, returnStr, targetStr string

	err := s.Scan(
		&p.ID,
		&p.UserID,
		&p.Version,
		&initialStr,
		&monthlyStr,
		&p.StartDate,
		&p.PaymentDay,
		&p.Period,
		&returnStr,
		&targetStr,
		&p.IsActive,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Parse NUMERIC columns
	if p.InitialAmount, err = decimal.NewFromString(initialStr); err != nil {
		return nil, fmt.Errorf("failed to parse initial_amount: %w", err)
	}
	if p.MonthlyAmount, err = decimal.NewFromString(monthlyStr); err != nil {
		return nil, fmt.Errorf("failed to parse monthly_amount: %w", err)
	}
	if p.ExpectedReturn, err = decimal.NewFromString(returnStr); err != nil {
		return nil, fmt.Errorf("failed to parse expected_return: %w", err)
	}
	if p.TargetAmount, err = decimal.NewFromString(targetStr); err != nil {
		return nil, fmt.Errorf("failed to parse target_amount: %w", err)
	}
	return &p, nil
}
