package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/simaogato/folio-backend/internal/domain"
)

// DefaultJobTimeout bounds a single sweep
const DefaultJobTimeout = 30 * time.Second

// MissedPaymentsJob flags pending schedules whose expected date is older than the grace
// period as MISSED
type MissedPaymentsJob struct {
	repo      domain.PaymentRepository
	graceDays int
	timeout   time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

// MissedPaymentsConfig holds configuration for the missed payments job
type MissedPaymentsConfig struct {
	Repo      domain.PaymentRepository
	GraceDays int
	Log       zerolog.Logger
}

// NewMissedPaymentsJob creates a new missed payments job
func NewMissedPaymentsJob(cfg MissedPaymentsConfig) *MissedPaymentsJob {
	grace := cfg.GraceDays
	if grace < 0 {
		grace = 0
	}
	return &MissedPaymentsJob{
		repo:      cfg.Repo,
		graceDays: grace,
		timeout:   DefaultJobTimeout,
		now:       time.Now,
		log:       cfg.Log.With().Str("job", "missed_payments").Logger(),
	}
}

// Name returns the job name
func (j *MissedPaymentsJob) Name() string {
	return "missed_payments"
}

// Run executes one sweep
func (j *MissedPaymentsJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	now := j.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	cutoff := today.AddDate(0, 0, -j.graceDays)

	changed, err := j.repo.MarkMissedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to mark missed payments: %w", err)
	}

	j.log.Info().Time("cutoff", cutoff).Int("missed", changed).Msg("missed payments swept")
	return nil
}
