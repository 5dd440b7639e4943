package payment

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/folio-backend/internal/adapter/repository/memory"
	"github.com/simaogato/folio-backend/internal/domain"
	"github.com/simaogato/folio-backend/internal/usecase/planner"
	"github.com/simaogato/folio-backend/internal/usecase/portfolio"
	"github.com/simaogato/folio-backend/internal/usecase/seeder"
)

type testEnv struct {
	store      *memory.Store
	service    *PaymentService
	payments   *memory.PaymentRepository
	profiles   *memory.ProfileRepository
	portfolios *memory.PortfolioRepository
	userID     uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	env := &testEnv{
		store:      store,
		payments:   memory.NewPaymentRepository(store),
		profiles:   memory.NewProfileRepository(store),
		portfolios: memory.NewPortfolioRepository(store),
		userID:     uuid.New(),
	}
	env.service = NewPaymentService(env.payments, env.profiles, env.portfolios, "KRW", zerolog.Nop())
	return env
}

// storePlan stores a 12 month plan starting on 2026-01-10 with its schedules
func (e *testEnv) storePlan(t *testing.T) (*domain.InvestmentPlan, []domain.PaymentSchedule) {
	t.Helper()
	plan := &domain.InvestmentPlan{
		ID:             uuid.New(),
		UserID:         e.userID,
		MonthlyAmount:  decimal.NewFromInt(100000),
		StartDate:      time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC),
		PaymentDay:     10,
		Period:         12,
		ExpectedReturn: decimal.NewFromFloat(0.06),
		TargetAmount:   decimal.NewFromInt(1233556),
	}
	schedules := planner.GenerateSchedules(*plan)
	require.NoError(t, e.profiles.ReplaceActivePlan(context.Background(), plan, schedules))
	return plan, schedules
}

func (e *testEnv) pay(t *testing.T, schedules []domain.PaymentSchedule, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := e.service.RecordPayment(context.Background(), e.userID, schedules[i].ID, decimal.NewFromInt(100000), schedules[i].ExpectedDate)
		require.NoError(t, err)
	}
}

func TestRecordPayment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, schedules := env.storePlan(t)

	paidAt := time.Date(2026, time.January, 11, 9, 0, 0, 0, time.UTC)
	got, err := env.service.RecordPayment(ctx, env.userID, schedules[0].ID, decimal.NewFromInt(120000), paidAt)

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, got.Status)
	assert.True(t, got.ActualPaidAmount.Equal(decimal.NewFromInt(120000)))
	assert.Equal(t, paidAt, *got.ActualPaidDate)

	paid, err := env.service.GetPaidPayments(ctx, env.userID)
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, schedules[0].ID, paid[0].ID)

	_, err = env.service.RecordPayment(ctx, env.userID, schedules[0].ID, decimal.NewFromInt(1), paidAt)
	assert.Equal(t, domain.CodeInvalidPayment, domain.CodeOf(err))
}

func TestRecordPayment_Rejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, schedules := env.storePlan(t)

	_, err := env.service.RecordPayment(ctx, env.userID, schedules[0].ID, decimal.Zero, time.Now())
	assert.Equal(t, domain.CodeInvalidPayment, domain.CodeOf(err))

	_, err = env.service.RecordPayment(ctx, env.userID, uuid.New(), decimal.NewFromInt(1), time.Now())
	assert.Equal(t, domain.CodePaymentScheduleNotFound, domain.CodeOf(err))

	// schedules of another user's plan are invisible
	_, err = env.service.RecordPayment(ctx, uuid.New(), schedules[0].ID, decimal.NewFromInt(1), time.Now())
	assert.Equal(t, domain.CodePlanNotFound, domain.CodeOf(err))
}

func TestRecordPayment_SupersededPlan(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, old := env.storePlan(t)
	_, current := env.storePlan(t)

	_, err := env.service.RecordPayment(ctx, env.userID, old[0].ID, decimal.NewFromInt(1), time.Now())
	assert.Equal(t, domain.CodePaymentScheduleNotFound, domain.CodeOf(err))

	schedules, err := env.service.GetSchedules(ctx, env.userID)
	require.NoError(t, err)
	require.Len(t, schedules, 12)
	assert.Equal(t, current[0].ID, schedules[0].ID)
}

func TestGetProgress_PlanReturn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, schedules := env.storePlan(t)
	env.pay(t, schedules, 3)

	progress, err := env.service.GetProgress(ctx, env.userID)

	require.NoError(t, err)
	assert.True(t, progress.TotalPrincipal.Equal(decimal.NewFromInt(300000)), progress.TotalPrincipal.String())
	// 300000 * (1 + 0.06 * 3 / 12)
	assert.True(t, progress.CurrentAssetValue.Equal(decimal.NewFromInt(304500)), progress.CurrentAssetValue.String())
	assert.True(t, progress.TotalReturnAmount.Equal(decimal.NewFromInt(4500)))
	assert.True(t, progress.TotalReturnRate.Equal(decimal.RequireFromString("1.5")), progress.TotalReturnRate.String())
	assert.True(t, progress.TotalProgressRate.Equal(decimal.RequireFromString("24.68")), progress.TotalProgressRate.String())
	assert.Equal(t, 3, progress.PaidCount)
	assert.Equal(t, 9, progress.RemainingPeriod)
	assert.Equal(t, "KRW", progress.Currency)
	assert.Equal(t, money.New(304500, "KRW").Display(), progress.Display.CurrentAssetValue)
	assert.Equal(t, money.New(1233556, "KRW").Display(), progress.Display.TargetAmount)
}

func TestGetProgress_NoPayments(t *testing.T) {
	env := newTestEnv(t)
	env.storePlan(t)

	progress, err := env.service.GetProgress(context.Background(), env.userID)

	require.NoError(t, err)
	assert.True(t, progress.TotalPrincipal.IsZero())
	assert.True(t, progress.TotalReturnRate.IsZero())
	assert.True(t, progress.TotalProgressRate.IsZero())
	assert.Equal(t, 12, progress.RemainingPeriod)
}

func TestGetProgress_PortfolioReturn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	catalog := memory.NewCatalogRepository(env.store)
	require.NoError(t, seeder.NewCatalogSeeder(catalog, zerolog.Nop()).Seed(ctx))
	portfolios := portfolio.NewPortfolioService(env.portfolios, catalog, env.profiles, zerolog.Nop())
	tree, err := portfolios.CreateFromPreset(ctx, env.userID, string(domain.RiskTypeNeutral))
	require.NoError(t, err)

	_, schedules := env.storePlan(t)
	env.pay(t, schedules, 6)

	progress, err := env.service.GetProgress(ctx, env.userID)
	require.NoError(t, err)

	mid := decimal.NewFromFloat(tree.ExpectedReturn.Min).Add(decimal.NewFromFloat(tree.ExpectedReturn.Max)).Div(decimal.NewFromInt(2))
	want := decimal.NewFromInt(600000).Mul(decimal.NewFromInt(1).Add(mid.Mul(decimal.NewFromInt(6)).Div(decimal.NewFromInt(12)))).Round(0)
	assert.True(t, progress.CurrentAssetValue.Equal(want), "got %s want %s", progress.CurrentAssetValue, want)
}

func TestGetProgress_CountsEveryPlanVersion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, first := env.storePlan(t)
	env.pay(t, first, 2)
	_, second := env.storePlan(t)
	env.pay(t, second, 1)

	progress, err := env.service.GetProgress(ctx, env.userID)

	require.NoError(t, err)
	assert.Equal(t, 3, progress.PaidCount)
	assert.True(t, progress.TotalPrincipal.Equal(decimal.NewFromInt(300000)))
}

func TestGetProgress_NoPlan(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.GetProgress(context.Background(), env.userID)

	assert.Equal(t, domain.CodePlanNotFound, domain.CodeOf(err))
}

func TestFormat(t *testing.T) {
	tests := []struct {
		amount   decimal.Decimal
		currency string
		want     string
	}{
		{amount: decimal.RequireFromString("1234.5"), currency: "USD", want: money.New(123450, "USD").Display()},
		{amount: decimal.NewFromInt(1500000), currency: "KRW", want: money.New(1500000, "KRW").Display()},
		{amount: decimal.NewFromInt(42), currency: "NOPE", want: "42"},
	}

	for _, tt := range tests {
		t.Run(tt.currency, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.amount, tt.currency))
		})
	}
}

func TestNewPaymentService_UnknownCurrency(t *testing.T) {
	service := NewPaymentService(nil, nil, nil, "XXX-NOT-A-CURRENCY", zerolog.Nop())
	assert.Equal(t, DefaultCurrency, service.Currency)
}

// MockPaymentRepository is a mock implementation of PaymentRepository for testing
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) GetSchedule(ctx context.Context, id uuid.UUID) (*domain.PaymentSchedule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentSchedule), args.Error(1)
}

func (m *MockPaymentRepository) ListSchedules(ctx context.Context, planID uuid.UUID) ([]domain.PaymentSchedule, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentSchedule), args.Error(1)
}

func (m *MockPaymentRepository) MarkPaid(ctx context.Context, id uuid.UUID, amount decimal.Decimal, paidAt time.Time) error {
	args := m.Called(ctx, id, amount, paidAt)
	return args.Error(0)
}

func (m *MockPaymentRepository) ListPaidByUser(ctx context.Context, userID uuid.UUID) ([]domain.PaymentSchedule, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentSchedule), args.Error(1)
}

func (m *MockPaymentRepository) MarkMissedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	args := m.Called(ctx, cutoff)
	return args.Int(0), args.Error(1)
}

func TestMissedPaymentsJob(t *testing.T) {
	env := newTestEnv(t)
	_, schedules := env.storePlan(t)
	env.pay(t, schedules, 1)

	job := NewMissedPaymentsJob(MissedPaymentsConfig{Repo: env.payments, GraceDays: 3, Log: zerolog.Nop()})
	job.now = func() time.Time { return time.Date(2026, time.April, 12, 15, 30, 0, 0, time.UTC) }

	require.NoError(t, job.Run())
	assert.Equal(t, "missed_payments", job.Name())

	got, err := env.service.GetSchedules(context.Background(), env.userID)
	require.NoError(t, err)
	statuses := make([]domain.PaymentStatus, 0, 4)
	for _, ps := range got[:4] {
		statuses = append(statuses, ps.Status)
	}
	// cutoff is 2026-04-09: February and March are missed, April is still within grace
	assert.Equal(t, []domain.PaymentStatus{
		domain.PaymentStatusPaid,
		domain.PaymentStatusMissed,
		domain.PaymentStatusMissed,
		domain.PaymentStatusPending,
	}, statuses)

	// a missed schedule can still be paid late
	_, err = env.service.RecordPayment(context.Background(), env.userID, got[1].ID, decimal.NewFromInt(100000), time.Now())
	assert.NoError(t, err)
}

func TestMissedPaymentsJob_StoreFailure(t *testing.T) {
	mockRepo := new(MockPaymentRepository)
	job := NewMissedPaymentsJob(MissedPaymentsConfig{Repo: mockRepo, GraceDays: 0, Log: zerolog.Nop()})
	job.now = func() time.Time { return time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC) }

	mockRepo.On("MarkMissedBefore", mock.Anything, time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)).
		Return(0, errors.New("deadlock detected"))

	err := job.Run()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "deadlock detected")
	mockRepo.AssertExpectations(t)
}

func TestGetPaidPayments_StoreFailure(t *testing.T) {
	mockRepo := new(MockPaymentRepository)
	service := NewPaymentService(mockRepo, nil, nil, "KRW", zerolog.Nop())
	userID := uuid.New()

	mockRepo.On("ListPaidByUser", mock.Anything, userID).Return(nil, fmt.Errorf("query: %w", errors.New("broken pipe")))

	_, err := service.GetPaidPayments(context.Background(), userID)

	assert.Equal(t, domain.CodeInternal, domain.CodeOf(err))
}
