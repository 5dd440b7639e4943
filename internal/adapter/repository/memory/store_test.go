package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/folio-backend/internal/domain"
)

func seedPortfolio(t *testing.T, repo *PortfolioRepository) (domain.Portfolio, domain.Category, domain.Item) {
	t.Helper()
	ctx := context.Background()

	p := domain.Portfolio{UserID: uuid.New(), Name: "Mine"}
	c := domain.Category{Code: "STOCK", Portion: 1}
	it := domain.Item{Name: "KOSPI200", Portion: 1}

	err := repo.InTx(ctx, func(tx domain.PortfolioTx) error {
		if err := tx.UpsertPortfolio(ctx, &p); err != nil {
			return err
		}
		c.PortfolioID = p.ID
		if err := tx.InsertCategory(ctx, &c); err != nil {
			return err
		}
		it.CategoryID = c.ID
		return tx.InsertItem(ctx, &it)
	})
	require.NoError(t, err)
	return p, c, it
}

func TestPortfolioRepository_InTxCommits(t *testing.T) {
	repo := NewPortfolioRepository(NewStore())
	p, c, it := seedPortfolio(t, repo)
	ctx := context.Background()

	got, err := repo.GetPortfolioByUser(ctx, p.UserID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	cats, err := repo.ListCategories(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.Category{c}, cats)

	items, err := repo.ListItems(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.Item{it}, items)
}

func TestPortfolioRepository_InTxRollsBack(t *testing.T) {
	repo := NewPortfolioRepository(NewStore())
	p, c, it := seedPortfolio(t, repo)
	ctx := context.Background()
	boom := errors.New("boom")

	err := repo.InTx(ctx, func(tx domain.PortfolioTx) error {
		require.NoError(t, tx.UpdateCategoryPortion(ctx, c.ID, 0.5))
		require.NoError(t, tx.DeleteItem(ctx, it.ID))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := repo.GetCategory(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AbsolutePortion(1), got.Portion)

	items, err := repo.ListItems(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestPortfolioRepository_DeleteCategoryCascades(t *testing.T) {
	repo := NewPortfolioRepository(NewStore())
	p, c, it := seedPortfolio(t, repo)
	ctx := context.Background()

	require.NoError(t, repo.InTx(ctx, func(tx domain.PortfolioTx) error {
		return tx.DeleteCategory(ctx, c.ID)
	}))

	_, err := repo.GetItem(ctx, it.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	items, err := repo.ListItems(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestPortfolioRepository_UpsertKeepsUserPortfolio(t *testing.T) {
	repo := NewPortfolioRepository(NewStore())
	p, _, _ := seedPortfolio(t, repo)
	ctx := context.Background()

	again := domain.Portfolio{UserID: p.UserID, Name: "Replaced"}
	require.NoError(t, repo.InTx(ctx, func(tx domain.PortfolioTx) error {
		return tx.UpsertPortfolio(ctx, &again)
	}))
	assert.Equal(t, p.ID, again.ID)

	got, err := repo.GetPortfolio(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Replaced", got.Name)
}

func TestPortfolioRepository_UpdateItemInfoIsPartial(t *testing.T) {
	repo := NewPortfolioRepository(NewStore())
	_, _, it := seedPortfolio(t, repo)
	ctx := context.Background()

	name := "Renamed"
	ret := domain.ExpectedReturn{Min: 0.01, Max: 0.02}
	require.NoError(t, repo.InTx(ctx, func(tx domain.PortfolioTx) error {
		return tx.UpdateItemInfo(ctx, it.ID, domain.ItemInfo{Name: &name, ExpectedReturn: &ret})
	}))

	got, err := repo.GetItem(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, it.Description, got.Description)
	assert.Equal(t, ret, got.ExpectedReturn)
	assert.True(t, got.IsCustomReturn)
}

func TestPortfolioRepository_NotFound(t *testing.T) {
	repo := NewPortfolioRepository(NewStore())
	ctx := context.Background()

	_, err := repo.GetPortfolioByUser(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = repo.InTx(ctx, func(tx domain.PortfolioTx) error {
		return tx.LockPortfolio(ctx, uuid.New())
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalogRepository_FindPresetsNear(t *testing.T) {
	repo := NewCatalogRepository(NewStore())
	ctx := context.Background()

	for code, target := range map[string]float64{"A": 3, "B": 5, "C": 7, "D": 9, "E": 12} {
		require.NoError(t, repo.CreatePreset(ctx, &domain.Preset{Code: code, TargetReturnPercent: target}))
	}

	got, err := repo.FindPresetsNear(ctx, 6.5, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "C", got[0].Code)
	assert.Equal(t, "B", got[1].Code)
	assert.Equal(t, "D", got[2].Code)
}

func TestProfileRepository_ReplaceActivePlanVersions(t *testing.T) {
	s := NewStore()
	profiles := NewProfileRepository(s)
	payments := NewPaymentRepository(s)
	ctx := context.Background()
	userID := uuid.New()

	first := &domain.InvestmentPlan{UserID: userID, MonthlyAmount: decimal.NewFromInt(1000)}
	firstSchedule := domain.PaymentSchedule{ID: uuid.New(), Sequence: 1, Status: domain.PaymentStatusPending}
	require.NoError(t, profiles.ReplaceActivePlan(ctx, first, []domain.PaymentSchedule{firstSchedule}))
	assert.Equal(t, 1, first.Version)

	second := &domain.InvestmentPlan{UserID: userID, MonthlyAmount: decimal.NewFromInt(2000)}
	require.NoError(t, profiles.ReplaceActivePlan(ctx, second, nil))
	assert.Equal(t, 2, second.Version)

	active, err := profiles.GetActivePlan(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	schedules, err := payments.ListSchedules(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, first.ID, schedules[0].PlanID)

	require.NoError(t, profiles.DeactivatePlans(ctx, userID))
	_, err = profiles.GetActivePlan(ctx, userID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPaymentRepository_MarkPaidAndMissed(t *testing.T) {
	s := NewStore()
	profiles := NewProfileRepository(s)
	payments := NewPaymentRepository(s)
	ctx := context.Background()
	userID := uuid.New()

	past := domain.PaymentSchedule{ID: uuid.New(), Sequence: 1, ExpectedDate: time.Date(2026, 1, 25, 0, 0, 0, 0, time.UTC), Status: domain.PaymentStatusPending}
	late := domain.PaymentSchedule{ID: uuid.New(), Sequence: 2, ExpectedDate: time.Date(2026, 2, 25, 0, 0, 0, 0, time.UTC), Status: domain.PaymentStatusPending}
	future := domain.PaymentSchedule{ID: uuid.New(), Sequence: 3, ExpectedDate: time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC), Status: domain.PaymentStatusPending}
	plan := &domain.InvestmentPlan{UserID: userID}
	require.NoError(t, profiles.ReplaceActivePlan(ctx, plan, []domain.PaymentSchedule{past, late, future}))

	paidAt := time.Date(2026, 1, 26, 0, 0, 0, 0, time.UTC)
	require.NoError(t, payments.MarkPaid(ctx, past.ID, decimal.NewFromInt(1000), paidAt))

	changed, err := payments.MarkMissedBefore(ctx, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	got, err := payments.GetSchedule(ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusMissed, got.Status)

	paid, err := payments.ListPaidByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.True(t, paid[0].ActualPaidAmount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, paidAt.Equal(*paid[0].ActualPaidDate))

	assert.ErrorIs(t, payments.MarkPaid(ctx, uuid.New(), decimal.Zero, paidAt), domain.ErrNotFound)
}
