package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PortfolioReader defines the read side of portfolio persistence.
// Missing rows are reported as ErrNotFound.
type PortfolioReader interface {
	// GetPortfolioByUser retrieves the portfolio owned by a user
	GetPortfolioByUser(ctx context.Context, userID uuid.UUID) (*Portfolio, error)

	// GetPortfolio retrieves a portfolio by its ID
	GetPortfolio(ctx context.Context, id uuid.UUID) (*Portfolio, error)

	// ListCategories retrieves the categories of a portfolio ordered by creation
	ListCategories(ctx context.Context, portfolioID uuid.UUID) ([]Category, error)

	// GetCategory retrieves a category by its ID
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)

	// ListItems retrieves every item under a portfolio across all of its categories
	ListItems(ctx context.Context, portfolioID uuid.UUID) ([]Item, error)

	// GetItem retrieves an item by its ID
	GetItem(ctx context.Context, id uuid.UUID) (*Item, error)
}

// PortfolioTx is a portfolio store handle bound to one open transaction
type PortfolioTx interface {
	PortfolioReader

	// LockPortfolio takes a row lock on the portfolio for the rest of the transaction
	LockPortfolio(ctx context.Context, id uuid.UUID) error

	// UpsertPortfolio creates or replaces the portfolio row of p.UserID.
	// p.ID is set to the id of the stored row.
	UpsertPortfolio(ctx context.Context, p *Portfolio) error

	// DeleteCategories removes every category of a portfolio and their items
	DeleteCategories(ctx context.Context, portfolioID uuid.UUID) error

	InsertCategory(ctx context.Context, c *Category) error
	InsertItem(ctx context.Context, it *Item) error

	// DeleteCategory removes a category and cascades to its items
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	DeleteItem(ctx context.Context, id uuid.UUID) error

	UpdateCategoryPortion(ctx context.Context, id uuid.UUID, portion AbsolutePortion) error
	UpdateItemPortion(ctx context.Context, id uuid.UUID, portion AbsolutePortion) error

	// UpdatePortfolioMetrics writes the aggregate return bounds and customized flag
	UpdatePortfolioMetrics(ctx context.Context, id uuid.UUID, ret ExpectedReturn, customized bool) error

	// UpdateCategoryInfo applies a partial update; nil fields keep their value
	UpdateCategoryInfo(ctx context.Context, id uuid.UUID, info CategoryInfo) error

	// UpdateItemInfo applies a partial update and flags a custom return when one is supplied
	UpdateItemInfo(ctx context.Context, id uuid.UUID, info ItemInfo) error
}

// PortfolioRepository defines the interface for portfolio persistence operations
type PortfolioRepository interface {
	PortfolioReader

	// InTx runs fn inside a single transaction.
	// The transaction is committed when fn returns nil and rolled back otherwise.
	InTx(ctx context.Context, fn func(tx PortfolioTx) error) error
}

// CatalogRepository defines the interface for read-only reference data
type CatalogRepository interface {
	ListMasterCategories(ctx context.Context) ([]MasterCategory, error)
	GetMasterCategory(ctx context.Context, id uuid.UUID) (*MasterCategory, error)
	GetMasterCategoryByCode(ctx context.Context, code string) (*MasterCategory, error)

	// ListMasterItems retrieves the catalog items of one master category
	ListMasterItems(ctx context.Context, masterCategoryID uuid.UUID) ([]MasterItem, error)
	GetMasterItem(ctx context.Context, id uuid.UUID) (*MasterItem, error)

	// GetPresetByCode retrieves a preset with its category and item templates
	GetPresetByCode(ctx context.Context, code string) (*Preset, error)

	// FindPresetsNear retrieves presets ordered by the absolute distance between
	// their target return and targetPercent. Templates are not loaded.
	FindPresetsNear(ctx context.Context, targetPercent float64, limit int) ([]Preset, error)

	CreateMasterCategory(ctx context.Context, c *MasterCategory) error
	CreateMasterItem(ctx context.Context, it *MasterItem) error

	// CreatePreset stores a preset together with its templates
	CreatePreset(ctx context.Context, p *Preset) error
}

// ProfileRepository defines the interface for investment profile persistence operations
type ProfileRepository interface {
	// GetRiskType returns nil when the user has no assessed risk type
	GetRiskType(ctx context.Context, userID uuid.UUID) (*RiskType, error)

	// SetRiskType stores the risk type of a user, nil clears it
	SetRiskType(ctx context.Context, userID uuid.UUID, riskType *RiskType) error

	// GetActivePlan retrieves the active plan of a user
	GetActivePlan(ctx context.Context, userID uuid.UUID) (*InvestmentPlan, error)

	// ReplaceActivePlan deactivates the current plan of plan.UserID and stores plan
	// with its schedules in one transaction. plan.Version is set to previous version + 1.
	ReplaceActivePlan(ctx context.Context, plan *InvestmentPlan, schedules []PaymentSchedule) error

	// DeactivatePlans marks every plan of a user inactive
	DeactivatePlans(ctx context.Context, userID uuid.UUID) error
}

// PaymentRepository defines the interface for payment schedule persistence operations
type PaymentRepository interface {
	GetSchedule(ctx context.Context, id uuid.UUID) (*PaymentSchedule, error)

	// ListSchedules retrieves the schedules of a plan ordered by sequence
	ListSchedules(ctx context.Context, planID uuid.UUID) ([]PaymentSchedule, error)

	// MarkPaid records the actual payment of a schedule
	MarkPaid(ctx context.Context, id uuid.UUID, amount decimal.Decimal, paidAt time.Time) error

	// ListPaidByUser retrieves every paid schedule of a user across all plan versions
	ListPaidByUser(ctx context.Context, userID uuid.UUID) ([]PaymentSchedule, error)

	// MarkMissedBefore flags pending schedules of active plans expected before cutoff as missed
	// and returns the number of rows changed
	MarkMissedBefore(ctx context.Context, cutoff time.Time) (int, error)
}
