package seeder

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/simaogato/folio-backend/internal/domain"
	"github.com/simaogato/folio-backend/internal/usecase/allocator"
)

// Fixed UUIDs for master categories (reference data, never mutated by users)
var (
	MC_STOCK       = uuid.MustParse("00000000-0000-0000-0001-000000000001")
	MC_BOND        = uuid.MustParse("00000000-0000-0000-0001-000000000002")
	MC_CASH        = uuid.MustParse("00000000-0000-0000-0001-000000000003")
	MC_ALTERNATIVE = uuid.MustParse("00000000-0000-0000-0001-000000000004")
)

// Fixed UUIDs for master items
var (
	MI_DOMESTIC_EQUITY = uuid.MustParse("00000000-0000-0000-0002-000000000001")
	MI_GLOBAL_EQUITY   = uuid.MustParse("00000000-0000-0000-0002-000000000002")
	MI_GOVERNMENT_BOND = uuid.MustParse("00000000-0000-0000-0002-000000000003")
	MI_CORPORATE_BOND  = uuid.MustParse("00000000-0000-0000-0002-000000000004")
	MI_MMF             = uuid.MustParse("00000000-0000-0000-0002-000000000005")
	MI_DEPOSIT         = uuid.MustParse("00000000-0000-0000-0002-000000000006")
	MI_REIT            = uuid.MustParse("00000000-0000-0000-0002-000000000007")
	MI_GOLD            = uuid.MustParse("00000000-0000-0000-0002-000000000008")
)

// MasterCategories lists the seeded master categories
func MasterCategories() []domain.MasterCategory {
	return []domain.MasterCategory{
		{ID: MC_STOCK, Code: "STOCK", Name: "Stocks", Description: "Listed equity funds"},
		{ID: MC_BOND, Code: "BOND", Name: "Bonds", Description: "Government and corporate fixed income"},
		{ID: MC_CASH, Code: "CASH", Name: "Cash", Description: "Deposits and money market funds"},
		{ID: MC_ALTERNATIVE, Code: "ALTERNATIVE", Name: "Alternatives", Description: "Real estate and commodities"},
	}
}

// MasterItems lists the seeded catalog items
func MasterItems() []domain.MasterItem {
	return []domain.MasterItem{
		{ID: MI_DOMESTIC_EQUITY, MasterCategoryID: MC_STOCK, Name: "Domestic Equity ETF", ExpectedReturn: domain.ExpectedReturn{Min: 0.05, Max: 0.12}},
		{ID: MI_GLOBAL_EQUITY, MasterCategoryID: MC_STOCK, Name: "Global Equity ETF", ExpectedReturn: domain.ExpectedReturn{Min: 0.06, Max: 0.14}},
		{ID: MI_GOVERNMENT_BOND, MasterCategoryID: MC_BOND, Name: "Government Bond Fund", ExpectedReturn: domain.ExpectedReturn{Min: 0.025, Max: 0.04}},
		{ID: MI_CORPORATE_BOND, MasterCategoryID: MC_BOND, Name: "Corporate Bond Fund", ExpectedReturn: domain.ExpectedReturn{Min: 0.035, Max: 0.055}},
		{ID: MI_MMF, MasterCategoryID: MC_CASH, Name: "Money Market Fund", ExpectedReturn: domain.ExpectedReturn{Min: 0.02, Max: 0.03}},
		{ID: MI_DEPOSIT, MasterCategoryID: MC_CASH, Name: "Term Deposit", ExpectedReturn: domain.ExpectedReturn{Min: 0.025, Max: 0.035}},
		{ID: MI_REIT, MasterCategoryID: MC_ALTERNATIVE, Name: "REIT Fund", ExpectedReturn: domain.ExpectedReturn{Min: 0.04, Max: 0.09}},
		{ID: MI_GOLD, MasterCategoryID: MC_ALTERNATIVE, Name: "Gold ETF", ExpectedReturn: domain.ExpectedReturn{Min: 0.0, Max: 0.08}},
	}
}

type presetEntry struct {
	itemID  uuid.UUID
	portion domain.AbsolutePortion
}

type presetTemplate struct {
	id            uuid.UUID
	code          string
	name          string
	description   string
	targetPercent float64
	entries       []presetEntry
}

func presetTemplates() []presetTemplate {
	return []presetTemplate{
		{
			id: uuid.MustParse("00000000-0000-0000-0003-000000000001"), code: string(domain.RiskTypeStable),
			name: "Stable", description: "Capital preservation first", targetPercent: 3,
			entries: []presetEntry{
				{MI_GOVERNMENT_BOND, 0.4}, {MI_CORPORATE_BOND, 0.2}, {MI_DEPOSIT, 0.2}, {MI_MMF, 0.1}, {MI_DOMESTIC_EQUITY, 0.1},
			},
		},
		{
			id: uuid.MustParse("00000000-0000-0000-0003-000000000002"), code: string(domain.RiskTypeStableSeek),
			name: "Stability Seeking", description: "Mostly fixed income with some growth", targetPercent: 4.5,
			entries: []presetEntry{
				{MI_GOVERNMENT_BOND, 0.3}, {MI_CORPORATE_BOND, 0.2}, {MI_DEPOSIT, 0.1}, {MI_DOMESTIC_EQUITY, 0.15}, {MI_GLOBAL_EQUITY, 0.15}, {MI_REIT, 0.1},
			},
		},
		{
			id: uuid.MustParse("00000000-0000-0000-0003-000000000003"), code: string(domain.RiskTypeNeutral),
			name: "Balanced", description: "Even mix of growth and income", targetPercent: 6,
			entries: []presetEntry{
				{MI_GOVERNMENT_BOND, 0.2}, {MI_CORPORATE_BOND, 0.15}, {MI_DOMESTIC_EQUITY, 0.2}, {MI_GLOBAL_EQUITY, 0.25}, {MI_REIT, 0.1}, {MI_GOLD, 0.05}, {MI_MMF, 0.05},
			},
		},
		{
			id: uuid.MustParse("00000000-0000-0000-0003-000000000004"), code: string(domain.RiskTypeActive),
			name: "Active", description: "Growth oriented", targetPercent: 7.5,
			entries: []presetEntry{
				{MI_GOVERNMENT_BOND, 0.1}, {MI_CORPORATE_BOND, 0.1}, {MI_DOMESTIC_EQUITY, 0.25}, {MI_GLOBAL_EQUITY, 0.35}, {MI_REIT, 0.1}, {MI_GOLD, 0.1},
			},
		},
		{
			id: uuid.MustParse("00000000-0000-0000-0003-000000000005"), code: string(domain.RiskTypeAggressive),
			name: "Aggressive", description: "Maximum long-term growth", targetPercent: 9,
			entries: []presetEntry{
				{MI_CORPORATE_BOND, 0.05}, {MI_DOMESTIC_EQUITY, 0.3}, {MI_GLOBAL_EQUITY, 0.5}, {MI_REIT, 0.1}, {MI_GOLD, 0.05},
			},
		},
	}
}

// Presets builds the seeded presets. Category portions are the sums of their items and
// the expected return is the weighted return of the items.
func Presets() ([]domain.Preset, error) {
	categories := make(map[uuid.UUID]domain.MasterCategory)
	for _, mc := range MasterCategories() {
		categories[mc.ID] = mc
	}
	items := make(map[uuid.UUID]domain.MasterItem)
	for _, mi := range MasterItems() {
		items[mi.ID] = mi
	}

	out := make([]domain.Preset, 0, 5)
	for _, tpl := range presetTemplates() {
		p := domain.Preset{
			ID:                  tpl.id,
			Code:                tpl.code,
			Name:                tpl.name,
			Description:         tpl.description,
			TargetReturnPercent: tpl.targetPercent,
		}

		index := make(map[string]int)
		weighted := make([]domain.Item, 0, len(tpl.entries))
		for _, e := range tpl.entries {
			mi, ok := items[e.itemID]
			if !ok {
				return nil, fmt.Errorf("preset %s references unknown master item %s", tpl.code, e.itemID)
			}
			mc := categories[mi.MasterCategoryID]

			i, ok := index[mc.Code]
			if !ok {
				i = len(p.Categories)
				index[mc.Code] = i
				p.Categories = append(p.Categories, domain.PresetCategory{
					MasterCategoryID: mc.ID,
					Code:             mc.Code,
					Name:             mc.Name,
					Description:      mc.Description,
				})
			}
			p.Categories[i].Portion += e.portion
			p.Items = append(p.Items, domain.PresetItem{MasterItemID: mi.ID, CategoryCode: mc.Code, Portion: e.portion})
			weighted = append(weighted, domain.Item{Portion: e.portion, ExpectedReturn: mi.ExpectedReturn})
		}
		p.ExpectedReturn = allocator.WeightedReturnBounds(weighted)

		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("preset %s: %w", tpl.code, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// CatalogSeeder handles seeding of the read-only reference data
type CatalogSeeder struct {
	repo domain.CatalogRepository
	log  zerolog.Logger
}

// NewCatalogSeeder creates a new CatalogSeeder instance
func NewCatalogSeeder(repo domain.CatalogRepository, log zerolog.Logger) *CatalogSeeder {
	return &CatalogSeeder{
		repo: repo,
		log:  log,
	}
}

// Seed ensures the master catalog and presets exist.
// Rows that already exist are left untouched.
func (s *CatalogSeeder) Seed(ctx context.Context) error {
	created := 0

	for _, mc := range MasterCategories() {
		_, err := s.repo.GetMasterCategory(ctx, mc.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("failed to check master category %s: %w", mc.Code, err)
		}
		if err := s.repo.CreateMasterCategory(ctx, &mc); err != nil {
			return fmt.Errorf("failed to create master category %s: %w", mc.Code, err)
		}
		created++
	}

	for _, mi := range MasterItems() {
		_, err := s.repo.GetMasterItem(ctx, mi.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("failed to check master item %s: %w", mi.Name, err)
		}
		if err := mi.ExpectedReturn.Validate(); err != nil {
			return fmt.Errorf("master item %s: %w", mi.Name, err)
		}
		if err := s.repo.CreateMasterItem(ctx, &mi); err != nil {
			return fmt.Errorf("failed to create master item %s: %w", mi.Name, err)
		}
		created++
	}

	presets, err := Presets()
	if err != nil {
		return err
	}
	for _, p := range presets {
		_, err := s.repo.GetPresetByCode(ctx, p.Code)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("failed to check preset %s: %w", p.Code, err)
		}
		if err := s.repo.CreatePreset(ctx, &p); err != nil {
			return fmt.Errorf("failed to create preset %s: %w", p.Code, err)
		}
		created++
	}

	s.log.Info().Int("created", created).Msg("reference data seeded")
	return nil
}
