package portfolio

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/simaogato/folio-backend/internal/domain"
	"github.com/simaogato/folio-backend/internal/usecase/allocator"
)

// DefaultRecommendationLimit is the number of presets returned by recommendation queries
const DefaultRecommendationLimit = 3

// PortfolioService handles portfolio reads and every allocation mutation.
// Each mutation runs in one store transaction that row-locks the portfolio first.
type PortfolioService struct {
	PortfolioRepo       domain.PortfolioRepository
	CatalogRepo         domain.CatalogRepository
	ProfileRepo         domain.ProfileRepository
	Log                 zerolog.Logger
	RecommendationLimit int
}

// NewPortfolioService creates a new PortfolioService instance
func NewPortfolioService(portfolioRepo domain.PortfolioRepository, catalogRepo domain.CatalogRepository, profileRepo domain.ProfileRepository, log zerolog.Logger) *PortfolioService {
	return &PortfolioService{
		PortfolioRepo:       portfolioRepo,
		CatalogRepo:         catalogRepo,
		ProfileRepo:         profileRepo,
		Log:                 log.With().Str("service", "portfolio").Logger(),
		RecommendationLimit: DefaultRecommendationLimit,
	}
}

// GetPortfolio returns the full tree of the user's portfolio
func (s *PortfolioService) GetPortfolio(ctx context.Context, userID uuid.UUID) (*domain.PortfolioTree, error) {
	p, err := s.PortfolioRepo.GetPortfolioByUser(ctx, userID)
	if err != nil {
		return nil, lookupError(err, domain.CodePortfolioNotFound, "portfolio not found")
	}
	return s.loadTree(ctx, s.PortfolioRepo, *p)
}

// GetPortfolioID resolves the portfolio owned by a user
func (s *PortfolioService) GetPortfolioID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	p, err := s.PortfolioRepo.GetPortfolioByUser(ctx, userID)
	if err != nil {
		return uuid.Nil, lookupError(err, domain.CodePortfolioNotFound, "portfolio not found")
	}
	return p.ID, nil
}

// GetCategories returns the categories of a portfolio
func (s *PortfolioService) GetCategories(ctx context.Context, portfolioID uuid.UUID) ([]domain.Category, error) {
	if err := s.ensurePortfolio(ctx, portfolioID); err != nil {
		return nil, err
	}
	categories, err := s.PortfolioRepo.ListCategories(ctx, portfolioID)
	if err != nil {
		return nil, domain.Internal(fmt.Errorf("failed to list categories: %w", err))
	}
	return categories, nil
}

// GetItemsAbsolute returns every item of a portfolio with portions relative to the whole
func (s *PortfolioService) GetItemsAbsolute(ctx context.Context, portfolioID uuid.UUID) ([]domain.Item, error) {
	if err := s.ensurePortfolio(ctx, portfolioID); err != nil {
		return nil, err
	}
	items, err := s.PortfolioRepo.ListItems(ctx, portfolioID)
	if err != nil {
		return nil, domain.Internal(fmt.Errorf("failed to list items: %w", err))
	}
	return items, nil
}

// GetItemsRelative returns the items of one category with portions relative to the category
func (s *PortfolioService) GetItemsRelative(ctx context.Context, portfolioID, categoryID uuid.UUID) ([]domain.RelativeItem, error) {
	category, err := s.categoryOf(ctx, portfolioID, categoryID)
	if err != nil {
		return nil, err
	}

	items, err := s.PortfolioRepo.ListItems(ctx, portfolioID)
	if err != nil {
		return nil, domain.Internal(fmt.Errorf("failed to list items: %w", err))
	}

	out := make([]domain.RelativeItem, 0, len(items))
	for _, it := range items {
		if it.CategoryID != categoryID {
			continue
		}
		out = append(out, domain.RelativeItem{Item: it, RelativePortion: it.Portion.Relative(category.Portion)})
	}
	return out, nil
}

// GetRecommendations returns the presets closest to the expected return of the user's active plan
func (s *PortfolioService) GetRecommendations(ctx context.Context, userID uuid.UUID) ([]domain.Preset, error) {
	plan, err := s.ProfileRepo.GetActivePlan(ctx, userID)
	if err != nil {
		return nil, lookupError(err, domain.CodePlanNotFound, "no active investment plan")
	}
	percent := plan.ExpectedReturn.InexactFloat64() * 100
	return s.FindPresetsNear(ctx, percent, s.RecommendationLimit)
}

// FindPresetsNear returns presets ordered by the distance of their target return to targetPercent
func (s *PortfolioService) FindPresetsNear(ctx context.Context, targetPercent float64, limit int) ([]domain.Preset, error) {
	if limit <= 0 {
		limit = DefaultRecommendationLimit
	}
	presets, err := s.CatalogRepo.FindPresetsNear(ctx, targetPercent, limit)
	if err != nil {
		return nil, domain.Internal(fmt.Errorf("failed to find presets: %w", err))
	}
	return presets, nil
}

// CreateFromPreset replaces the user's portfolio with a clone of a preset.
// The portfolio row is kept when it exists; every category and item is replaced.
func (s *PortfolioService) CreateFromPreset(ctx context.Context, userID uuid.UUID, presetCode string) (*domain.PortfolioTree, error) {
	preset, err := s.CatalogRepo.GetPresetByCode(ctx, presetCode)
	if err != nil {
		return nil, lookupError(err, domain.CodePresetNotFound, fmt.Sprintf("preset %q not found", presetCode))
	}

	masters := make(map[uuid.UUID]*domain.MasterItem, len(preset.Items))
	for _, pi := range preset.Items {
		if _, ok := masters[pi.MasterItemID]; ok {
			continue
		}
		mi, err := s.CatalogRepo.GetMasterItem(ctx, pi.MasterItemID)
		if err != nil {
			return nil, domain.Internal(fmt.Errorf("failed to get master item %s of preset %s: %w", pi.MasterItemID, preset.Code, err))
		}
		masters[pi.MasterItemID] = mi
	}

	var tree *domain.PortfolioTree
	err = s.PortfolioRepo.InTx(ctx, func(tx domain.PortfolioTx) error {
		p := domain.Portfolio{
			UserID:         userID,
			Name:           preset.Name,
			Description:    preset.Description,
			ExpectedReturn: preset.ExpectedReturn,
			IsCustomized:   false,
		}
		if err := tx.UpsertPortfolio(ctx, &p); err != nil {
			return fmt.Errorf("failed to upsert portfolio: %w", err)
		}
		if err := tx.DeleteCategories(ctx, p.ID); err != nil {
			return fmt.Errorf("failed to clear categories: %w", err)
		}

		categoryIDs := make(map[string]uuid.UUID, len(preset.Categories))
		for _, pc := range preset.Categories {
			c := domain.Category{
				ID:          uuid.New(),
				PortfolioID: p.ID,
				Code:        pc.Code,
				Name:        pc.Name,
				Description: pc.Description,
				Portion:     pc.Portion,
			}
			if err := tx.InsertCategory(ctx, &c); err != nil {
				return fmt.Errorf("failed to insert category %s: %w", pc.Code, err)
			}
			categoryIDs[pc.Code] = c.ID
		}

		for _, pi := range preset.Items {
			categoryID, ok := categoryIDs[pi.CategoryCode]
			if !ok {
				return fmt.Errorf("preset %s item references unknown category %s", preset.Code, pi.CategoryCode)
			}
			mi := masters[pi.MasterItemID]
			masterID := mi.ID
			it := domain.Item{
				ID:             uuid.New(),
				CategoryID:     categoryID,
				MasterItemID:   &masterID,
				Name:           mi.Name,
				Description:    mi.Description,
				Portion:        pi.Portion,
				ExpectedReturn: mi.ExpectedReturn,
			}
			if err := tx.InsertItem(ctx, &it); err != nil {
				return fmt.Errorf("failed to insert item %s: %w", mi.Name, err)
			}
		}

		tree, err = s.loadTree(ctx, tx, p)
		return err
	})
	if err != nil {
		return nil, domain.Internal(err)
	}

	s.Log.Info().Str("user_id", userID.String()).Str("preset", preset.Code).Str("portfolio_id", tree.ID.String()).Msg("portfolio created from preset")
	return tree, nil
}

// UpdateCategoryPortions sets category portions and propagates them to the items
func (s *PortfolioService) UpdateCategoryPortions(ctx context.Context, portfolioID uuid.UUID, updates []domain.PortionUpdate) error {
	return s.mutate(ctx, portfolioID, func(tx domain.PortfolioTx, tree *allocator.Tree) error {
		return verified(tree, tree.UpdateCategoryPortions(updates))
	})
}

// AddCategory adds a category from a master category or from custom info.
// The new category starts with portion 0.
func (s *PortfolioService) AddCategory(ctx context.Context, portfolioID uuid.UUID, src domain.NewCategorySource) (*domain.Category, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}

	category := domain.Category{ID: uuid.New(), PortfolioID: portfolioID, Code: domain.CategoryCodeCustom}
	if src.MasterCategoryID != nil {
		mc, err := s.CatalogRepo.GetMasterCategory(ctx, *src.MasterCategoryID)
		if err != nil {
			return nil, lookupError(err, domain.CodeCategoryNotFound, "master category not found")
		}
		category.Code = mc.Code
		category.Name = mc.Name
		category.Description = mc.Description
	} else {
		category.Name = src.Custom.Name
		category.Description = src.Custom.Description
	}

	err := s.mutate(ctx, portfolioID, func(tx domain.PortfolioTx, tree *allocator.Tree) error {
		if !category.IsCustom() {
			for _, c := range tree.Categories() {
				if c.Code == category.Code {
					return domain.NewError(domain.CodeInvalidDataForAddingCategory, fmt.Sprintf("category %s is already in the portfolio", c.Code))
				}
			}
		}
		tree.AddCategory(category)
		if err := tx.InsertCategory(ctx, &category); err != nil {
			return fmt.Errorf("failed to insert category: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	category.Portion = 0
	return &category, nil
}

// DeleteCategory removes a category with its items and redistributes its weight over
// the remaining categories and items
func (s *PortfolioService) DeleteCategory(ctx context.Context, portfolioID, categoryID uuid.UUID) error {
	return s.mutate(ctx, portfolioID, func(tx domain.PortfolioTx, tree *allocator.Tree) error {
		if err := tree.RemoveCategory(categoryID); err != nil {
			return err
		}
		if err := tx.DeleteCategory(ctx, categoryID); err != nil {
			return fmt.Errorf("failed to delete category: %w", err)
		}
		return nil
	})
}

// UpdateCategoryInfo changes the name and description of a category
func (s *PortfolioService) UpdateCategoryInfo(ctx context.Context, portfolioID, categoryID uuid.UUID, info domain.CategoryInfo) error {
	err := s.PortfolioRepo.InTx(ctx, func(tx domain.PortfolioTx) error {
		if err := s.lock(ctx, tx, portfolioID); err != nil {
			return err
		}
		c, err := tx.GetCategory(ctx, categoryID)
		if err != nil || c.PortfolioID != portfolioID {
			return lookupError(err, domain.CodeCategoryNotFound, "category not found")
		}
		if err := tx.UpdateCategoryInfo(ctx, categoryID, info); err != nil {
			return fmt.Errorf("failed to update category info: %w", err)
		}
		return nil
	})
	return domain.Internal(err)
}

// GetAvailableCategories returns the master categories not yet used by the portfolio
func (s *PortfolioService) GetAvailableCategories(ctx context.Context, portfolioID uuid.UUID) ([]domain.MasterCategory, error) {
	used, err := s.GetCategories(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	codes := make(map[string]struct{}, len(used))
	for _, c := range used {
		if !c.IsCustom() {
			codes[c.Code] = struct{}{}
		}
	}

	all, err := s.CatalogRepo.ListMasterCategories(ctx)
	if err != nil {
		return nil, domain.Internal(fmt.Errorf("failed to list master categories: %w", err))
	}
	out := make([]domain.MasterCategory, 0, len(all))
	for _, mc := range all {
		if _, ok := codes[mc.Code]; !ok {
			out = append(out, mc)
		}
	}
	return out, nil
}

// UpdateItemAbsolutePortions sets item portions of the whole portfolio and re-derives
// the category portions from them
func (s *PortfolioService) UpdateItemAbsolutePortions(ctx context.Context, portfolioID uuid.UUID, updates []domain.PortionUpdate) error {
	return s.mutate(ctx, portfolioID, func(tx domain.PortfolioTx, tree *allocator.Tree) error {
		return verified(tree, tree.UpdateItemAbsolutePortions(updates))
	})
}

// UpdateItemRelativePortions sets the items of one category by their share of the category
func (s *PortfolioService) UpdateItemRelativePortions(ctx context.Context, portfolioID, categoryID uuid.UUID, updates []domain.PortionUpdate) error {
	return s.mutate(ctx, portfolioID, func(tx domain.PortfolioTx, tree *allocator.Tree) error {
		return tree.UpdateItemRelativePortions(categoryID, updates)
	})
}

// AddItem adds an item to a category from a master item or from custom info.
// The new item starts with portion 0.
func (s *PortfolioService) AddItem(ctx context.Context, portfolioID, categoryID uuid.UUID, src domain.NewItemSource) (*domain.Item, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}

	item := domain.Item{ID: uuid.New(), CategoryID: categoryID}
	var (
		master     *domain.MasterItem
		masterCode string
	)
	if src.MasterItemID != nil {
		mi, err := s.CatalogRepo.GetMasterItem(ctx, *src.MasterItemID)
		if err != nil {
			return nil, lookupError(err, domain.CodeItemNotFound, "master item not found")
		}
		// Catalog reads stay outside the portfolio transaction
		mc, err := s.CatalogRepo.GetMasterCategory(ctx, mi.MasterCategoryID)
		if err != nil {
			return nil, domain.Internal(fmt.Errorf("failed to get master category of item: %w", err))
		}
		master = mi
		masterCode = mc.Code
		masterID := mi.ID
		item.MasterItemID = &masterID
		item.Name = mi.Name
		item.Description = mi.Description
		item.ExpectedReturn = mi.ExpectedReturn
	} else {
		item.Name = src.Custom.Name
		item.Description = src.Custom.Description
		item.ExpectedReturn = *src.Custom.ExpectedReturn
		item.IsCustom = true
		item.IsCustomReturn = true
	}

	err := s.mutate(ctx, portfolioID, func(tx domain.PortfolioTx, tree *allocator.Tree) error {
		category, ok := tree.Category(categoryID)
		if !ok {
			return domain.NewError(domain.CodeCategoryNotFound, "category not found")
		}
		if master != nil {
			if err := checkMasterItemFits(category, masterCode, *master, tree.ItemsOf(categoryID)); err != nil {
				return err
			}
		}
		if err := tree.AddItem(item); err != nil {
			return err
		}
		if err := tx.InsertItem(ctx, &item); err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	item.Portion = 0
	return &item, nil
}

// DeleteItem removes an item and redistributes its weight over the remaining items
func (s *PortfolioService) DeleteItem(ctx context.Context, portfolioID, itemID uuid.UUID) error {
	return s.mutate(ctx, portfolioID, func(tx domain.PortfolioTx, tree *allocator.Tree) error {
		if err := tree.RemoveItem(itemID); err != nil {
			return err
		}
		if err := tx.DeleteItem(ctx, itemID); err != nil {
			return fmt.Errorf("failed to delete item: %w", err)
		}
		return nil
	})
}

// UpdateItemInfo changes item metadata. Supplying an expected return marks it custom
// and refreshes the portfolio's aggregate return bounds.
func (s *PortfolioService) UpdateItemInfo(ctx context.Context, portfolioID, itemID uuid.UUID, info domain.ItemInfo) error {
	if info.ExpectedReturn != nil {
		if err := info.ExpectedReturn.Validate(); err != nil {
			return domain.NewError(domain.CodeInvalidDataForAddingItem, err.Error())
		}
	}

	if info.ExpectedReturn == nil {
		err := s.PortfolioRepo.InTx(ctx, func(tx domain.PortfolioTx) error {
			if err := s.lock(ctx, tx, portfolioID); err != nil {
				return err
			}
			if _, err := s.itemOf(ctx, tx, portfolioID, itemID); err != nil {
				return err
			}
			if err := tx.UpdateItemInfo(ctx, itemID, info); err != nil {
				return fmt.Errorf("failed to update item info: %w", err)
			}
			return nil
		})
		return domain.Internal(err)
	}

	return s.mutate(ctx, portfolioID, func(tx domain.PortfolioTx, tree *allocator.Tree) error {
		if err := tree.SetItemReturn(itemID, *info.ExpectedReturn); err != nil {
			return err
		}
		if err := tx.UpdateItemInfo(ctx, itemID, info); err != nil {
			return fmt.Errorf("failed to update item info: %w", err)
		}
		return nil
	})
}

// GetAvailableItems returns the catalog items of a category's master category that the
// category does not hold yet. Custom categories have no catalog.
func (s *PortfolioService) GetAvailableItems(ctx context.Context, portfolioID, categoryID uuid.UUID) ([]domain.MasterItem, error) {
	category, err := s.categoryOf(ctx, portfolioID, categoryID)
	if err != nil {
		return nil, err
	}
	if category.IsCustom() {
		return []domain.MasterItem{}, nil
	}

	mc, err := s.CatalogRepo.GetMasterCategoryByCode(ctx, category.Code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []domain.MasterItem{}, nil
		}
		return nil, domain.Internal(fmt.Errorf("failed to get master category: %w", err))
	}

	all, err := s.CatalogRepo.ListMasterItems(ctx, mc.ID)
	if err != nil {
		return nil, domain.Internal(fmt.Errorf("failed to list master items: %w", err))
	}
	items, err := s.PortfolioRepo.ListItems(ctx, portfolioID)
	if err != nil {
		return nil, domain.Internal(fmt.Errorf("failed to list items: %w", err))
	}

	held := make(map[uuid.UUID]struct{})
	for _, it := range items {
		if it.CategoryID == categoryID && it.MasterItemID != nil {
			held[*it.MasterItemID] = struct{}{}
		}
	}
	out := make([]domain.MasterItem, 0, len(all))
	for _, mi := range all {
		if _, ok := held[mi.ID]; !ok {
			out = append(out, mi)
		}
	}
	return out, nil
}
