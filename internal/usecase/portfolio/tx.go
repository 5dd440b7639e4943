package portfolio

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/simaogato/folio-backend/internal/domain"
	"github.com/simaogato/folio-backend/internal/usecase/allocator"
)

// mutate loads the locked portfolio tree, lets fn change it and writes the result.
//
// Order of writes: fn's own inserts/deletes, category portions, item portions, then the
// portfolio aggregate row. Any error rolls the whole transaction back.
func (s *PortfolioService) mutate(ctx context.Context, portfolioID uuid.UUID, fn func(tx domain.PortfolioTx, tree *allocator.Tree) error) error {
	err := s.PortfolioRepo.InTx(ctx, func(tx domain.PortfolioTx) error {
		if err := s.lock(ctx, tx, portfolioID); err != nil {
			return err
		}

		p, err := tx.GetPortfolio(ctx, portfolioID)
		if err != nil {
			return lookupError(err, domain.CodePortfolioNotFound, "portfolio not found")
		}
		categories, err := tx.ListCategories(ctx, portfolioID)
		if err != nil {
			return fmt.Errorf("failed to list categories: %w", err)
		}
		items, err := tx.ListItems(ctx, portfolioID)
		if err != nil {
			return fmt.Errorf("failed to list items: %w", err)
		}

		tree := allocator.NewTree(*p, categories, items)
		if err := fn(tx, tree); err != nil {
			return err
		}
		return s.persist(ctx, tx, tree)
	})
	if err != nil {
		return domain.Internal(err)
	}

	s.Log.Debug().Str("portfolio_id", portfolioID.String()).Msg("portfolio allocation updated")
	return nil
}

func (s *PortfolioService) persist(ctx context.Context, tx domain.PortfolioTx, tree *allocator.Tree) error {
	changes := tree.Changes()
	for _, c := range changes.Categories {
		if err := tx.UpdateCategoryPortion(ctx, c.ID, domain.AbsolutePortion(c.Portion)); err != nil {
			return fmt.Errorf("failed to update category %s portion: %w", c.ID, err)
		}
	}
	for _, it := range changes.Items {
		if err := tx.UpdateItemPortion(ctx, it.ID, domain.AbsolutePortion(it.Portion)); err != nil {
			return fmt.Errorf("failed to update item %s portion: %w", it.ID, err)
		}
	}

	p := tree.Portfolio()
	if err := tx.UpdatePortfolioMetrics(ctx, p.ID, p.ExpectedReturn, p.IsCustomized); err != nil {
		return fmt.Errorf("failed to update portfolio metrics: %w", err)
	}
	return nil
}

func (s *PortfolioService) lock(ctx context.Context, tx domain.PortfolioTx, portfolioID uuid.UUID) error {
	if err := tx.LockPortfolio(ctx, portfolioID); err != nil {
		return lookupError(err, domain.CodePortfolioNotFound, "portfolio not found")
	}
	return nil
}

func (s *PortfolioService) loadTree(ctx context.Context, r domain.PortfolioReader, p domain.Portfolio) (*domain.PortfolioTree, error) {
	categories, err := r.ListCategories(ctx, p.ID)
	if err != nil {
		return nil, domain.Internal(fmt.Errorf("failed to list categories: %w", err))
	}
	items, err := r.ListItems(ctx, p.ID)
	if err != nil {
		return nil, domain.Internal(fmt.Errorf("failed to list items: %w", err))
	}
	return &domain.PortfolioTree{Portfolio: p, Categories: categories, Items: items}, nil
}

func (s *PortfolioService) ensurePortfolio(ctx context.Context, portfolioID uuid.UUID) error {
	if _, err := s.PortfolioRepo.GetPortfolio(ctx, portfolioID); err != nil {
		return lookupError(err, domain.CodePortfolioNotFound, "portfolio not found")
	}
	return nil
}

// categoryOf returns the category only when it belongs to the portfolio
func (s *PortfolioService) categoryOf(ctx context.Context, portfolioID, categoryID uuid.UUID) (*domain.Category, error) {
	if err := s.ensurePortfolio(ctx, portfolioID); err != nil {
		return nil, err
	}
	c, err := s.PortfolioRepo.GetCategory(ctx, categoryID)
	if err != nil || c.PortfolioID != portfolioID {
		return nil, lookupError(err, domain.CodeCategoryNotFound, "category not found")
	}
	return c, nil
}

// itemOf returns the item only when its category belongs to the portfolio
func (s *PortfolioService) itemOf(ctx context.Context, r domain.PortfolioReader, portfolioID, itemID uuid.UUID) (*domain.Item, error) {
	it, err := r.GetItem(ctx, itemID)
	if err != nil {
		return nil, lookupError(err, domain.CodeItemNotFound, "item not found")
	}
	c, err := r.GetCategory(ctx, it.CategoryID)
	if err != nil || c.PortfolioID != portfolioID {
		return nil, lookupError(err, domain.CodeItemNotFound, "item not found")
	}
	return it, nil
}

// verified checks the tree invariants after a full portion update succeeded.
// A broken invariant fails the transaction as an internal error.
func verified(tree *allocator.Tree, err error) error {
	if err != nil {
		return err
	}
	if err := tree.Verify(); err != nil {
		return fmt.Errorf("allocation invariant broken: %w", err)
	}
	return nil
}

// checkMasterItemFits rejects catalog items that belong to another master category or
// that the category already holds. masterCode is the code of the item's master category.
func checkMasterItemFits(category domain.Category, masterCode string, mi domain.MasterItem, held []domain.Item) error {
	if category.IsCustom() {
		return domain.NewError(domain.CodeInvalidDataForAddingItem, "custom categories only accept custom items")
	}
	if masterCode != category.Code {
		return domain.NewError(domain.CodeInvalidDataForAddingItem, fmt.Sprintf("master item belongs to category %s", masterCode))
	}

	for _, it := range held {
		if it.MasterItemID != nil && *it.MasterItemID == mi.ID {
			return domain.NewError(domain.CodeInvalidDataForAddingItem, "item is already in the category")
		}
	}
	return nil
}

// lookupError maps a missing row to the coded not-found error of the entity looked up.
// A nil err means the row exists but belongs to another owner.
func lookupError(err error, code domain.ErrorCode, message string) error {
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		return &domain.Error{Code: code, Message: message, Err: err}
	}
	return domain.Internal(err)
}
