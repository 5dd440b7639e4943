package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/simaogato/folio-backend/internal/domain"
)

// PortfolioRepository implements domain.PortfolioRepository on a Store
type PortfolioRepository struct {
	s *Store
}

// NewPortfolioRepository creates a new memory portfolio repository
func NewPortfolioRepository(s *Store) *PortfolioRepository {
	return &PortfolioRepository{s: s}
}

func (r *PortfolioRepository) GetPortfolioByUser(ctx context.Context, userID uuid.UUID) (p *domain.Portfolio, err error) {
	err = r.s.read(func(st *state) error {
		p, err = st.portfolioByUser(userID)
		return err
	})
	return p, err
}

func (r *PortfolioRepository) GetPortfolio(ctx context.Context, id uuid.UUID) (p *domain.Portfolio, err error) {
	err = r.s.read(func(st *state) error {
		p, err = st.portfolio(id)
		return err
	})
	return p, err
}

func (r *PortfolioRepository) ListCategories(ctx context.Context, portfolioID uuid.UUID) (out []domain.Category, err error) {
	err = r.s.read(func(st *state) error {
		out = st.listCategories(portfolioID)
		return nil
	})
	return out, err
}

func (r *PortfolioRepository) GetCategory(ctx context.Context, id uuid.UUID) (c *domain.Category, err error) {
	err = r.s.read(func(st *state) error {
		c, err = st.category(id)
		return err
	})
	return c, err
}

func (r *PortfolioRepository) ListItems(ctx context.Context, portfolioID uuid.UUID) (out []domain.Item, err error) {
	err = r.s.read(func(st *state) error {
		out = st.listItems(portfolioID)
		return nil
	})
	return out, err
}

func (r *PortfolioRepository) GetItem(ctx context.Context, id uuid.UUID) (it *domain.Item, err error) {
	err = r.s.read(func(st *state) error {
		it, err = st.item(id)
		return err
	})
	return it, err
}

// InTx runs fn against a private copy of the store that is published when fn returns nil
func (r *PortfolioRepository) InTx(ctx context.Context, fn func(tx domain.PortfolioTx) error) error {
	return r.s.write(func(st *state) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(&portfolioTx{st: st, s: r.s})
	})
}

type portfolioTx struct {
	st *state
	s  *Store
}

func (tx *portfolioTx) GetPortfolioByUser(ctx context.Context, userID uuid.UUID) (*domain.Portfolio, error) {
	return tx.st.portfolioByUser(userID)
}

func (tx *portfolioTx) GetPortfolio(ctx context.Context, id uuid.UUID) (*domain.Portfolio, error) {
	return tx.st.portfolio(id)
}

func (tx *portfolioTx) ListCategories(ctx context.Context, portfolioID uuid.UUID) ([]domain.Category, error) {
	return tx.st.listCategories(portfolioID), nil
}

func (tx *portfolioTx) GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return tx.st.category(id)
}

func (tx *portfolioTx) ListItems(ctx context.Context, portfolioID uuid.UUID) ([]domain.Item, error) {
	return tx.st.listItems(portfolioID), nil
}

func (tx *portfolioTx) GetItem(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	return tx.st.item(id)
}

// LockPortfolio only checks existence; the store serialises every writer
func (tx *portfolioTx) LockPortfolio(ctx context.Context, id uuid.UUID) error {
	_, err := tx.st.portfolio(id)
	return err
}

func (tx *portfolioTx) UpsertPortfolio(ctx context.Context, p *domain.Portfolio) error {
	if id, ok := tx.st.byUser[p.UserID]; ok {
		p.ID = id
	} else if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.UpdatedAt = tx.s.now()
	tx.st.portfolios[p.ID] = *p
	tx.st.byUser[p.UserID] = p.ID
	return nil
}

func (tx *portfolioTx) DeleteCategories(ctx context.Context, portfolioID uuid.UUID) error {
	for id, c := range tx.st.categories {
		if c.val.PortfolioID == portfolioID {
			tx.st.deleteCategory(id)
		}
	}
	return nil
}

func (tx *portfolioTx) InsertCategory(ctx context.Context, c *domain.Category) error {
	if _, ok := tx.st.portfolios[c.PortfolioID]; !ok {
		return fmt.Errorf("failed to insert category: portfolio %s: %w", c.PortfolioID, domain.ErrNotFound)
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	tx.st.categories[c.ID] = row[domain.Category]{seq: tx.st.next(), val: *c}
	return nil
}

func (tx *portfolioTx) InsertItem(ctx context.Context, it *domain.Item) error {
	if _, ok := tx.st.categories[it.CategoryID]; !ok {
		return fmt.Errorf("failed to insert item: category %s: %w", it.CategoryID, domain.ErrNotFound)
	}
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	tx.st.items[it.ID] = row[domain.Item]{seq: tx.st.next(), val: *it}
	return nil
}

func (tx *portfolioTx) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, ok := tx.st.categories[id]; !ok {
		return fmt.Errorf("failed to delete category %s: %w", id, domain.ErrNotFound)
	}
	tx.st.deleteCategory(id)
	return nil
}

func (tx *portfolioTx) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if _, ok := tx.st.items[id]; !ok {
		return fmt.Errorf("failed to delete item %s: %w", id, domain.ErrNotFound)
	}
	delete(tx.st.items, id)
	return nil
}

func (tx *portfolioTx) UpdateCategoryPortion(ctx context.Context, id uuid.UUID, portion domain.AbsolutePortion) error {
	c, ok := tx.st.categories[id]
	if !ok {
		return fmt.Errorf("failed to update category %s: %w", id, domain.ErrNotFound)
	}
	c.val.Portion = portion
	tx.st.categories[id] = c
	return nil
}

func (tx *portfolioTx) UpdateItemPortion(ctx context.Context, id uuid.UUID, portion domain.AbsolutePortion) error {
	it, ok := tx.st.items[id]
	if !ok {
		return fmt.Errorf("failed to update item %s: %w", id, domain.ErrNotFound)
	}
	it.val.Portion = portion
	tx.st.items[id] = it
	return nil
}

func (tx *portfolioTx) UpdatePortfolioMetrics(ctx context.Context, id uuid.UUID, ret domain.ExpectedReturn, customized bool) error {
	p, ok := tx.st.portfolios[id]
	if !ok {
		return fmt.Errorf("failed to update portfolio %s: %w", id, domain.ErrNotFound)
	}
	p.ExpectedReturn = ret
	p.IsCustomized = customized
	p.UpdatedAt = tx.s.now()
	tx.st.portfolios[id] = p
	return nil
}

func (tx *portfolioTx) UpdateCategoryInfo(ctx context.Context, id uuid.UUID, info domain.CategoryInfo) error {
	c, ok := tx.st.categories[id]
	if !ok {
		return fmt.Errorf("failed to update category %s: %w", id, domain.ErrNotFound)
	}
	if info.Name != nil {
		c.val.Name = *info.Name
	}
	if info.Description != nil {
		c.val.Description = *info.Description
	}
	tx.st.categories[id] = c
	return nil
}

func (tx *portfolioTx) UpdateItemInfo(ctx context.Context, id uuid.UUID, info domain.ItemInfo) error {
	it, ok := tx.st.items[id]
	if !ok {
		return fmt.Errorf("failed to update item %s: %w", id, domain.ErrNotFound)
	}
	if info.Name != nil {
		it.val.Name = *info.Name
	}
	if info.Description != nil {
		it.val.Description = *info.Description
	}
	if info.ExpectedReturn != nil {
		it.val.ExpectedReturn = *info.ExpectedReturn
		it.val.IsCustomReturn = true
	}
	tx.st.items[id] = it
	return nil
}

func (st *state) portfolioByUser(userID uuid.UUID) (*domain.Portfolio, error) {
	id, ok := st.byUser[userID]
	if !ok {
		return nil, fmt.Errorf("portfolio for user %s: %w", userID, domain.ErrNotFound)
	}
	return st.portfolio(id)
}

func (st *state) portfolio(id uuid.UUID) (*domain.Portfolio, error) {
	p, ok := st.portfolios[id]
	if !ok {
		return nil, fmt.Errorf("portfolio %s: %w", id, domain.ErrNotFound)
	}
	return &p, nil
}

func (st *state) category(id uuid.UUID) (*domain.Category, error) {
	c, ok := st.categories[id]
	if !ok {
		return nil, fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}
	out := c.val
	return &out, nil
}

func (st *state) item(id uuid.UUID) (*domain.Item, error) {
	it, ok := st.items[id]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	out := it.val
	return &out, nil
}

func (st *state) listCategories(portfolioID uuid.UUID) []domain.Category {
	rows := make([]row[domain.Category], 0)
	for _, c := range st.categories {
		if c.val.PortfolioID == portfolioID {
			rows = append(rows, c)
		}
	}
	return sorted(rows)
}

func (st *state) listItems(portfolioID uuid.UUID) []domain.Item {
	rows := make([]row[domain.Item], 0)
	for _, it := range st.items {
		c, ok := st.categories[it.val.CategoryID]
		if ok && c.val.PortfolioID == portfolioID {
			rows = append(rows, it)
		}
	}
	return sorted(rows)
}

func (st *state) deleteCategory(id uuid.UUID) {
	delete(st.categories, id)
	for itemID, it := range st.items {
		if it.val.CategoryID == id {
			delete(st.items, itemID)
		}
	}
}

func sorted[T any](rows []row[T]) []T {
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = r.val
	}
	return out
}
