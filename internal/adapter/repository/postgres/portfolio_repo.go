package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/simaogato/folio-backend/internal/domain"
)

const (
	portfolioColumns = `id, user_id, name, description, return_min, return_max, is_customized, updated_at`
	categoryColumns  = `c.id, c.portfolio_id, c.code, c.name, c.description, c.portion`
	itemColumns      = `i.id, i.category_id, i.master_item_id, i.name, i.description, i.portion,
		i.return_min, i.return_max, i.is_custom, i.is_custom_return`
)

// PortfolioRepository implements domain.PortfolioRepository
type PortfolioRepository struct {
	db *DB
	portfolioReader
}

// NewPortfolioRepository creates a new portfolio repository
func NewPortfolioRepository(db *DB) *PortfolioRepository {
	return &PortfolioRepository{db: db, portfolioReader: portfolioReader{q: db}}
}

// InTx runs fn inside one database transaction
func (r *PortfolioRepository) InTx(ctx context.Context, fn func(tx domain.PortfolioTx) error) error {
	return r.db.inTx(ctx, func(dbTx *sql.Tx) error {
		return fn(&portfolioTx{portfolioReader: portfolioReader{q: dbTx}, tx: dbTx})
	})
}

// portfolioReader runs the read queries on either the pool or an open transaction
type portfolioReader struct {
	q querier
}

func (r portfolioReader) GetPortfolioByUser(ctx context.Context, userID uuid.UUID) (*domain.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolios WHERE user_id = $1`
	p, err := scanPortfolio(r.q.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, scanError(err, fmt.Sprintf("portfolio of user %s", userID))
	}
	return p, nil
}

func (r portfolioReader) GetPortfolio(ctx context.Context, id uuid.UUID) (*domain.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolios WHERE id = $1`
	p, err := scanPortfolio(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, scanError(err, fmt.Sprintf("portfolio %s", id))
	}
	return p, nil
}

func (r portfolioReader) ListCategories(ctx context.Context, portfolioID uuid.UUID) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories c WHERE c.portfolio_id = $1 ORDER BY c.seq`
	rows, err := r.q.QueryContext(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

func (r portfolioReader) GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories c WHERE c.id = $1`
	c, err := scanCategory(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, scanError(err, fmt.Sprintf("category %s", id))
	}
	return c, nil
}

func (r portfolioReader) ListItems(ctx context.Context, portfolioID uuid.UUID) ([]domain.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items i
		JOIN categories c ON c.id = i.category_id
		WHERE c.portfolio_id = $1
		ORDER BY i.seq
	`
	rows, err := r.q.QueryContext(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return items, nil
}

func (r portfolioReader) GetItem(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items i WHERE i.id = $1`
	it, err := scanItem(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, scanError(err, fmt.Sprintf("item %s", id))
	}
	return it, nil
}

// portfolioTx implements domain.PortfolioTx on an open transaction
type portfolioTx struct {
	portfolioReader
	tx *sql.Tx
}

func (t *portfolioTx) LockPortfolio(ctx context.Context, id uuid.UUID) error {
	var locked uuid.UUID
	err := t.tx.QueryRowContext(ctx, `SELECT id FROM portfolios WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		return scanError(err, fmt.Sprintf("portfolio %s", id))
	}
	return nil
}

func (t *portfolioTx) UpsertPortfolio(ctx context.Context, p *domain.Portfolio) error {
	query := `
		INSERT INTO portfolios (id, user_id, name, description, return_min, return_max, is_customized, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			return_min = EXCLUDED.return_min,
			return_max = EXCLUDED.return_max,
			is_customized = EXCLUDED.is_customized,
			updated_at = NOW()
		RETURNING id, updated_at
	`
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	err := t.tx.QueryRowContext(ctx, query,
		p.ID,
		p.UserID,
		p.Name,
		p.Description,
		p.ExpectedReturn.Min,
		p.ExpectedReturn.Max,
		p.IsCustomized,
	).Scan(&p.ID, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert portfolio: %w", err)
	}
	return nil
}

func (t *portfolioTx) DeleteCategories(ctx context.Context, portfolioID uuid.UUID) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM categories WHERE portfolio_id = $1`, portfolioID); err != nil {
		return fmt.Errorf("failed to delete categories: %w", err)
	}
	return nil
}

func (t *portfolioTx) InsertCategory(ctx context.Context, c *domain.Category) error {
	query := `
		INSERT INTO categories (id, portfolio_id, code, name, description, portion)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := t.tx.ExecContext(ctx, query, c.ID, c.PortfolioID, c.Code, c.Name, c.Description, float64(c.Portion))
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

func (t *portfolioTx) InsertItem(ctx context.Context, it *domain.Item) error {
	query := `
		INSERT INTO items (id, category_id, master_item_id, name, description, portion, return_min, return_max, is_custom, is_custom_return)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	var masterID interface{}
	if it.MasterItemID != nil {
		masterID = *it.MasterItemID
	}

	_, err := t.tx.ExecContext(ctx, query,
		it.ID,
		it.CategoryID,
		masterID,
		it.Name,
		it.Description,
		float64(it.Portion),
		it.ExpectedReturn.Min,
		it.ExpectedReturn.Max,
		it.IsCustom,
		it.IsCustomReturn,
	)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

func (t *portfolioTx) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return expectOne(res, fmt.Sprintf("category %s", id))
}

func (t *portfolioTx) DeleteItem(ctx context.Context, id uuid.UUID) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return expectOne(res, fmt.Sprintf("item %s", id))
}

func (t *portfolioTx) UpdateCategoryPortion(ctx context.Context, id uuid.UUID, portion domain.AbsolutePortion) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE categories SET portion = $2 WHERE id = $1`, id, float64(portion))
	if err != nil {
		return fmt.Errorf("failed to update category portion: %w", err)
	}
	return expectOne(res, fmt.Sprintf("category %s", id))
}

func (t *portfolioTx) UpdateItemPortion(ctx context.Context, id uuid.UUID, portion domain.AbsolutePortion) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE items SET portion = $2 WHERE id = $1`, id, float64(portion))
	if err != nil {
		return fmt.Errorf("failed to update item portion: %w", err)
	}
	return expectOne(res, fmt.Sprintf("item %s", id))
}

func (t *portfolioTx) UpdatePortfolioMetrics(ctx context.Context, id uuid.UUID, ret domain.ExpectedReturn, customized bool) error {
	query := `
		UPDATE portfolios
		SET return_min = $2, return_max = $3, is_customized = $4, updated_at = NOW()
		WHERE id = $1
	`
	res, err := t.tx.ExecContext(ctx, query, id, ret.Min, ret.Max, customized)
	if err != nil {
		return fmt.Errorf("failed to update portfolio metrics: %w", err)
	}
	return expectOne(res, fmt.Sprintf("portfolio %s", id))
}

func (t *portfolioTx) UpdateCategoryInfo(ctx context.Context, id uuid.UUID, info domain.CategoryInfo) error {
	query := `
		UPDATE categories
		SET name = COALESCE($2, name), description = COALESCE($3, description)
		WHERE id = $1
	`
	res, err := t.tx.ExecContext(ctx, query, id, nullString(info.Name), nullString(info.Description))
	if err != nil {
		return fmt.Errorf("failed to update category info: %w", err)
	}
	return expectOne(res, fmt.Sprintf("category %s", id))
}

func (t *portfolioTx) UpdateItemInfo(ctx context.Context, id uuid.UUID, info domain.ItemInfo) error {
	query := `
		UPDATE items
		SET name = COALESCE($2, name),
			description = COALESCE($3, description),
			return_min = COALESCE($4, return_min),
			return_max = COALESCE($5, return_max),
			is_custom_return = is_custom_return OR $6
		WHERE id = $1
	`
	var retMin, retMax sql.NullFloat64
	if info.ExpectedReturn != nil {
		retMin = sql.NullFloat64{Float64: info.ExpectedReturn.Min, Valid: true}
		retMax = sql.NullFloat64{Float64: info.ExpectedReturn.Max, Valid: true}
	}

	res, err := t.tx.ExecContext(ctx, query,
		id,
		nullString(info.Name),
		nullString(info.Description),
		retMin,
		retMax,
		info.ExpectedReturn != nil,
	)
	if err != nil {
		return fmt.Errorf("failed to update item info: %w", err)
	}
	return expectOne(res, fmt.Sprintf("item %s", id))
}

// scanner is implemented by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanPortfolio(s scanner) (*domain.Portfolio, error) {
	var p domain.Portfolio
	err := s.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Description,
		&p.ExpectedReturn.Min,
		&p.ExpectedReturn.Max,
		&p.IsCustomized,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanCategory(s scanner) (*domain.Category, error) {
	var c domain.Category
	var portion float64
	if err := s.Scan(&c.ID, &c.PortfolioID, &c.Code, &c.Name, &c.Description, &portion); err != nil {
		return nil, err
	}
	c.Portion = domain.AbsolutePortion(portion)
	return &c, nil
}

func scanItem(s scanner) (*domain.Item, error) {
	var it domain.Item
	var masterID uuid.NullUUID
	var portion float64
	err := s.Scan(
		&it.ID,
		&it.CategoryID,
		&masterID,
		&it.Name,
		&it.Description,
		&portion,
		&it.ExpectedReturn.Min,
		&it.ExpectedReturn.Max,
		&it.IsCustom,
		&it.IsCustomReturn,
	)
	if err != nil {
		return nil, err
	}

	// Parse master_item_id (nullable)
	if masterID.Valid {
		id := masterID.UUID
		it.MasterItemID = &id
	}
	it.Portion = domain.AbsolutePortion(portion)
	return &it, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
