package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/simaogato/folio-backend/internal/domain"
)

// CatalogRepository implements domain.CatalogRepository
type CatalogRepository struct {
	db *DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) ListMasterCategories(ctx context.Context) ([]domain.MasterCategory, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, code, name, description FROM master_categories ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query master categories: %w", err)
	}
	defer rows.Close()

	out := make([]domain.MasterCategory, 0)
	for rows.Next() {
		var mc domain.MasterCategory
		if err := rows.Scan(&mc.ID, &mc.Code, &mc.Name, &mc.Description); err != nil {
			return nil, fmt.Errorf("failed to scan master category: %w", err)
		}
		out = append(out, mc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating master categories: %w", err)
	}
	return out, nil
}

func (r *CatalogRepository) GetMasterCategory(ctx context.Context, id uuid.UUID) (*domain.MasterCategory, error) {
	return r.getMasterCategory(ctx, `WHERE id = $1`, id, fmt.Sprintf("master category %s", id))
}

func (r *CatalogRepository) GetMasterCategoryByCode(ctx context.Context, code string) (*domain.MasterCategory, error) {
	return r.getMasterCategory(ctx, `WHERE code = $1`, code, fmt.Sprintf("master category %s", code))
}

func (r *CatalogRepository) getMasterCategory(ctx context.Context, where string, arg any, what string) (*domain.MasterCategory, error) {
	var mc domain.MasterCategory
	err := r.db.QueryRowContext(ctx, `SELECT id, code, name, description FROM master_categories `+where, arg).
		Scan(&mc.ID, &mc.Code, &mc.Name, &mc.Description)
	if err != nil {
		return nil, scanError(err, what)
	}
	return &mc, nil
}

func (r *CatalogRepository) ListMasterItems(ctx context.Context, masterCategoryID uuid.UUID) ([]domain.MasterItem, error) {
	query := `
		SELECT id, master_category_id, name, description, return_min, return_max
		FROM master_items
		WHERE master_category_id = $1
		ORDER BY seq
	`
	rows, err := r.db.QueryContext(ctx, query, masterCategoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query master items: %w", err)
	}
	defer rows.Close()

	out := make([]domain.MasterItem, 0)
	for rows.Next() {
		var mi domain.MasterItem
		if err := rows.Scan(&mi.ID, &mi.MasterCategoryID, &mi.Name, &mi.Description, &mi.ExpectedReturn.Min, &mi.ExpectedReturn.Max); err != nil {
			return nil, fmt.Errorf("failed to scan master item: %w", err)
		}
		out = append(out, mi)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating master items: %w", err)
	}
	return out, nil
}

func (r *CatalogRepository) GetMasterItem(ctx context.Context, id uuid.UUID) (*domain.MasterItem, error) {
	query := `
		SELECT id, master_category_id, name, description, return_min, return_max
		FROM master_items
		WHERE id = $1
	`
	var mi domain.MasterItem
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&mi.ID, &mi.MasterCategoryID, &mi.Name, &mi.Description, &mi.ExpectedReturn.Min, &mi.ExpectedReturn.Max)
	if err != nil {
		return nil, scanError(err, fmt.Sprintf("master item %s", id))
	}
	return &mi, nil
}

// GetPresetByCode loads the preset header and both template lists
func (r *CatalogRepository) GetPresetByCode(ctx context.Context, code string) (*domain.Preset, error) {
	query := `
		SELECT id, code, name, description, target_return_percent, return_min, return_max
		FROM presets
		WHERE code = $1
	`
	p, err := scanPreset(r.db.QueryRowContext(ctx, query, code))
	if err != nil {
		return nil, scanError(err, fmt.Sprintf("preset %s", code))
	}

	catRows, err := r.db.QueryContext(ctx, `
		SELECT master_category_id, code, name, description, portion
		FROM preset_categories
		WHERE preset_id = $1
		ORDER BY seq
	`, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query preset categories: %w", err)
	}
	defer catRows.Close()

	for catRows.Next() {
		var pc domain.PresetCategory
		var portion float64
		if err := catRows.Scan(&pc.MasterCategoryID, &pc.Code, &pc.Name, &pc.Description, &portion); err != nil {
			return nil, fmt.Errorf("failed to scan preset category: %w", err)
		}
		pc.Portion = domain.AbsolutePortion(portion)
		p.Categories = append(p.Categories, pc)
	}
	if err := catRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating preset categories: %w", err)
	}

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT master_item_id, category_code, portion
		FROM preset_items
		WHERE preset_id = $1
		ORDER BY seq
	`, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query preset items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var pi domain.PresetItem
		var portion float64
		if err := itemRows.Scan(&pi.MasterItemID, &pi.CategoryCode, &portion); err != nil {
			return nil, fmt.Errorf("failed to scan preset item: %w", err)
		}
		pi.Portion = domain.AbsolutePortion(portion)
		p.Items = append(p.Items, pi)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating preset items: %w", err)
	}

	return p, nil
}

func (r *CatalogRepository) FindPresetsNear(ctx context.Context, targetPercent float64, limit int) ([]domain.Preset, error) {
	query := `
		SELECT id, code, name, description, target_return_percent, return_min, return_max
		FROM presets
		ORDER BY ABS(target_return_percent - $1), code
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, targetPercent, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query presets: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Preset, 0, limit)
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan preset: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating presets: %w", err)
	}
	return out, nil
}

func (r *CatalogRepository) CreateMasterCategory(ctx context.Context, c *domain.MasterCategory) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO master_categories (id, code, name, description) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Code, c.Name, c.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to create master category: %w", err)
	}
	return nil
}

func (r *CatalogRepository) CreateMasterItem(ctx context.Context, it *domain.MasterItem) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO master_items (id, master_category_id, name, description, return_min, return_max) VALUES ($1, $2, $3, $4, $5, $6)`,
		it.ID, it.MasterCategoryID, it.Name, it.Description, it.ExpectedReturn.Min, it.ExpectedReturn.Max,
	)
	if err != nil {
		return fmt.Errorf("failed to create master item: %w", err)
	}
	return nil
}

// CreatePreset inserts the preset and its templates in one transaction
func (r *CatalogRepository) CreatePreset(ctx context.Context, p *domain.Preset) error {
	return r.db.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO presets (id, code, name, description, target_return_percent, return_min, return_max)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, p.ID, p.Code, p.Name, p.Description, p.TargetReturnPercent, p.ExpectedReturn.Min, p.ExpectedReturn.Max)
		if err != nil {
			return fmt.Errorf("failed to create preset: %w", err)
		}

		for _, pc := range p.Categories {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO preset_categories (preset_id, master_category_id, code, name, description, portion)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, p.ID, pc.MasterCategoryID, pc.Code, pc.Name, pc.Description, float64(pc.Portion))
			if err != nil {
				return fmt.Errorf("failed to create preset category %s: %w", pc.Code, err)
			}
		}

		for _, pi := range p.Items {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO preset_items (preset_id, master_item_id, category_code, portion)
				VALUES ($1, $2, $3, $4)
			`, p.ID, pi.MasterItemID, pi.CategoryCode, float64(pi.Portion))
			if err != nil {
				return fmt.Errorf("failed to create preset item %s: %w", pi.MasterItemID, err)
			}
		}
		return nil
	})
}

func scanPreset(s scanner) (*domain.Preset, error) {
	var p domain.Preset
	err := s.Scan(
		&p.ID,
		&p.Code,
		&p.Name,
		&p.Description,
		&p.TargetReturnPercent,
		&p.ExpectedReturn.Min,
		&p.ExpectedReturn.Max,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
