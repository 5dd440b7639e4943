package memory

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/simaogato/folio-backend/internal/domain"
)

// CatalogRepository implements domain.CatalogRepository on a Store
type CatalogRepository struct {
	s *Store
}

// NewCatalogRepository creates a new memory catalog repository
func NewCatalogRepository(s *Store) *CatalogRepository {
	return &CatalogRepository{s: s}
}

func (r *CatalogRepository) ListMasterCategories(ctx context.Context) (out []domain.MasterCategory, err error) {
	err = r.s.read(func(st *state) error {
		rows := make([]row[domain.MasterCategory], 0, len(st.masterCats))
		for _, c := range st.masterCats {
			rows = append(rows, c)
		}
		out = sorted(rows)
		return nil
	})
	return out, err
}

func (r *CatalogRepository) GetMasterCategory(ctx context.Context, id uuid.UUID) (c *domain.MasterCategory, err error) {
	err = r.s.read(func(st *state) error {
		found, ok := st.masterCats[id]
		if !ok {
			return fmt.Errorf("master category %s: %w", id, domain.ErrNotFound)
		}
		c = &found.val
		return nil
	})
	return c, err
}

func (r *CatalogRepository) GetMasterCategoryByCode(ctx context.Context, code string) (c *domain.MasterCategory, err error) {
	err = r.s.read(func(st *state) error {
		for _, found := range st.masterCats {
			if found.val.Code == code {
				c = &found.val
				return nil
			}
		}
		return fmt.Errorf("master category %q: %w", code, domain.ErrNotFound)
	})
	return c, err
}

func (r *CatalogRepository) ListMasterItems(ctx context.Context, masterCategoryID uuid.UUID) (out []domain.MasterItem, err error) {
	err = r.s.read(func(st *state) error {
		rows := make([]row[domain.MasterItem], 0)
		for _, it := range st.masterItems {
			if it.val.MasterCategoryID == masterCategoryID {
				rows = append(rows, it)
			}
		}
		out = sorted(rows)
		return nil
	})
	return out, err
}

func (r *CatalogRepository) GetMasterItem(ctx context.Context, id uuid.UUID) (it *domain.MasterItem, err error) {
	err = r.s.read(func(st *state) error {
		found, ok := st.masterItems[id]
		if !ok {
			return fmt.Errorf("master item %s: %w", id, domain.ErrNotFound)
		}
		it = &found.val
		return nil
	})
	return it, err
}

func (r *CatalogRepository) GetPresetByCode(ctx context.Context, code string) (p *domain.Preset, err error) {
	err = r.s.read(func(st *state) error {
		found, ok := st.presets[code]
		if !ok {
			return fmt.Errorf("preset %q: %w", code, domain.ErrNotFound)
		}
		p = &found
		return nil
	})
	return p, err
}

func (r *CatalogRepository) FindPresetsNear(ctx context.Context, targetPercent float64, limit int) (out []domain.Preset, err error) {
	err = r.s.read(func(st *state) error {
		for _, p := range st.presets {
			p.Categories, p.Items = nil, nil
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		di := math.Abs(out[i].TargetReturnPercent - targetPercent)
		dj := math.Abs(out[j].TargetReturnPercent - targetPercent)
		if di != dj {
			return di < dj
		}
		return out[i].Code < out[j].Code
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *CatalogRepository) CreateMasterCategory(ctx context.Context, c *domain.MasterCategory) error {
	return r.s.write(func(st *state) error {
		st.masterCats[c.ID] = row[domain.MasterCategory]{seq: st.next(), val: *c}
		return nil
	})
}

func (r *CatalogRepository) CreateMasterItem(ctx context.Context, it *domain.MasterItem) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.masterCats[it.MasterCategoryID]; !ok {
			return fmt.Errorf("failed to create master item: master category %s: %w", it.MasterCategoryID, domain.ErrNotFound)
		}
		st.masterItems[it.ID] = row[domain.MasterItem]{seq: st.next(), val: *it}
		return nil
	})
}

func (r *CatalogRepository) CreatePreset(ctx context.Context, p *domain.Preset) error {
	return r.s.write(func(st *state) error {
		stored := *p
		stored.Categories = append([]domain.PresetCategory(nil), p.Categories...)
		stored.Items = append([]domain.PresetItem(nil), p.Items...)
		st.presets[p.Code] = stored
		return nil
	})
}
