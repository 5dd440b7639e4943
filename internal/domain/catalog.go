package domain

import (
	"errors"
	"math"

	"github.com/google/uuid"
)

// MasterCategory is read-only reference data a user category can be created from
type MasterCategory struct {
	ID          uuid.UUID
	Code        string
	Name        string
	Description string
}

// MasterItem is a read-only catalog asset belonging to a master category
type MasterItem struct {
	ID               uuid.UUID
	MasterCategoryID uuid.UUID
	Name             string
	Description      string
	ExpectedReturn   ExpectedReturn
}

// Preset is a read-only template portfolio
type Preset struct {
	ID                  uuid.UUID
	Code                string
	Name                string
	Description         string
	TargetReturnPercent float64
	ExpectedReturn      ExpectedReturn
	Categories          []PresetCategory
	Items               []PresetItem
}

// PresetCategory is the template of a category inside a preset
type PresetCategory struct {
	MasterCategoryID uuid.UUID
	Code             string
	Name             string
	Description      string
	Portion          AbsolutePortion
}

// PresetItem is the template of an item inside a preset. Portion is absolute.
type PresetItem struct {
	MasterItemID uuid.UUID
	CategoryCode string
	Portion      AbsolutePortion
}

// Validate ensures the preset is weight-consistent and every item has a category
func (p *Preset) Validate() error {
	if p.Code == "" {
		return errors.New("preset code cannot be empty")
	}
	if len(p.Categories) == 0 {
		return errors.New("preset must have at least one category")
	}

	categoryTotal := 0.0
	itemTotals := make(map[string]float64, len(p.Categories))
	for _, c := range p.Categories {
		categoryTotal += float64(c.Portion)
		itemTotals[c.Code] = 0
	}
	if math.Abs(categoryTotal-1) > 0.001 {
		return errors.New("preset category portions must sum to 1")
	}

	for _, it := range p.Items {
		if _, ok := itemTotals[it.CategoryCode]; !ok {
			return errors.New("preset item references an unknown category")
		}
		itemTotals[it.CategoryCode] += float64(it.Portion)
	}
	for _, c := range p.Categories {
		if math.Abs(itemTotals[c.Code]-float64(c.Portion)) > 0.001 {
			return errors.New("preset item portions must sum to their category portion")
		}
	}
	return nil
}
