package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// CategoryCodeCustom marks a user-defined category that is not backed by a master category
const CategoryCodeCustom = "CUSTOM"

// AbsolutePortion is a share of the whole portfolio (0..1)
type AbsolutePortion float64

// RelativePortion is a share of the owning category only (0..1)
type RelativePortion float64

// Absolute converts a share of the parent into a share of the whole portfolio
func (r RelativePortion) Absolute(parent AbsolutePortion) AbsolutePortion {
	return AbsolutePortion(float64(r) * float64(parent))
}

// Relative converts a share of the whole portfolio into a share of the parent.
// A parent without weight yields 0 for every child.
func (a AbsolutePortion) Relative(parent AbsolutePortion) RelativePortion {
	if parent <= 0 {
		return 0
	}
	return RelativePortion(float64(a) / float64(parent))
}

// ExpectedReturn is a pair of annual return bounds expressed as decimals (0.06 = 6%)
type ExpectedReturn struct {
	Min float64
	Max float64
}

// Validate ensures the bounds are ordered
func (r ExpectedReturn) Validate() error {
	if r.Min > r.Max {
		return errors.New("expected return min must not exceed max")
	}
	return nil
}

// Portfolio represents the root aggregate owned by a single user
type Portfolio struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Name           string
	Description    string
	ExpectedReturn ExpectedReturn // derived from the items
	IsCustomized   bool
	UpdatedAt      time.Time
}

// Category is a weighted asset class inside a portfolio
type Category struct {
	ID          uuid.UUID
	PortfolioID uuid.UUID
	Code        string // master category code or CategoryCodeCustom
	Name        string
	Description string
	Portion     AbsolutePortion
}

// IsCustom reports whether the category was created without a master category
func (c *Category) IsCustom() bool {
	return c.Code == CategoryCodeCustom
}

// Item is a weighted asset inside a category. Portion is always stored as absolute.
type Item struct {
	ID             uuid.UUID
	CategoryID     uuid.UUID
	MasterItemID   *uuid.UUID // NULL for custom items
	Name           string
	Description    string
	Portion        AbsolutePortion
	ExpectedReturn ExpectedReturn
	IsCustom       bool
	IsCustomReturn bool
}

// RelativeItem is an item read through the per-category accessor
type RelativeItem struct {
	Item
	RelativePortion RelativePortion
}

// PortfolioTree is the full read model returned to clients
type PortfolioTree struct {
	Portfolio
	Categories []Category
	Items      []Item
}

// PortionUpdate carries a new portion for a single category or item
type PortionUpdate struct {
	ID      uuid.UUID
	Portion float64
}

// CategoryInfo is a partial metadata update; nil fields are left untouched
type CategoryInfo struct {
	Name        *string
	Description *string
}

// ItemInfo is a partial metadata update; nil fields are left untouched
type ItemInfo struct {
	Name           *string
	Description    *string
	ExpectedReturn *ExpectedReturn
}

// CustomCategory describes a user-defined category
type CustomCategory struct {
	Name        string
	Description string
}

// NewCategorySource is a tagged union: exactly one of MasterCategoryID or Custom is set
type NewCategorySource struct {
	MasterCategoryID *uuid.UUID
	Custom           *CustomCategory
}

// Validate ensures exactly one source is present
func (s NewCategorySource) Validate() error {
	if (s.MasterCategoryID == nil) == (s.Custom == nil) {
		return NewError(CodeInvalidDataForAddingCategory, "exactly one of master category or custom category info is required")
	}
	if s.Custom != nil && s.Custom.Name == "" {
		return NewError(CodeInvalidDataForAddingCategory, "custom category name cannot be empty")
	}
	return nil
}

// CustomItem describes a user-defined item. The expected return is mandatory.
type CustomItem struct {
	Name           string
	Description    string
	ExpectedReturn *ExpectedReturn
}

// NewItemSource is a tagged union: exactly one of MasterItemID or Custom is set
type NewItemSource struct {
	MasterItemID *uuid.UUID
	Custom       *CustomItem
}

// Validate ensures exactly one source is present and custom items carry a return
func (s NewItemSource) Validate() error {
	if (s.MasterItemID == nil) == (s.Custom == nil) {
		return NewError(CodeInvalidDataForAddingItem, "exactly one of master item or custom item info is required")
	}
	if s.Custom != nil {
		if s.Custom.Name == "" {
			return NewError(CodeInvalidDataForAddingItem, "custom item name cannot be empty")
		}
		if s.Custom.ExpectedReturn == nil {
			return NewError(CodeInvalidDataForAddingItem, "custom item requires an expected return")
		}
		if err := s.Custom.ExpectedReturn.Validate(); err != nil {
			return NewError(CodeInvalidDataForAddingItem, err.Error())
		}
	}
	return nil
}
