package allocator

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/simaogato/folio-backend/internal/domain"
)

// Tree is the in-memory category/item aggregate of one portfolio.
// Every mutation computes and validates the complete new state before changing
// anything, so a rejected call leaves the tree untouched.
type Tree struct {
	portfolio  domain.Portfolio
	categories []domain.Category
	items      []domain.Item

	loadedCategories map[uuid.UUID]domain.AbsolutePortion
	loadedItems      map[uuid.UUID]domain.AbsolutePortion
}

// Changes lists the rows whose portion differs from the loaded state
type Changes struct {
	Categories []domain.PortionUpdate
	Items      []domain.PortionUpdate
}

// NewTree builds a tree from rows read inside the current transaction.
// Items whose category is not part of categories are ignored.
func NewTree(p domain.Portfolio, categories []domain.Category, items []domain.Item) *Tree {
	t := &Tree{
		portfolio:        p,
		categories:       make([]domain.Category, len(categories)),
		loadedCategories: make(map[uuid.UUID]domain.AbsolutePortion, len(categories)),
		loadedItems:      make(map[uuid.UUID]domain.AbsolutePortion, len(items)),
	}
	copy(t.categories, categories)

	for _, c := range categories {
		t.loadedCategories[c.ID] = c.Portion
	}
	for _, it := range items {
		if _, ok := t.loadedCategories[it.CategoryID]; !ok {
			continue
		}
		t.items = append(t.items, it)
		t.loadedItems[it.ID] = it.Portion
	}
	return t
}

// Portfolio returns the aggregate row with the current derived metrics
func (t *Tree) Portfolio() domain.Portfolio {
	return t.portfolio
}

// Categories returns a copy of the categories in load order
func (t *Tree) Categories() []domain.Category {
	out := make([]domain.Category, len(t.categories))
	copy(out, t.categories)
	return out
}

// Items returns a copy of every item in the portfolio
func (t *Tree) Items() []domain.Item {
	out := make([]domain.Item, len(t.items))
	copy(out, t.items)
	return out
}

// Category looks up a category by id
func (t *Tree) Category(id uuid.UUID) (domain.Category, bool) {
	if i := t.categoryIndex(id); i >= 0 {
		return t.categories[i], true
	}
	return domain.Category{}, false
}

// Item looks up an item by id
func (t *Tree) Item(id uuid.UUID) (domain.Item, bool) {
	if i := t.itemIndex(id); i >= 0 {
		return t.items[i], true
	}
	return domain.Item{}, false
}

// ItemsOf returns the items of one category
func (t *Tree) ItemsOf(categoryID uuid.UUID) []domain.Item {
	var out []domain.Item
	for _, it := range t.items {
		if it.CategoryID == categoryID {
			out = append(out, it)
		}
	}
	return out
}

// UpdateCategoryPortions sets new category portions and propagates each change to the
// category's items. The supplied portions and the resulting category set must both
// sum to 1.0.
func (t *Tree) UpdateCategoryPortions(updates []domain.PortionUpdate) error {
	if err := checkPortionSet(updates); err != nil {
		return err
	}

	next := make(map[uuid.UUID]domain.AbsolutePortion, len(updates))
	for _, u := range updates {
		if t.categoryIndex(u.ID) < 0 {
			return domain.NewError(domain.CodeCategoryNotFound, fmt.Sprintf("category %s not found in portfolio", u.ID))
		}
		next[u.ID] = domain.AbsolutePortion(u.Portion)
	}

	resulting := make([]float64, len(t.categories))
	for i, c := range t.categories {
		resulting[i] = float64(c.Portion)
		if p, ok := next[c.ID]; ok {
			resulting[i] = float64(p)
		}
	}
	if !IsValidPortionSet(resulting) {
		return domain.NewError(domain.CodeInvalidPortions, "category portions of the portfolio must sum to 1")
	}

	for i := range t.categories {
		c := &t.categories[i]
		p, ok := next[c.ID]
		if !ok {
			continue
		}
		t.propagate(c.ID, c.Portion, p)
		c.Portion = p
	}

	t.recalculate()
	return nil
}

// UpdateItemAbsolutePortions sets absolute item portions, then re-derives every
// category portion from its items. The resulting item set of the whole portfolio must
// sum to 1.0.
func (t *Tree) UpdateItemAbsolutePortions(updates []domain.PortionUpdate) error {
	if len(updates) == 0 {
		return domain.NewError(domain.CodeInvalidPortions, "portions must not be empty")
	}

	next := make(map[uuid.UUID]domain.AbsolutePortion, len(updates))
	for _, u := range updates {
		if t.itemIndex(u.ID) < 0 {
			return domain.NewError(domain.CodeItemNotFound, fmt.Sprintf("item %s not found in portfolio", u.ID))
		}
		if _, dup := next[u.ID]; dup {
			return domain.NewError(domain.CodeInvalidPortions, fmt.Sprintf("item %s appears more than once", u.ID))
		}
		if u.Portion < 0 {
			return domain.NewError(domain.CodeInvalidPortions, "portions must not be negative")
		}
		next[u.ID] = domain.AbsolutePortion(u.Portion)
	}

	resulting := make([]float64, len(t.items))
	for i, it := range t.items {
		resulting[i] = float64(it.Portion)
		if p, ok := next[it.ID]; ok {
			resulting[i] = float64(p)
		}
	}
	if !IsValidPortionSet(resulting) {
		return domain.NewError(domain.CodeInvalidPortions, "item portions of the portfolio must sum to 1")
	}

	for i := range t.items {
		if p, ok := next[t.items[i].ID]; ok {
			t.items[i].Portion = p
		}
	}

	t.syncCategories()
	t.recalculate()
	return nil
}

// UpdateItemRelativePortions sets the items of one category by their share of the
// category. Items of the category that are left out must carry no weight.
func (t *Tree) UpdateItemRelativePortions(categoryID uuid.UUID, updates []domain.PortionUpdate) error {
	ci := t.categoryIndex(categoryID)
	if ci < 0 {
		return domain.NewError(domain.CodeCategoryNotFound, fmt.Sprintf("category %s not found in portfolio", categoryID))
	}
	if err := checkPortionSet(updates); err != nil {
		return err
	}

	next := make(map[uuid.UUID]domain.RelativePortion, len(updates))
	for _, u := range updates {
		i := t.itemIndex(u.ID)
		if i < 0 || t.items[i].CategoryID != categoryID {
			return domain.NewError(domain.CodeItemNotFound, fmt.Sprintf("item %s not found in category", u.ID))
		}
		next[u.ID] = domain.RelativePortion(u.Portion)
	}

	for _, it := range t.items {
		if it.CategoryID != categoryID {
			continue
		}
		if _, ok := next[it.ID]; !ok && it.Portion > 0 {
			return domain.NewError(domain.CodeInvalidPortions, "relative portions must cover every weighted item of the category")
		}
	}

	parent := t.categories[ci].Portion
	for i := range t.items {
		if r, ok := next[t.items[i].ID]; ok {
			t.items[i].Portion = r.Absolute(parent)
		}
	}

	t.recalculate()
	return nil
}

// AddCategory appends a category with portion 0. The sum-to-one invariant is enforced
// again on the next portion update.
func (t *Tree) AddCategory(c domain.Category) {
	c.PortfolioID = t.portfolio.ID
	c.Portion = 0
	t.categories = append(t.categories, c)
	t.loadedCategories[c.ID] = 0
	t.recalculate()
}

// AddItem appends an item with portion 0 to an existing category
func (t *Tree) AddItem(it domain.Item) error {
	if t.categoryIndex(it.CategoryID) < 0 {
		return domain.NewError(domain.CodeCategoryNotFound, fmt.Sprintf("category %s not found in portfolio", it.CategoryID))
	}
	it.Portion = 0
	t.items = append(t.items, it)
	t.loadedItems[it.ID] = 0
	t.recalculate()
	return nil
}

// RemoveCategory deletes a category with its items and rescales the remaining
// categories and every remaining item by the same ratio
func (t *Tree) RemoveCategory(id uuid.UUID) error {
	ci := t.categoryIndex(id)
	if ci < 0 {
		return domain.NewError(domain.CodeCategoryNotFound, fmt.Sprintf("category %s not found in portfolio", id))
	}
	removed := t.categories[ci].Portion

	t.categories = append(t.categories[:ci:ci], t.categories[ci+1:]...)
	kept := t.items[:0:0]
	for _, it := range t.items {
		if it.CategoryID != id {
			kept = append(kept, it)
		}
	}
	t.items = kept
	delete(t.loadedCategories, id)

	if ratio, ok := RedistributionRatio(removed); ok {
		for i := range t.categories {
			t.categories[i].Portion = scale(t.categories[i].Portion, ratio)
		}
		for i := range t.items {
			t.items[i].Portion = scale(t.items[i].Portion, ratio)
		}
	}

	t.recalculate()
	return nil
}

// RemoveItem deletes an item, rescales every remaining item of the portfolio and
// re-derives the category portions from their items
func (t *Tree) RemoveItem(id uuid.UUID) error {
	ii := t.itemIndex(id)
	if ii < 0 {
		return domain.NewError(domain.CodeItemNotFound, fmt.Sprintf("item %s not found in portfolio", id))
	}
	removed := t.items[ii].Portion

	t.items = append(t.items[:ii:ii], t.items[ii+1:]...)
	delete(t.loadedItems, id)

	if ratio, ok := RedistributionRatio(removed); ok {
		for i := range t.items {
			t.items[i].Portion = scale(t.items[i].Portion, ratio)
		}
		t.syncCategories()
	}

	t.recalculate()
	return nil
}

// SetItemReturn replaces the return bounds of one item and refreshes the aggregate
func (t *Tree) SetItemReturn(id uuid.UUID, ret domain.ExpectedReturn) error {
	ii := t.itemIndex(id)
	if ii < 0 {
		return domain.NewError(domain.CodeItemNotFound, fmt.Sprintf("item %s not found in portfolio", id))
	}
	t.items[ii].ExpectedReturn = ret
	t.items[ii].IsCustomReturn = true
	t.recalculate()
	return nil
}

// Changes returns the categories and items whose portion moved since load.
// Rows added or removed through the tree are not reported.
func (t *Tree) Changes() Changes {
	var ch Changes
	for _, c := range t.categories {
		if loaded, ok := t.loadedCategories[c.ID]; ok && loaded != c.Portion {
			ch.Categories = append(ch.Categories, domain.PortionUpdate{ID: c.ID, Portion: float64(c.Portion)})
		}
	}
	for _, it := range t.items {
		if loaded, ok := t.loadedItems[it.ID]; ok && loaded != it.Portion {
			ch.Items = append(ch.Items, domain.PortionUpdate{ID: it.ID, Portion: float64(it.Portion)})
		}
	}
	return ch
}

// Verify checks that the categories sum to 1.0 and that every category with items
// equals the sum of its items
func (t *Tree) Verify() error {
	if len(t.categories) == 0 {
		return nil
	}

	portions := make([]float64, len(t.categories))
	for i, c := range t.categories {
		portions[i] = float64(c.Portion)
	}
	if !IsValidPortionSet(portions) {
		return fmt.Errorf("category portions sum to %.4f", SumPortions(fromFloats(portions)))
	}

	sums := t.itemSums()
	for _, c := range t.categories {
		sum, ok := sums[c.ID]
		if !ok {
			continue
		}
		if math.Abs(float64(sum-c.Portion)) > PortionTolerance {
			return fmt.Errorf("items of category %s sum to %.4f, category portion is %.4f", c.ID, sum, c.Portion)
		}
	}
	return nil
}

func (t *Tree) propagate(categoryID uuid.UUID, oldPortion, newPortion domain.AbsolutePortion) {
	var idx []int
	var children []domain.AbsolutePortion
	for i, it := range t.items {
		if it.CategoryID == categoryID {
			idx = append(idx, i)
			children = append(children, it.Portion)
		}
	}

	for k, p := range Propagate(oldPortion, newPortion, children) {
		t.items[idx[k]].Portion = p
	}
}

// syncCategories sets every category portion to the sum of its items.
// Categories without items end up at 0.
func (t *Tree) syncCategories() {
	sums := t.itemSums()
	for i := range t.categories {
		t.categories[i].Portion = sums[t.categories[i].ID]
	}
}

func (t *Tree) itemSums() map[uuid.UUID]domain.AbsolutePortion {
	grouped := make(map[uuid.UUID][]domain.AbsolutePortion, len(t.categories))
	for _, it := range t.items {
		grouped[it.CategoryID] = append(grouped[it.CategoryID], it.Portion)
	}
	sums := make(map[uuid.UUID]domain.AbsolutePortion, len(grouped))
	for id, portions := range grouped {
		sums[id] = SumPortions(portions)
	}
	return sums
}

func (t *Tree) recalculate() {
	t.portfolio.ExpectedReturn = WeightedReturnBounds(t.items)
	t.portfolio.IsCustomized = true
}

func (t *Tree) categoryIndex(id uuid.UUID) int {
	for i := range t.categories {
		if t.categories[i].ID == id {
			return i
		}
	}
	return -1
}

func (t *Tree) itemIndex(id uuid.UUID) int {
	for i := range t.items {
		if t.items[i].ID == id {
			return i
		}
	}
	return -1
}

// checkPortionSet rejects empty, duplicated, negative or non-unit portion lists
func checkPortionSet(updates []domain.PortionUpdate) error {
	if len(updates) == 0 {
		return domain.NewError(domain.CodeInvalidPortions, "portions must not be empty")
	}

	seen := make(map[uuid.UUID]struct{}, len(updates))
	portions := make([]float64, len(updates))
	for i, u := range updates {
		if _, dup := seen[u.ID]; dup {
			return domain.NewError(domain.CodeInvalidPortions, fmt.Sprintf("%s appears more than once", u.ID))
		}
		seen[u.ID] = struct{}{}
		if u.Portion < 0 {
			return domain.NewError(domain.CodeInvalidPortions, "portions must not be negative")
		}
		portions[i] = u.Portion
	}

	if !IsValidPortionSet(portions) {
		return domain.NewError(domain.CodeInvalidPortions, "portions must sum to 1")
	}
	return nil
}

func scale(p domain.AbsolutePortion, ratio float64) domain.AbsolutePortion {
	return domain.AbsolutePortion(float64(p) * ratio)
}
