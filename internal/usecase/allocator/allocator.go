package allocator

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/simaogato/folio-backend/internal/domain"
)

// PortionTolerance is the absolute tolerance for "sums to 1.0"
const PortionTolerance = 0.001

// IsValidPortionSet reports whether the portions sum to 1.0 within PortionTolerance.
// An empty set is rejected.
func IsValidPortionSet(portions []float64) bool {
	if len(portions) == 0 {
		return false
	}
	return math.Abs(floats.Sum(portions)-1) <= PortionTolerance
}

// RedistributionRatio returns the factor the complement set is multiplied by after a
// sibling carrying removed is deleted. ok is false when nothing needs rescaling:
// the removed sibling carried no weight, or it carried all of it.
func RedistributionRatio(removed domain.AbsolutePortion) (ratio float64, ok bool) {
	if removed <= 0 || removed >= 1 {
		return 1, false
	}
	return 1 / (1 - float64(removed)), true
}

// RedistributeOnRemoval rescales the remaining siblings so they re-sum to the whole
// after one sibling carrying removed was deleted
func RedistributeOnRemoval(removed domain.AbsolutePortion, siblings []domain.AbsolutePortion) []domain.AbsolutePortion {
	out := make([]domain.AbsolutePortion, len(siblings))
	copy(out, siblings)

	ratio, ok := RedistributionRatio(removed)
	if !ok {
		return out
	}

	values := toFloats(out)
	floats.Scale(ratio, values)
	return fromFloats(values)
}

// Propagate pushes a changed parent portion down to its children.
// When the parent previously carried weight, each child keeps its relative share.
// When the previous portion was 0, the new portion is split evenly.
func Propagate(oldParent, newParent domain.AbsolutePortion, children []domain.AbsolutePortion) []domain.AbsolutePortion {
	out := make([]domain.AbsolutePortion, len(children))
	if len(children) == 0 {
		return out
	}

	if oldParent > 0 {
		for i, child := range children {
			out[i] = child.Relative(oldParent).Absolute(newParent)
		}
		return out
	}

	share := domain.AbsolutePortion(float64(newParent) / float64(len(children)))
	for i := range out {
		out[i] = share
	}
	return out
}

// WeightedReturnBounds computes the portion-weighted expected return of the items.
// An empty item set yields 0/0.
func WeightedReturnBounds(items []domain.Item) domain.ExpectedReturn {
	if len(items) == 0 {
		return domain.ExpectedReturn{}
	}

	portions := make([]float64, len(items))
	mins := make([]float64, len(items))
	maxs := make([]float64, len(items))
	for i, it := range items {
		portions[i] = float64(it.Portion)
		mins[i] = it.ExpectedReturn.Min
		maxs[i] = it.ExpectedReturn.Max
	}

	return domain.ExpectedReturn{
		Min: floats.Dot(portions, mins),
		Max: floats.Dot(portions, maxs),
	}
}

// SumPortions returns the total weight of the portions
func SumPortions(portions []domain.AbsolutePortion) domain.AbsolutePortion {
	return domain.AbsolutePortion(floats.Sum(toFloats(portions)))
}

func toFloats(portions []domain.AbsolutePortion) []float64 {
	out := make([]float64, len(portions))
	for i, p := range portions {
		out[i] = float64(p)
	}
	return out
}

func fromFloats(values []float64) []domain.AbsolutePortion {
	out := make([]domain.AbsolutePortion, len(values))
	for i, v := range values {
		out[i] = domain.AbsolutePortion(v)
	}
	return out
}
