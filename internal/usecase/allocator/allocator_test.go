package allocator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simaogato/folio-backend/internal/domain"
)

func TestIsValidPortionSet(t *testing.T) {
	tests := []struct {
		name     string
		portions []float64
		want     bool
	}{
		{name: "exact", portions: []float64{0.5, 0.3, 0.2}, want: true},
		{name: "within tolerance above", portions: []float64{0.5, 0.3, 0.2009}, want: true},
		{name: "within tolerance below", portions: []float64{0.5, 0.3, 0.1991}, want: true},
		{name: "outside tolerance", portions: []float64{0.5, 0.3, 0.202}, want: false},
		{name: "single full portion", portions: []float64{1}, want: true},
		{name: "empty set is rejected", portions: nil, want: false},
		{name: "all zero", portions: []float64{0, 0}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidPortionSet(tt.portions))
		})
	}
}

func TestRedistributionRatio(t *testing.T) {
	ratio, ok := RedistributionRatio(0.3)
	assert.True(t, ok)
	assert.InDelta(t, 1/0.7, ratio, 1e-12)

	for _, removed := range []domain.AbsolutePortion{0, 1, -0.1, 1.2} {
		ratio, ok := RedistributionRatio(removed)
		assert.False(t, ok, "removed=%v", removed)
		assert.Equal(t, 1.0, ratio)
	}
}

func TestRedistributeOnRemoval(t *testing.T) {
	// [0.5, 0.3, 0.2] with 0.3 deleted
	got := RedistributeOnRemoval(0.3, []domain.AbsolutePortion{0.5, 0.2})

	assert.InDelta(t, 0.714, float64(got[0]), 0.001)
	assert.InDelta(t, 0.286, float64(got[1]), 0.001)
	assert.InDelta(t, 1.0, float64(SumPortions(got)), 1e-9)
}

func TestRedistributeOnRemoval_NoOp(t *testing.T) {
	siblings := []domain.AbsolutePortion{0.6, 0.4}

	assert.Equal(t, siblings, RedistributeOnRemoval(0, siblings))
	assert.Equal(t, []domain.AbsolutePortion{0}, RedistributeOnRemoval(1, []domain.AbsolutePortion{0}))
}

func TestRedistributeOnRemoval_DoesNotMutateInput(t *testing.T) {
	siblings := []domain.AbsolutePortion{0.5, 0.2}
	_ = RedistributeOnRemoval(0.3, siblings)
	assert.Equal(t, []domain.AbsolutePortion{0.5, 0.2}, siblings)
}

func TestPropagate(t *testing.T) {
	tests := []struct {
		name      string
		oldParent domain.AbsolutePortion
		newParent domain.AbsolutePortion
		children  []domain.AbsolutePortion
		want      []float64
	}{
		{
			name:      "preserves relative shares",
			oldParent: 0.4,
			newParent: 0.6,
			children:  []domain.AbsolutePortion{0.3, 0.1},
			want:      []float64{0.45, 0.15},
		},
		{
			name:      "even split when parent was empty",
			oldParent: 0,
			newParent: 0.4,
			children:  []domain.AbsolutePortion{0, 0},
			want:      []float64{0.2, 0.2},
		},
		{
			name:      "parent set to zero",
			oldParent: 0.5,
			newParent: 0,
			children:  []domain.AbsolutePortion{0.25, 0.25},
			want:      []float64{0, 0},
		},
		{
			name:      "no children",
			oldParent: 0,
			newParent: 0.4,
			children:  nil,
			want:      []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Propagate(tt.oldParent, tt.newParent, tt.children)
			assert.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], float64(got[i]), 1e-9)
			}
		})
	}
}

func TestWeightedReturnBounds(t *testing.T) {
	items := []domain.Item{
		{Portion: 0.6, ExpectedReturn: domain.ExpectedReturn{Min: 0.05, Max: 0.10}},
		{Portion: 0.4, ExpectedReturn: domain.ExpectedReturn{Min: 0.02, Max: 0.03}},
	}

	got := WeightedReturnBounds(items)
	assert.InDelta(t, 0.038, got.Min, 1e-9)
	assert.InDelta(t, 0.072, got.Max, 1e-9)

	assert.Equal(t, domain.ExpectedReturn{}, WeightedReturnBounds(nil))
}
