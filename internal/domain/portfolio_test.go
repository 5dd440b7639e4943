package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPortion_RoundTrip(t *testing.T) {
	category := AbsolutePortion(0.5)

	abs := []AbsolutePortion{RelativePortion(0.6).Absolute(category), RelativePortion(0.4).Absolute(category)}
	assert.InDelta(t, 0.3, float64(abs[0]), 1e-9)
	assert.InDelta(t, 0.2, float64(abs[1]), 1e-9)

	assert.InDelta(t, 0.6, float64(abs[0].Relative(category)), 1e-9)
	assert.InDelta(t, 0.4, float64(abs[1].Relative(category)), 1e-9)
}

func TestAbsolutePortion_RelativeToEmptyParent(t *testing.T) {
	assert.Equal(t, RelativePortion(0), AbsolutePortion(0.2).Relative(0))
	assert.Equal(t, RelativePortion(0), AbsolutePortion(0.2).Relative(-1))
}

func TestNewCategorySource_Validate(t *testing.T) {
	masterID := uuid.New()

	tests := []struct {
		name    string
		source  NewCategorySource
		wantErr bool
	}{
		{name: "master category", source: NewCategorySource{MasterCategoryID: &masterID}},
		{name: "custom category", source: NewCategorySource{Custom: &CustomCategory{Name: "Crypto"}}},
		{name: "neither", source: NewCategorySource{}, wantErr: true},
		{
			name:    "both",
			source:  NewCategorySource{MasterCategoryID: &masterID, Custom: &CustomCategory{Name: "Crypto"}},
			wantErr: true,
		},
		{name: "custom without name", source: NewCategorySource{Custom: &CustomCategory{}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.source.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, CodeInvalidDataForAddingCategory, CodeOf(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewItemSource_Validate(t *testing.T) {
	masterID := uuid.New()
	ret := &ExpectedReturn{Min: 0.03, Max: 0.08}

	tests := []struct {
		name    string
		source  NewItemSource
		wantErr bool
	}{
		{name: "master item", source: NewItemSource{MasterItemID: &masterID}},
		{name: "custom item", source: NewItemSource{Custom: &CustomItem{Name: "Gold", ExpectedReturn: ret}}},
		{name: "neither", source: NewItemSource{}, wantErr: true},
		{name: "custom without return", source: NewItemSource{Custom: &CustomItem{Name: "Gold"}}, wantErr: true},
		{
			name:    "custom with inverted return",
			source:  NewItemSource{Custom: &CustomItem{Name: "Gold", ExpectedReturn: &ExpectedReturn{Min: 0.1, Max: 0.01}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.source.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, CodeInvalidDataForAddingItem, CodeOf(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCategory_IsCustom(t *testing.T) {
	assert.True(t, (&Category{Code: CategoryCodeCustom}).IsCustom())
	assert.False(t, (&Category{Code: "STOCK"}).IsCustom())
}
