package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	store := errors.New("connection refused")

	tests := []struct {
		name         string
		err          error
		wantCode     ErrorCode
		wantValid    bool
		wantNotFound bool
	}{
		{name: "invalid portions", err: NewError(CodeInvalidPortions, "bad"), wantCode: CodeInvalidPortions, wantValid: true},
		{name: "category not found", err: NewError(CodeCategoryNotFound, "x"), wantCode: CodeCategoryNotFound, wantNotFound: true},
		{name: "wrapped sentinel", err: fmt.Errorf("failed to get item: %w", ErrNotFound), wantCode: CodeInternal, wantNotFound: true},
		{name: "internal", err: Internal(store), wantCode: CodeInternal},
		{name: "uncoded", err: store, wantCode: CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, CodeOf(tt.err))
			assert.Equal(t, tt.wantValid, IsValidation(tt.err))
			assert.Equal(t, tt.wantNotFound, IsNotFound(tt.err))
		})
	}
}

func TestInternal(t *testing.T) {
	assert.Nil(t, Internal(nil))

	coded := NewError(CodePlanNotFound, "no plan")
	assert.Same(t, coded, Internal(coded))

	store := errors.New("deadlock detected")
	err := Internal(store)
	assert.ErrorIs(t, err, store)
	assert.Contains(t, err.Error(), "INTERNAL_ERROR")
}
