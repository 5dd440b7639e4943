package domain

import (
	"errors"
	"fmt"
)

// ErrorCode is the machine-readable part of an error surfaced to callers
type ErrorCode string

const (
	CodeInvalidPortions              ErrorCode = "INVALID_PORTIONS"
	CodeInvalidDataForAddingCategory ErrorCode = "INVALID_DATA_FOR_ADDING_CATEGORY"
	CodeInvalidDataForAddingItem     ErrorCode = "INVALID_DATA_FOR_ADDING_ITEM"
	CodeInvalidRiskScore             ErrorCode = "INVALID_RISK_SCORE"
	CodeInvalidInvestmentPlan        ErrorCode = "INVALID_INVESTMENT_PLAN"
	CodeInvalidPayment               ErrorCode = "INVALID_PAYMENT"
	CodePortfolioNotFound            ErrorCode = "PORTFOLIO_NOT_FOUND"
	CodeCategoryNotFound             ErrorCode = "CATEGORY_NOT_FOUND"
	CodeItemNotFound                 ErrorCode = "ITEM_NOT_FOUND"
	CodePresetNotFound               ErrorCode = "PRESET_NOT_FOUND"
	CodePlanNotFound                 ErrorCode = "PLAN_NOT_FOUND"
	CodePaymentScheduleNotFound      ErrorCode = "PAYMENT_SCHEDULE_NOT_FOUND"
	CodeInternal                     ErrorCode = "INTERNAL_ERROR"
)

// ErrNotFound is returned by repositories when a row does not exist
var ErrNotFound = errors.New("not found")

// Error is a coded error returned by the usecase layer
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// NewError creates a coded error without a cause
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Internal wraps an infrastructure failure so it can be told apart from rejected input
func Internal(err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Code: CodeInternal, Message: "internal error", Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the code carried by err, or CodeInternal for uncoded errors
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// IsValidation reports whether err was caused by client input
func IsValidation(err error) bool {
	switch CodeOf(err) {
	case CodeInvalidPortions,
		CodeInvalidDataForAddingCategory,
		CodeInvalidDataForAddingItem,
		CodeInvalidRiskScore,
		CodeInvalidInvestmentPlan,
		CodeInvalidPayment:
		return true
	}
	return false
}

// IsNotFound reports whether err refers to a missing entity
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	switch CodeOf(err) {
	case CodePortfolioNotFound,
		CodeCategoryNotFound,
		CodeItemNotFound,
		CodePresetNotFound,
		CodePlanNotFound,
		CodePaymentScheduleNotFound:
		return true
	}
	return false
}
