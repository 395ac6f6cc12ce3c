package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the principal lacks the capability for the attempted action.
var ErrForbidden = errors.New("forbidden")

// ErrConflict indicates that the requested change conflicts with the current state.
var ErrConflict = errors.New("conflict with current state")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// ErrNumberGenerationExhausted indicates deal number generation ran out of retry attempts.
var ErrNumberGenerationExhausted = errors.New("deal number generation attempts exhausted")

// ErrLedgerImbalance indicates the debit and credit sums for a deal do not match.
// It must always abort the enclosing transaction.
var ErrLedgerImbalance = errors.New("ledger entries do not balance")

// AppError wraps an underlying error with a status code and a human-readable message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that wraps ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}

// LimitExceededError carries the full exposure picture for a denied deal so the
// caller can report both the product and overall dimensions.
type LimitExceededError struct {
	Reason                 string
	ProductType            string
	Currency               string
	CurrentProductExposure decimal.Decimal
	CurrentOverallExposure decimal.Decimal
	ProductLimit           decimal.Decimal
	OverallLimit           decimal.Decimal
	ProductExcess          decimal.Decimal
	OverallExcess          decimal.Decimal
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("counterparty limit exceeded: %s", e.Reason)
}
