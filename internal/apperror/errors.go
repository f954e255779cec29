package apperror

import (
	"errors"
	"net/http"
)

// Domain errors shared by the settlement core, the ledger and their adapters.
var (
	ErrInsufficientStock          = errors.New("insufficient stock")
	ErrInvalidAdjustment          = errors.New("adjustment would drive stock negative")
	ErrNotFound                   = errors.New("not found")
	ErrDuplicateTransactionNumber = errors.New("duplicate transaction number")
	ErrInvalidInput               = errors.New("invalid input")
	ErrInvalidTransition          = errors.New("invalid transaction status transition")
	ErrDuplicateEvent             = errors.New("event already applied")
)

// IsRetryable reports whether the caller may retry the same request unchanged.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrDuplicateTransactionNumber)
}

// HTTPStatus maps an error to the status code used by the HTTP adapters.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrInvalidAdjustment),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrDuplicateTransactionNumber),
		errors.Is(err, ErrDuplicateEvent):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Code returns a stable machine-readable code for an error.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientStock):
		return "INSUFFICIENT_STOCK"
	case errors.Is(err, ErrInvalidAdjustment):
		return "INVALID_ADJUSTMENT"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrDuplicateTransactionNumber):
		return "DUPLICATE_TRANSACTION_NUMBER"
	case errors.Is(err, ErrInvalidInput):
		return "INVALID_INPUT"
	case errors.Is(err, ErrInvalidTransition):
		return "INVALID_TRANSITION"
	case errors.Is(err, ErrDuplicateEvent):
		return "DUPLICATE_EVENT"
	default:
		return "INTERNAL"
	}
}
