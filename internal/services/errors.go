package services

import (
	"errors"
	"fmt"

	"repairshop-backend/internal/repositories"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = repositories.ErrNotFound
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOverpayment       = errors.New("payment exceeds the remaining amount")
	ErrDebtOutstanding   = errors.New("debt still has a remaining balance")
	ErrClientRequired    = errors.New("a client is required when the sale is not fully paid")
	ErrInvalidStatus     = errors.New("invalid ticket status")
	ErrConflict          = errors.New("already exists")
	ErrUnauthorized      = errors.New("admin authentication required")
	ErrForbidden         = errors.New("action not allowed")
)

// invalid wraps ErrValidation with a readable reason.
func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
