package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MovementIn  = "ENTREE"
	MovementOut = "SORTIE"
)

// Till is a cash register; its balance is always derived from movements.
type Till struct {
	ID          int             `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	Balance     decimal.Decimal `json:"balance"`
}

type TillMovement struct {
	ID          int             `json:"id" db:"id"`
	TillID      int             `json:"till_id" db:"till_id"`
	MovedAt     time.Time       `json:"moved_at" db:"moved_at"`
	Kind        string          `json:"kind" db:"kind"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Description string          `json:"description" db:"description"`
}

// Signed returns the movement amount with its ledger sign.
func (m *TillMovement) Signed() decimal.Decimal {
	if m.Kind == MovementOut {
		return m.Amount.Neg()
	}
	return m.Amount
}

type CreateTillRequest struct {
	Name        string `json:"name" validate:"required,max=80"`
	Description string `json:"description" validate:"max=255"`
}

type CreateMovementRequest struct {
	Kind        string          `json:"kind" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" validate:"max=255"`
}

type TillBalance struct {
	TillID   int             `json:"till_id"`
	TotalIn  decimal.Decimal `json:"total_in"`
	TotalOut decimal.Decimal `json:"total_out"`
	Balance  decimal.Decimal `json:"balance"`
}
