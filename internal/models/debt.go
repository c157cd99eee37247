package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Debt is an outstanding customer balance (créance).
type Debt struct {
	ID              int             `json:"id" db:"id"`
	TicketID        *int            `json:"ticket_id,omitempty" db:"ticket_id"`
	ClientName      string          `json:"client_name" db:"client_name"`
	DeviceBrand     string          `json:"device_brand" db:"device_brand"`
	Description     string          `json:"description" db:"description"`
	TotalAmount     decimal.Decimal `json:"total_amount" db:"total_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount" db:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount" db:"remaining_amount"`
	DueDate         time.Time       `json:"due_date" db:"due_date"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
	Payments        []DebtPayment   `json:"payments,omitempty"`
}

type DebtPayment struct {
	ID     int             `json:"id" db:"id"`
	DebtID int             `json:"debt_id" db:"debt_id"`
	Amount decimal.Decimal `json:"amount" db:"amount"`
	TillID *int            `json:"till_id,omitempty" db:"till_id"`
	PaidAt time.Time       `json:"paid_at" db:"paid_at"`
}

type CreateDebtRequest struct {
	ClientName  string          `json:"client_name" validate:"required,max=160"`
	DeviceBrand string          `json:"device_brand" validate:"max=80"`
	Description string          `json:"description"`
	Total       decimal.Decimal `json:"total"`
	Paid        decimal.Decimal `json:"paid"`
	DueDate     string          `json:"due_date"`
}

type DebtPaymentRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	ConfirmOverpay bool            `json:"confirm_overpay"`
	TillID         *int            `json:"till_id" validate:"omitempty,gt=0"`
}
