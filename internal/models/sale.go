package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SaleKindCounter = "COUNTER"
	SaleKindInvoice = "INVOICE"
)

var PaymentModes = []string{"Espèces", "Carte", "Chèque", "Autre"}

const DefaultPaymentMode = "Espèces"

type Sale struct {
	ID              int             `json:"id" db:"id"`
	SoldAt          time.Time       `json:"sold_at" db:"sold_at"`
	TillID          int             `json:"till_id" db:"till_id"`
	ClientName      string          `json:"client_name" db:"client_name"`
	PaymentMode     string          `json:"payment_mode" db:"payment_mode"`
	TotalAmount     decimal.Decimal `json:"total_amount" db:"total_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount" db:"paid_amount"`
	ChangeAmount    decimal.Decimal `json:"change_amount" db:"change_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount" db:"remaining_amount"`
	DocumentNumber  string          `json:"document_number,omitempty" db:"document_number"`
	Description     string          `json:"description,omitempty" db:"description"`
	Kind            string          `json:"kind" db:"kind"`
	Lines           []SaleLine      `json:"lines,omitempty"`
}

// SaleLine is either catalog-backed (ProductID set) or a manual free-text line.
type SaleLine struct {
	ID        int             `json:"id" db:"id"`
	SaleID    int             `json:"sale_id" db:"sale_id"`
	ProductID *int            `json:"product_id,omitempty" db:"product_id"`
	Label     string          `json:"label" db:"label"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal" db:"subtotal"`
}

type CartLineRequest struct {
	ProductID *int            `json:"product_id"`
	Label     string          `json:"label" validate:"max=160"`
	Quantity  int             `json:"quantity" validate:"gte=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type NewClientRequest struct {
	LastName  string `json:"last_name" validate:"required,max=120"`
	FirstName string `json:"first_name" validate:"max=120"`
	Phone     string `json:"phone" validate:"max=40"`
}

type CreateSaleRequest struct {
	TillID      int               `json:"till_id" validate:"required,gt=0"`
	Lines       []CartLineRequest `json:"lines" validate:"required,min=1,dive"`
	Paid        decimal.Decimal   `json:"paid"`
	PaymentMode string            `json:"payment_mode" validate:"omitempty,oneof=Espèces Carte Chèque Autre"`
	ClientName  string            `json:"client_name" validate:"max=160"`
	ClientID    *int              `json:"client_id"`
	NewClient   *NewClientRequest `json:"new_client"`
}

type SaleResult struct {
	Sale     *Sale         `json:"sale"`
	Debt     *Debt         `json:"debt,omitempty"`
	Movement *TillMovement `json:"movement,omitempty"`
	Receipt  string        `json:"receipt,omitempty"`
}
