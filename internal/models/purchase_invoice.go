package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PurchaseInvoice struct {
	ID             int                   `json:"id" db:"id"`
	DocumentNumber string                `json:"document_number" db:"document_number"`
	Supplier       string                `json:"supplier" db:"supplier"`
	TillID         *int                  `json:"till_id,omitempty" db:"till_id"`
	TotalAmount    decimal.Decimal       `json:"total_amount" db:"total_amount"`
	CreatedAt      time.Time             `json:"created_at" db:"created_at"`
	Lines          []PurchaseInvoiceLine `json:"lines,omitempty"`
}

type PurchaseInvoiceLine struct {
	ID            int             `json:"id" db:"id"`
	InvoiceID     int             `json:"invoice_id" db:"invoice_id"`
	ProductID     int             `json:"product_id" db:"product_id"`
	Label         string          `json:"label" db:"label"`
	Quantity      int             `json:"quantity" db:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price" db:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price" db:"sale_price"`
	Subtotal      decimal.Decimal `json:"subtotal" db:"subtotal"`
}

type PurchaseLineRequest struct {
	ProductID     int              `json:"product_id" validate:"required,gt=0"`
	Quantity      int              `json:"quantity" validate:"gte=1"`
	PurchasePrice decimal.Decimal  `json:"purchase_price"`
	SalePrice     *decimal.Decimal `json:"sale_price"`
}

type PurchaseInvoiceRequest struct {
	DocumentNumber string                `json:"document_number" validate:"max=64"`
	Supplier       string                `json:"supplier" validate:"max=160"`
	TillID         *int                  `json:"till_id"`
	Lines          []PurchaseLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type SaleInvoiceRequest struct {
	CreateSaleRequest
	DocumentNumber string `json:"document_number" validate:"max=64"`
	Description    string `json:"description"`
}

type PurchaseInvoiceResult struct {
	Invoice  *PurchaseInvoice `json:"invoice"`
	Movement *TillMovement    `json:"movement,omitempty"`
	Voucher  string           `json:"voucher"`
}
