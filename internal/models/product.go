package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID                int             `json:"id" db:"id"`
	Barcode           string          `json:"barcode" db:"barcode"`
	Reference         string          `json:"reference" db:"reference"`
	Name              string          `json:"name" db:"name"`
	Category          string          `json:"category" db:"category"`
	Description       string          `json:"description" db:"description"`
	PurchasePrice     decimal.Decimal `json:"purchase_price" db:"purchase_price"`
	SalePrice         decimal.Decimal `json:"sale_price" db:"sale_price"`
	Quantity          int             `json:"quantity" db:"quantity"`
	LowStockThreshold int             `json:"low_stock_threshold" db:"low_stock_threshold"`
	Active            bool            `json:"active" db:"active"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// LowStock mirrors the low-stock listing filter.
func (p *Product) LowStock() bool {
	return p.Active && p.LowStockThreshold > 0 && p.Quantity <= p.LowStockThreshold
}

type CreateProductRequest struct {
	Name              string          `json:"name" validate:"required,max=160"`
	Barcode           string          `json:"barcode" validate:"max=64"`
	Reference         string          `json:"reference" validate:"max=64"`
	Category          string          `json:"category" validate:"max=80"`
	Description       string          `json:"description"`
	PurchasePrice     decimal.Decimal `json:"purchase_price"`
	SalePrice         decimal.Decimal `json:"sale_price"`
	Quantity          int             `json:"quantity" validate:"gte=0"`
	LowStockThreshold int             `json:"low_stock_threshold" validate:"gte=0"`
}

// UpdateProductRequest carries only the fields to change.
type UpdateProductRequest struct {
	Name              *string          `json:"name" validate:"omitempty,min=1,max=160"`
	Barcode           *string          `json:"barcode" validate:"omitempty,max=64"`
	Reference         *string          `json:"reference" validate:"omitempty,max=64"`
	Category          *string          `json:"category" validate:"omitempty,max=80"`
	Description       *string          `json:"description"`
	PurchasePrice     *decimal.Decimal `json:"purchase_price"`
	SalePrice         *decimal.Decimal `json:"sale_price"`
	Quantity          *int             `json:"quantity" validate:"omitempty,gte=0"`
	LowStockThreshold *int             `json:"low_stock_threshold" validate:"omitempty,gte=0"`
}

type StockAdjustmentRequest struct {
	Delta int `json:"delta" validate:"required"`
}
