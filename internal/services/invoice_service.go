package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"repairshop-backend/internal/cache"
	"repairshop-backend/internal/db"
	"repairshop-backend/internal/events"
	"repairshop-backend/internal/metrics"
	"repairshop-backend/internal/models"
	"repairshop-backend/internal/receipt"
	"repairshop-backend/internal/repositories"
)

const defaultSupplier = "Fournisseur"

// InvoiceService applies guided purchase and sale invoices.
type InvoiceService struct {
	Pool      db.Pool
	Purchases *repositories.PurchaseInvoiceRepository
	Products  *repositories.ProductRepository
	Tills     *repositories.TillRepository
	Sales     *SaleService
	Settings  *SettingsService
	Hub       *events.Hub
}

func NewInvoiceService(pool db.Pool, sales *SaleService, settings *SettingsService, hub *events.Hub) *InvoiceService {
	return &InvoiceService{
		Pool:      pool,
		Purchases: repositories.NewPurchaseInvoiceRepository(pool),
		Products:  repositories.NewProductRepository(pool),
		Tills:     repositories.NewTillRepository(pool),
		Sales:     sales,
		Settings:  settings,
		Hub:       hub,
	}
}

// purchaseLine prices one delivered line against the current catalog entry.
func purchaseLine(p *models.Product, req models.PurchaseLineRequest) (models.PurchaseInvoiceLine, error) {
	if req.Quantity < 1 {
		return models.PurchaseInvoiceLine{}, invalid("%s: quantity must be at least 1", p.Name)
	}
	purchase := req.PurchasePrice.Round(2)
	if !purchase.IsPositive() {
		return models.PurchaseInvoiceLine{}, invalid("%s: purchase price must be greater than zero", p.Name)
	}
	sale := purchaseSalePrice(p, req.SalePrice)
	if !sale.IsPositive() {
		return models.PurchaseInvoiceLine{}, invalid("%s: sale price must be greater than zero", p.Name)
	}
	return models.PurchaseInvoiceLine{
		ProductID:     p.ID,
		Label:         p.Name,
		Quantity:      req.Quantity,
		PurchasePrice: purchase,
		SalePrice:     sale,
		Subtotal:      purchase.Mul(decimal.NewFromInt(int64(req.Quantity))),
	}, nil
}

// ApplyPurchaseInvoice receives a supplier delivery: catalog prices are
// replaced, stock is increased and the paid total leaves the till.
func (s *InvoiceService) ApplyPurchaseInvoice(ctx context.Context, req *models.PurchaseInvoiceRequest) (*models.PurchaseInvoiceResult, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	supplier := strings.TrimSpace(req.Supplier)
	if supplier == "" {
		supplier = defaultSupplier
	}

	result := &models.PurchaseInvoiceResult{}
	err := db.RunInTx(ctx, s.Pool, func(tx pgx.Tx) error {
		products := s.Products.WithTx(tx)
		purchases := s.Purchases.WithTx(tx)
		tills := s.Tills.WithTx(tx)

		if req.TillID != nil {
			if _, err := tills.Get(ctx, *req.TillID); err != nil {
				if isNotFound(err) {
					return invalid("till %d does not exist", *req.TillID)
				}
				return err
			}
		}

		inv := &models.PurchaseInvoice{
			DocumentNumber: strings.TrimSpace(req.DocumentNumber),
			Supplier:       supplier,
			TillID:         req.TillID,
			TotalAmount:    decimal.Zero,
		}
		for _, l := range req.Lines {
			p, err := products.GetForUpdate(ctx, l.ProductID)
			if isNotFound(err) {
				return invalid("product %d does not exist", l.ProductID)
			}
			if err != nil {
				return err
			}
			line, err := purchaseLine(p, l)
			if err != nil {
				return err
			}
			if err := products.ApplyPurchase(ctx, p.ID, line.Quantity, line.PurchasePrice, line.SalePrice); err != nil {
				return fmt.Errorf("apply purchase to %s: %w", p.Name, err)
			}
			inv.Lines = append(inv.Lines, line)
			inv.TotalAmount = inv.TotalAmount.Add(line.Subtotal)
		}

		if inv.DocumentNumber == "" {
			number, err := purchases.GenerateNumber(ctx)
			if err != nil {
				return err
			}
			inv.DocumentNumber = number
		}
		if err := purchases.Create(ctx, inv); err != nil {
			return err
		}
		result.Invoice = inv

		if req.TillID != nil && inv.TotalAmount.IsPositive() {
			mv := &models.TillMovement{
				TillID:      *req.TillID,
				Kind:        models.MovementOut,
				Amount:      inv.TotalAmount,
				Description: fmt.Sprintf("Achat %s - %s", inv.DocumentNumber, supplier),
			}
			if err := tills.AddMovement(ctx, mv); err != nil {
				return fmt.Errorf("till movement: %w", err)
			}
			result.Movement = mv
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Voucher = receipt.PurchaseVoucher(s.Settings.ReceiptStore(ctx), result.Invoice)
	cache.InvalidateReportCaches(ctx)
	if result.Movement != nil {
		metrics.TillMovements.WithLabelValues(models.MovementOut).Inc()
		s.Hub.Publish(events.TillMovement, result.Movement)
	}
	s.Hub.Publish(events.ProductsChanged, result.Invoice)
	zap.L().Info("purchase invoice applied",
		zap.Int("invoice_id", result.Invoice.ID),
		zap.String("number", result.Invoice.DocumentNumber),
		zap.String("supplier", supplier),
		zap.String("total", result.Invoice.TotalAmount.StringFixed(2)))
	return result, nil
}

func (s *InvoiceService) GetPurchaseInvoice(ctx context.Context, id int) (*models.PurchaseInvoice, error) {
	return s.Purchases.Get(ctx, id)
}

// ApplySaleInvoice settles like a counter sale but stores a numbered INVOICE.
func (s *InvoiceService) ApplySaleInvoice(ctx context.Context, req *models.SaleInvoiceRequest) (*models.SaleResult, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	return s.Sales.process(ctx, &req.CreateSaleRequest, checkout{
		kind:           models.SaleKindInvoice,
		documentNumber: req.DocumentNumber,
		description:    req.Description,
		movementLabel:  func(sale *models.Sale) string { return "Facture vente " + sale.DocumentNumber },
		debtLabel:      func(sale *models.Sale) string { return sale.DocumentNumber },
	})
}
