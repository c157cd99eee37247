package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"repairshop-backend/internal/cache"
	"repairshop-backend/internal/db"
	"repairshop-backend/internal/events"
	"repairshop-backend/internal/export"
	"repairshop-backend/internal/metrics"
	"repairshop-backend/internal/models"
	"repairshop-backend/internal/repositories"
)

type ProductService struct {
	Pool     db.Pool
	Products *repositories.ProductRepository
	Hub      *events.Hub
}

func NewProductService(pool db.Pool, hub *events.Hub) *ProductService {
	return &ProductService{
		Pool:     pool,
		Products: repositories.NewProductRepository(pool),
		Hub:      hub,
	}
}

// ImportReport summarises a spreadsheet import.
type ImportReport struct {
	Created  int               `json:"created"`
	Updated  int               `json:"updated"`
	Rejected []export.RowError `json:"rejected,omitempty"`
}

func checkProduct(p *models.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return invalid("product name is required")
	}
	if p.PurchasePrice.IsNegative() || p.SalePrice.IsNegative() {
		return invalid("prices must be zero or more")
	}
	if p.Quantity < 0 {
		return invalid("quantity must be zero or more")
	}
	if p.LowStockThreshold < 0 {
		return invalid("low stock threshold must be zero or more")
	}
	return nil
}

func productFromRequest(req *models.CreateProductRequest) *models.Product {
	return &models.Product{
		Name:              strings.TrimSpace(req.Name),
		Barcode:           strings.TrimSpace(req.Barcode),
		Reference:         strings.TrimSpace(req.Reference),
		Category:          strings.TrimSpace(req.Category),
		Description:       strings.TrimSpace(req.Description),
		PurchasePrice:     req.PurchasePrice.Round(2),
		SalePrice:         req.SalePrice.Round(2),
		Quantity:          req.Quantity,
		LowStockThreshold: req.LowStockThreshold,
		Active:            true,
	}
}

// applyProductUpdate copies the set fields of req onto p.
func applyProductUpdate(p *models.Product, req *models.UpdateProductRequest) {
	trim := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	trim(&p.Name, req.Name)
	trim(&p.Barcode, req.Barcode)
	trim(&p.Reference, req.Reference)
	trim(&p.Category, req.Category)
	trim(&p.Description, req.Description)
	if req.PurchasePrice != nil {
		p.PurchasePrice = req.PurchasePrice.Round(2)
	}
	if req.SalePrice != nil {
		p.SalePrice = req.SalePrice.Round(2)
	}
	if req.Quantity != nil {
		p.Quantity = *req.Quantity
	}
	if req.LowStockThreshold != nil {
		p.LowStockThreshold = *req.LowStockThreshold
	}
}

func (s *ProductService) barcodeFree(ctx context.Context, repo *repositories.ProductRepository, barcode string, excludeID int) error {
	if barcode == "" {
		return nil
	}
	inUse, err := repo.BarcodeInUse(ctx, barcode, excludeID)
	if err != nil {
		return err
	}
	if inUse {
		return fmt.Errorf("%w: barcode %s is used by another active product", ErrConflict, barcode)
	}
	return nil
}

func (s *ProductService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	p := productFromRequest(req)
	if err := checkProduct(p); err != nil {
		return nil, err
	}
	if err := s.barcodeFree(ctx, s.Products, p.Barcode, 0); err != nil {
		return nil, err
	}
	if err := s.Products.Create(ctx, p); err != nil {
		return nil, err
	}
	s.changed(ctx, p)
	return p, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id int, req *models.UpdateProductRequest) (*models.Product, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	var product *models.Product
	err := db.RunInTx(ctx, s.Pool, func(tx pgx.Tx) error {
		repo := s.Products.WithTx(tx)
		p, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		applyProductUpdate(p, req)
		if err := checkProduct(p); err != nil {
			return err
		}
		if p.Active {
			if err := s.barcodeFree(ctx, repo, p.Barcode, p.ID); err != nil {
				return err
			}
		}
		if err := repo.Update(ctx, p); err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.changed(ctx, product)
	return product, nil
}

// SetActive deactivates or reactivates a product. Past sale lines keep their label either way.
func (s *ProductService) SetActive(ctx context.Context, id int, active bool) (*models.Product, error) {
	if active {
		p, err := s.Products.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := s.barcodeFree(ctx, s.Products, p.Barcode, p.ID); err != nil {
			return nil, err
		}
	}
	if err := s.Products.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	p, err := s.Products.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.changed(ctx, p)
	return p, nil
}

func (s *ProductService) AdjustStock(ctx context.Context, id int, req *models.StockAdjustmentRequest) (*models.Product, error) {
	if req.Delta == 0 {
		return nil, invalid("delta must not be zero")
	}
	qty, err := s.Products.AdjustQuantity(ctx, id, req.Delta)
	if errors.Is(err, repositories.ErrStockUnderflow) {
		return nil, fmt.Errorf("%w: adjustment of %d would make stock negative", ErrInsufficientStock, req.Delta)
	}
	if err != nil {
		return nil, err
	}
	p, err := s.Products.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	zap.L().Info("stock adjusted", zap.Int("product_id", id), zap.Int("delta", req.Delta), zap.Int("quantity", qty))
	s.changed(ctx, p)
	return p, nil
}

func (s *ProductService) ListProducts(ctx context.Context, search string, activeOnly bool) ([]*models.Product, error) {
	return s.Products.List(ctx, strings.TrimSpace(search), activeOnly)
}

func (s *ProductService) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	return s.Products.Get(ctx, id)
}

func (s *ProductService) FindByBarcode(ctx context.Context, code string) (*models.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, invalid("barcode is required")
	}
	return s.Products.FindByBarcode(ctx, code)
}

// LowStock lists active products at or under their threshold and refreshes the gauge.
func (s *ProductService) LowStock(ctx context.Context) ([]*models.Product, error) {
	products, err := s.Products.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	metrics.LowStockProducts.Set(float64(len(products)))
	return products, nil
}

func (s *ProductService) Export(ctx context.Context) ([]byte, error) {
	products, err := s.Products.List(ctx, "", false)
	if err != nil {
		return nil, err
	}
	return export.ProductsXLSX(products)
}

// Import upserts spreadsheet rows, matching on reference then barcode. Valid
// rows are applied in one transaction; bad rows are reported and skipped.
func (s *ProductService) Import(ctx context.Context, r io.Reader) (*ImportReport, error) {
	rows, rejected, err := export.ParseProducts(r)
	if err != nil {
		return nil, invalid("%v", err)
	}
	report := &ImportReport{Rejected: rejected}

	err = db.RunInTx(ctx, s.Pool, func(tx pgx.Tx) error {
		repo := s.Products.WithTx(tx)
		for _, row := range rows {
			incoming := productFromRequest(&row.Product)
			existing, err := s.match(ctx, repo, incoming)
			if err != nil {
				return err
			}

			if existing == nil {
				if err := s.barcodeFree(ctx, repo, incoming.Barcode, 0); err != nil {
					report.Rejected = append(report.Rejected, export.RowError{Line: row.Line, Message: err.Error()})
					continue
				}
				if err := repo.Create(ctx, incoming); err != nil {
					return fmt.Errorf("line %d: %w", row.Line, err)
				}
				report.Created++
				continue
			}

			incoming.ID = existing.ID
			if incoming.Reference == "" {
				incoming.Reference = existing.Reference
			}
			if incoming.Barcode == "" {
				incoming.Barcode = existing.Barcode
			}
			if existing.Active {
				if err := s.barcodeFree(ctx, repo, incoming.Barcode, existing.ID); err != nil {
					report.Rejected = append(report.Rejected, export.RowError{Line: row.Line, Message: err.Error()})
					continue
				}
			}
			if err := repo.Update(ctx, incoming); err != nil {
				return fmt.Errorf("line %d: %w", row.Line, err)
			}
			report.Updated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("products imported",
		zap.Int("created", report.Created), zap.Int("updated", report.Updated), zap.Int("rejected", len(report.Rejected)))
	cache.InvalidateReportCaches(ctx)
	s.Hub.Publish(events.ProductsChanged, report)
	return report, nil
}

func (s *ProductService) match(ctx context.Context, repo *repositories.ProductRepository, p *models.Product) (*models.Product, error) {
	if p.Reference != "" {
		existing, err := repo.FindByReference(ctx, p.Reference)
		if err == nil || !isNotFound(err) {
			return existing, err
		}
	}
	if p.Barcode != "" {
		existing, err := repo.FindByBarcode(ctx, p.Barcode)
		if err == nil || !isNotFound(err) {
			return existing, err
		}
	}
	return nil, nil
}

func (s *ProductService) changed(ctx context.Context, p *models.Product) {
	cache.InvalidateReportCaches(ctx)
	s.Hub.Publish(events.ProductsChanged, p)
	if p.LowStock() {
		s.Hub.Publish(events.StockLow, p)
	}
}

// purchaseSalePrice keeps the catalog sale price when the delivery does not set one.
func purchaseSalePrice(p *models.Product, requested *decimal.Decimal) decimal.Decimal {
	if requested == nil || requested.IsZero() {
		return p.SalePrice
	}
	return requested.Round(2)
}
