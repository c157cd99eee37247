package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"repairshop-backend/internal/db"
	"repairshop-backend/internal/models"
)

// ErrStockUnderflow is returned when a stock change would take a product below zero.
var ErrStockUnderflow = errors.New("stock would go negative")

type ProductRepository struct {
	DB db.DBTX
}

func NewProductRepository(conn db.DBTX) *ProductRepository {
	return &ProductRepository{DB: conn}
}

func (r *ProductRepository) WithTx(tx pgx.Tx) *ProductRepository {
	return &ProductRepository{DB: tx}
}

const productColumns = `id, barcode, reference, name, category, description,
	purchase_price, sale_price, quantity, low_stock_threshold, active, created_at, updated_at`

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Barcode, &p.Reference, &p.Name, &p.Category, &p.Description,
		&p.PurchasePrice, &p.SalePrice, &p.Quantity, &p.LowStockThreshold, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *ProductRepository) collect(ctx context.Context, query string, args ...any) ([]*models.Product, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO products(barcode, reference, name, category, description,
			purchase_price, sale_price, quantity, low_stock_threshold, active)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE)
         RETURNING id, active, created_at, updated_at`,
		p.Barcode, p.Reference, p.Name, p.Category, p.Description,
		p.PurchasePrice, p.SalePrice, p.Quantity, p.LowStockThreshold,
	).Scan(&p.ID, &p.Active, &p.CreatedAt, &p.UpdatedAt)
}

func (r *ProductRepository) Get(ctx context.Context, id int) (*models.Product, error) {
	return scanProduct(r.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
}

// GetForUpdate locks the product row until the surrounding transaction ends.
func (r *ProductRepository) GetForUpdate(ctx context.Context, id int) (*models.Product, error) {
	return scanProduct(r.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1 FOR UPDATE`, id))
}

// List searches name, reference, barcode and category.
func (r *ProductRepository) List(ctx context.Context, search string, activeOnly bool) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	var args []any
	if activeOnly {
		query += ` AND active`
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += fmt.Sprintf(` AND (name ILIKE $%[1]d OR reference ILIKE $%[1]d
			OR barcode ILIKE $%[1]d OR category ILIKE $%[1]d)`, len(args))
	}
	query += ` ORDER BY name, id`
	return r.collect(ctx, query, args...)
}

// FindByBarcode only considers active products.
func (r *ProductRepository) FindByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	return scanProduct(r.DB.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE barcode=$1 AND active ORDER BY id LIMIT 1`, barcode))
}

// FindByReference matches active or inactive products, used by imports.
func (r *ProductRepository) FindByReference(ctx context.Context, reference string) (*models.Product, error) {
	return scanProduct(r.DB.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE reference=$1 ORDER BY active DESC, id LIMIT 1`, reference))
}

// BarcodeInUse reports whether another active product already carries barcode.
func (r *ProductRepository) BarcodeInUse(ctx context.Context, barcode string, excludeID int) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE barcode=$1 AND active AND id<>$2)`,
		barcode, excludeID,
	).Scan(&exists)
	return exists, err
}

func (r *ProductRepository) LowStock(ctx context.Context) ([]*models.Product, error) {
	return r.collect(ctx,
		`SELECT `+productColumns+` FROM products
         WHERE active AND low_stock_threshold > 0 AND quantity <= low_stock_threshold
         ORDER BY quantity, name`)
}

func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	err := r.DB.QueryRow(ctx,
		`UPDATE products SET barcode=$1, reference=$2, name=$3, category=$4, description=$5,
			purchase_price=$6, sale_price=$7, quantity=$8, low_stock_threshold=$9, updated_at=NOW()
         WHERE id=$10
         RETURNING updated_at`,
		p.Barcode, p.Reference, p.Name, p.Category, p.Description,
		p.PurchasePrice, p.SalePrice, p.Quantity, p.LowStockThreshold, p.ID,
	).Scan(&p.UpdatedAt)
	return notFound(err)
}

func (r *ProductRepository) SetActive(ctx context.Context, id int, active bool) error {
	tag, err := r.DB.Exec(ctx, `UPDATE products SET active=$1, updated_at=NOW() WHERE id=$2`, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustQuantity applies a signed delta and returns the new quantity.
func (r *ProductRepository) AdjustQuantity(ctx context.Context, id int, delta int) (int, error) {
	var qty int
	err := r.DB.QueryRow(ctx,
		`UPDATE products SET quantity = quantity + $2, updated_at=NOW()
         WHERE id=$1 AND quantity + $2 >= 0
         RETURNING quantity`,
		id, delta,
	).Scan(&qty)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return 0, getErr
		}
		return 0, ErrStockUnderflow
	}
	return qty, err
}

// ApplyPurchase sets both prices and adds qty to stock.
func (r *ProductRepository) ApplyPurchase(ctx context.Context, id int, qty int, purchasePrice, salePrice decimal.Decimal) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE products SET purchase_price=$2, sale_price=$3, quantity = quantity + $4, updated_at=NOW()
         WHERE id=$1`,
		id, purchasePrice, salePrice, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
