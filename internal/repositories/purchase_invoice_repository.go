package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"repairshop-backend/internal/db"
	"repairshop-backend/internal/models"
)

type PurchaseInvoiceRepository struct {
	DB db.DBTX
}

func NewPurchaseInvoiceRepository(conn db.DBTX) *PurchaseInvoiceRepository {
	return &PurchaseInvoiceRepository{DB: conn}
}

func (r *PurchaseInvoiceRepository) WithTx(tx pgx.Tx) *PurchaseInvoiceRepository {
	return &PurchaseInvoiceRepository{DB: tx}
}

// GenerateNumber uses a sequence instead of COUNT.
func (r *PurchaseInvoiceRepository) GenerateNumber(ctx context.Context) (string, error) {
	var n int
	if err := r.DB.QueryRow(ctx, "SELECT nextval('purchase_invoice_number_sequence')").Scan(&n); err != nil {
		return "", fmt.Errorf("failed to get next purchase number: %w", err)
	}
	return fmt.Sprintf("BA-%06d", n), nil
}

func (r *PurchaseInvoiceRepository) Create(ctx context.Context, inv *models.PurchaseInvoice) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO purchase_invoices(document_number, supplier, till_id, total_amount)
         VALUES($1, $2, $3, $4)
         RETURNING id, created_at`,
		inv.DocumentNumber, inv.Supplier, inv.TillID, inv.TotalAmount,
	).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert purchase invoice: %w", err)
	}

	for i := range inv.Lines {
		line := &inv.Lines[i]
		line.InvoiceID = inv.ID
		err := r.DB.QueryRow(ctx,
			`INSERT INTO purchase_invoice_lines(invoice_id, product_id, label, quantity, purchase_price, sale_price, subtotal)
             VALUES($1, $2, $3, $4, $5, $6, $7)
             RETURNING id`,
			line.InvoiceID, line.ProductID, line.Label, line.Quantity, line.PurchasePrice, line.SalePrice, line.Subtotal,
		).Scan(&line.ID)
		if err != nil {
			return fmt.Errorf("insert purchase invoice line: %w", err)
		}
	}
	return nil
}

func (r *PurchaseInvoiceRepository) Get(ctx context.Context, id int) (*models.PurchaseInvoice, error) {
	var inv models.PurchaseInvoice
	err := r.DB.QueryRow(ctx,
		`SELECT id, document_number, supplier, till_id, total_amount, created_at
         FROM purchase_invoices WHERE id=$1`, id,
	).Scan(&inv.ID, &inv.DocumentNumber, &inv.Supplier, &inv.TillID, &inv.TotalAmount, &inv.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}

	rows, err := r.DB.Query(ctx,
		`SELECT id, invoice_id, COALESCE(product_id, 0), label, quantity, purchase_price, sale_price, subtotal
         FROM purchase_invoice_lines WHERE invoice_id=$1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var l models.PurchaseInvoiceLine
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.ProductID, &l.Label, &l.Quantity,
			&l.PurchasePrice, &l.SalePrice, &l.Subtotal); err != nil {
			return nil, err
		}
		inv.Lines = append(inv.Lines, l)
	}
	return &inv, rows.Err()
}
