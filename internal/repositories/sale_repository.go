package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"repairshop-backend/internal/db"
	"repairshop-backend/internal/models"
)

type SaleRepository struct {
	DB db.DBTX
}

func NewSaleRepository(conn db.DBTX) *SaleRepository {
	return &SaleRepository{DB: conn}
}

func (r *SaleRepository) WithTx(tx pgx.Tx) *SaleRepository {
	return &SaleRepository{DB: tx}
}

const saleColumns = `id, sold_at, till_id, client_name, payment_mode, total_amount, paid_amount,
	change_amount, remaining_amount, document_number, description, kind`

func scanSale(row pgx.Row) (*models.Sale, error) {
	var s models.Sale
	err := row.Scan(&s.ID, &s.SoldAt, &s.TillID, &s.ClientName, &s.PaymentMode, &s.TotalAmount, &s.PaidAmount,
		&s.ChangeAmount, &s.RemainingAmount, &s.DocumentNumber, &s.Description, &s.Kind)
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// Create inserts the sale header and its lines. Callers run it inside a transaction.
func (r *SaleRepository) Create(ctx context.Context, s *models.Sale) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO sales(till_id, client_name, payment_mode, total_amount, paid_amount,
			change_amount, remaining_amount, document_number, description, kind)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
         RETURNING id, sold_at`,
		s.TillID, s.ClientName, s.PaymentMode, s.TotalAmount, s.PaidAmount,
		s.ChangeAmount, s.RemainingAmount, s.DocumentNumber, s.Description, s.Kind,
	).Scan(&s.ID, &s.SoldAt)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	for i := range s.Lines {
		line := &s.Lines[i]
		line.SaleID = s.ID
		err := r.DB.QueryRow(ctx,
			`INSERT INTO sale_lines(sale_id, product_id, label, quantity, unit_price, subtotal)
             VALUES($1, $2, $3, $4, $5, $6)
             RETURNING id`,
			line.SaleID, line.ProductID, line.Label, line.Quantity, line.UnitPrice, line.Subtotal,
		).Scan(&line.ID)
		if err != nil {
			return fmt.Errorf("insert sale line: %w", err)
		}
	}
	return nil
}

func (r *SaleRepository) Get(ctx context.Context, id int) (*models.Sale, error) {
	s, err := scanSale(r.DB.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}
	s.Lines, err = r.Lines(ctx, id)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Lines reads the lines of a sale. Lines of deactivated products stay readable.
func (r *SaleRepository) Lines(ctx context.Context, saleID int) ([]models.SaleLine, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, sale_id, product_id, label, quantity, unit_price, subtotal
         FROM sale_lines WHERE sale_id=$1 ORDER BY id`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []models.SaleLine
	for rows.Next() {
		var l models.SaleLine
		if err := rows.Scan(&l.ID, &l.SaleID, &l.ProductID, &l.Label, &l.Quantity, &l.UnitPrice, &l.Subtotal); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// List returns sales between from and to (inclusive, either may be zero), newest first.
func (r *SaleRepository) List(ctx context.Context, from, to time.Time) ([]*models.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE 1=1`
	var args []any
	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(" AND sold_at >= $%d", len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += fmt.Sprintf(" AND sold_at <= $%d", len(args))
	}
	query += ` ORDER BY sold_at DESC, id DESC`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []*models.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

// NextInvoiceNumber draws from a sequence, FV-000001 style.
func (r *SaleRepository) NextInvoiceNumber(ctx context.Context) (string, error) {
	var n int
	if err := r.DB.QueryRow(ctx, "SELECT nextval('sale_invoice_number_sequence')").Scan(&n); err != nil {
		return "", fmt.Errorf("failed to get next invoice number: %w", err)
	}
	return fmt.Sprintf("FV-%06d", n), nil
}
