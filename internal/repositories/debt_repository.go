package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"repairshop-backend/internal/db"
	"repairshop-backend/internal/models"
)

type DebtRepository struct {
	DB db.DBTX
}

func NewDebtRepository(conn db.DBTX) *DebtRepository {
	return &DebtRepository{DB: conn}
}

func (r *DebtRepository) WithTx(tx pgx.Tx) *DebtRepository {
	return &DebtRepository{DB: tx}
}

const debtColumns = `id, ticket_id, client_name, device_brand, description,
	total_amount, paid_amount, remaining_amount, due_date, created_at, updated_at`

func scanDebt(row pgx.Row) (*models.Debt, error) {
	var d models.Debt
	err := row.Scan(&d.ID, &d.TicketID, &d.ClientName, &d.DeviceBrand, &d.Description,
		&d.TotalAmount, &d.PaidAmount, &d.RemainingAmount, &d.DueDate, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (r *DebtRepository) Create(ctx context.Context, d *models.Debt) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO debts(ticket_id, client_name, device_brand, description,
			total_amount, paid_amount, remaining_amount, due_date)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8)
         RETURNING id, created_at, updated_at`,
		d.TicketID, d.ClientName, d.DeviceBrand, d.Description,
		d.TotalAmount, d.PaidAmount, d.RemainingAmount, d.DueDate,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

func (r *DebtRepository) Get(ctx context.Context, id int) (*models.Debt, error) {
	return scanDebt(r.DB.QueryRow(ctx, `SELECT `+debtColumns+` FROM debts WHERE id=$1`, id))
}

func (r *DebtRepository) GetForUpdate(ctx context.Context, id int) (*models.Debt, error) {
	return scanDebt(r.DB.QueryRow(ctx, `SELECT `+debtColumns+` FROM debts WHERE id=$1 FOR UPDATE`, id))
}

// List returns debts newest due date first. openOnly keeps rows with a remaining balance.
func (r *DebtRepository) List(ctx context.Context, search string, openOnly bool) ([]*models.Debt, error) {
	query := `SELECT ` + debtColumns + ` FROM debts WHERE 1=1`
	var args []any
	if search != "" {
		args = append(args, "%"+search+"%")
		query += ` AND (client_name ILIKE $1 OR description ILIKE $1 OR device_brand ILIKE $1)`
	}
	if openOnly {
		query += ` AND remaining_amount > 0.01`
	}
	query += ` ORDER BY due_date DESC, id DESC`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var debts []*models.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		debts = append(debts, d)
	}
	return debts, rows.Err()
}

func (r *DebtRepository) UpdateAmounts(ctx context.Context, id int, paid, remaining decimal.Decimal) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE debts SET paid_amount=$1, remaining_amount=$2, updated_at=NOW() WHERE id=$3`,
		paid, remaining, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *DebtRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM debts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *DebtRepository) AddPayment(ctx context.Context, p *models.DebtPayment) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO debt_payments(debt_id, amount, till_id)
         VALUES($1, $2, $3)
         RETURNING id, paid_at`,
		p.DebtID, p.Amount, p.TillID,
	).Scan(&p.ID, &p.PaidAt)
}

func (r *DebtRepository) ListPayments(ctx context.Context, debtID int) ([]models.DebtPayment, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, debt_id, amount, till_id, paid_at
         FROM debt_payments WHERE debt_id=$1 ORDER BY paid_at, id`, debtID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []models.DebtPayment
	for rows.Next() {
		var p models.DebtPayment
		if err := rows.Scan(&p.ID, &p.DebtID, &p.Amount, &p.TillID, &p.PaidAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// OutstandingTotal sums every open balance.
func (r *DebtRepository) OutstandingTotal(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.DB.QueryRow(ctx, `SELECT COALESCE(SUM(remaining_amount), 0) FROM debts`).Scan(&total)
	return total, err
}
