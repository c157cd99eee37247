package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"repairshop-backend/internal/db"
	"repairshop-backend/internal/models"
)

type TicketRepository struct {
	DB db.DBTX
}

func NewTicketRepository(conn db.DBTX) *TicketRepository {
	return &TicketRepository{DB: conn}
}

func (r *TicketRepository) WithTx(tx pgx.Tx) *TicketRepository {
	return &TicketRepository{DB: tx}
}

const ticketColumns = `
	id, client_name, client_phone, device_brand, device_model, serial_number,
	with_charger, with_battery, initial_diagnosis, deposit_date,
	COALESCE(work_done, ''), pickup_date,
	COALESCE(total_amount, 0), COALESCE(paid_amount, 0), COALESCE(remaining_amount, 0),
	status, created_at, updated_at`

func scanTicket(row pgx.Row) (*models.RepairTicket, error) {
	var t models.RepairTicket
	err := row.Scan(
		&t.ID, &t.ClientName, &t.ClientPhone, &t.DeviceBrand, &t.DeviceModel, &t.SerialNumber,
		&t.WithCharger, &t.WithBattery, &t.InitialDiagnosis, &t.DepositDate,
		&t.WorkDone, &t.PickupDate,
		&t.TotalAmount, &t.PaidAmount, &t.RemainingAmount,
		&t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *TicketRepository) Create(ctx context.Context, t *models.RepairTicket) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO repair_tickets(
			client_name, client_phone, device_brand, device_model, serial_number,
			with_charger, with_battery, initial_diagnosis, deposit_date, status)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
         RETURNING id, created_at, updated_at`,
		t.ClientName, t.ClientPhone, t.DeviceBrand, t.DeviceModel, t.SerialNumber,
		t.WithCharger, t.WithBattery, t.InitialDiagnosis, t.DepositDate, t.Status,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *TicketRepository) Get(ctx context.Context, id int) (*models.RepairTicket, error) {
	return scanTicket(r.DB.QueryRow(ctx, `SELECT `+ticketColumns+` FROM repair_tickets WHERE id=$1`, id))
}

// GetForUpdate locks the ticket row for the rest of the transaction.
func (r *TicketRepository) GetForUpdate(ctx context.Context, id int) (*models.RepairTicket, error) {
	return scanTicket(r.DB.QueryRow(ctx, `SELECT `+ticketColumns+` FROM repair_tickets WHERE id=$1 FOR UPDATE`, id))
}

// TicketFilter narrows List. Zero values mean no filter.
type TicketFilter struct {
	Status         string
	ExcludeDeleted bool
	Search         string
}

func (r *TicketRepository) List(ctx context.Context, f TicketFilter) ([]*models.RepairTicket, error) {
	query := `SELECT ` + ticketColumns + ` FROM repair_tickets WHERE 1=1`
	var args []any
	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.ExcludeDeleted {
		args = append(args, models.TicketStatusDeleted)
		query += fmt.Sprintf(" AND status <> $%d", len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		query += fmt.Sprintf(` AND (client_name ILIKE $%[1]d OR client_phone ILIKE $%[1]d
			OR device_brand ILIKE $%[1]d OR device_model ILIKE $%[1]d OR serial_number ILIKE $%[1]d)`, len(args))
	}
	query += ` ORDER BY deposit_date DESC, id DESC`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []*models.RepairTicket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// RecordPickup overwrites the pickup fields of a ticket.
func (r *TicketRepository) RecordPickup(ctx context.Context, t *models.RepairTicket) error {
	return r.DB.QueryRow(ctx,
		`UPDATE repair_tickets
         SET work_done=$1, pickup_date=$2, total_amount=$3, paid_amount=$4, remaining_amount=$5,
             status=$6, updated_at=NOW()
         WHERE id=$7
         RETURNING updated_at`,
		t.WorkDone, t.PickupDate, t.TotalAmount, t.PaidAmount, t.RemainingAmount, t.Status, t.ID,
	).Scan(&t.UpdatedAt)
}

func (r *TicketRepository) UpdateStatus(ctx context.Context, id int, status string) (time.Time, error) {
	var updatedAt time.Time
	err := r.DB.QueryRow(ctx,
		`UPDATE repair_tickets SET status=$1, updated_at=NOW() WHERE id=$2 RETURNING updated_at`,
		status, id,
	).Scan(&updatedAt)
	return updatedAt, notFound(err)
}
