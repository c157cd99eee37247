package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"repairshop-backend/internal/db"
	"repairshop-backend/internal/models"
)

type ClientRepository struct {
	DB db.DBTX
}

func NewClientRepository(conn db.DBTX) *ClientRepository {
	return &ClientRepository{DB: conn}
}

func (r *ClientRepository) WithTx(tx pgx.Tx) *ClientRepository {
	return &ClientRepository{DB: tx}
}

const clientColumns = `id, last_name, first_name, phone, email, address, created_at`

func scanClient(row pgx.Row) (*models.Client, error) {
	var c models.Client
	err := row.Scan(&c.ID, &c.LastName, &c.FirstName, &c.Phone, &c.Email, &c.Address, &c.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *ClientRepository) Create(ctx context.Context, c *models.Client) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO clients(last_name, first_name, phone, email, address)
         VALUES($1, $2, $3, $4, $5)
         RETURNING id, created_at`,
		c.LastName, c.FirstName, c.Phone, c.Email, c.Address,
	).Scan(&c.ID, &c.CreatedAt)
}

func (r *ClientRepository) Get(ctx context.Context, id int) (*models.Client, error) {
	return scanClient(r.DB.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id=$1`, id))
}

// List returns clients ordered by name; search matches name or phone.
func (r *ClientRepository) List(ctx context.Context, search string) ([]*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients`
	var args []any
	if search != "" {
		query += ` WHERE last_name ILIKE $1 OR first_name ILIKE $1 OR phone ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY last_name, first_name, id`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *ClientRepository) Update(ctx context.Context, c *models.Client) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE clients SET last_name=$1, first_name=$2, phone=$3, email=$4, address=$5
         WHERE id=$6`,
		c.LastName, c.FirstName, c.Phone, c.Email, c.Address, c.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
