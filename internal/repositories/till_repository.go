package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"repairshop-backend/internal/db"
	"repairshop-backend/internal/models"
)

type TillRepository struct {
	DB db.DBTX
}

func NewTillRepository(conn db.DBTX) *TillRepository {
	return &TillRepository{DB: conn}
}

func (r *TillRepository) WithTx(tx pgx.Tx) *TillRepository {
	return &TillRepository{DB: tx}
}

func (r *TillRepository) Create(ctx context.Context, t *models.Till) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO tills(name, description) VALUES($1, $2) RETURNING id, created_at`,
		t.Name, t.Description,
	).Scan(&t.ID, &t.CreatedAt)
}

func (r *TillRepository) Get(ctx context.Context, id int) (*models.Till, error) {
	var t models.Till
	err := r.DB.QueryRow(ctx,
		`SELECT id, name, description, created_at FROM tills WHERE id=$1`, id,
	).Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// List returns every till with its balance summed from the full movement history.
func (r *TillRepository) List(ctx context.Context) ([]*models.Till, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT t.id, t.name, t.description, t.created_at,
			COALESCE(SUM(CASE WHEN m.kind = 'ENTREE' THEN m.amount ELSE 0 END), 0)
			- COALESCE(SUM(CASE WHEN m.kind = 'SORTIE' THEN m.amount ELSE 0 END), 0)
         FROM tills t
         LEFT JOIN till_movements m ON m.till_id = t.id
         GROUP BY t.id
         ORDER BY t.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tills []*models.Till
	for rows.Next() {
		var t models.Till
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt, &t.Balance); err != nil {
			return nil, err
		}
		tills = append(tills, &t)
	}
	return tills, rows.Err()
}

func (r *TillRepository) NameExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tills WHERE LOWER(name)=LOWER($1))`, name).Scan(&exists)
	return exists, err
}

// Totals re-scans every movement of the till.
func (r *TillRepository) Totals(ctx context.Context, tillID int) (in, out decimal.Decimal, err error) {
	err = r.DB.QueryRow(ctx,
		`SELECT
			COALESCE(SUM(CASE WHEN kind = 'ENTREE' THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'SORTIE' THEN amount ELSE 0 END), 0)
         FROM till_movements WHERE till_id=$1`, tillID,
	).Scan(&in, &out)
	return in, out, err
}

func (r *TillRepository) AddMovement(ctx context.Context, m *models.TillMovement) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO till_movements(till_id, kind, amount, description)
         VALUES($1, $2, $3, $4)
         RETURNING id, moved_at`,
		m.TillID, m.Kind, m.Amount, m.Description,
	).Scan(&m.ID, &m.MovedAt)
	if err != nil {
		return fmt.Errorf("failed to add till movement: %w", err)
	}
	return nil
}

func (r *TillRepository) GetMovement(ctx context.Context, id int) (*models.TillMovement, error) {
	var m models.TillMovement
	err := r.DB.QueryRow(ctx,
		`SELECT id, till_id, moved_at, kind, amount, description FROM till_movements WHERE id=$1`, id,
	).Scan(&m.ID, &m.TillID, &m.MovedAt, &m.Kind, &m.Amount, &m.Description)
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

// Movements lists a till's movements newest first, optionally bounded in time.
func (r *TillRepository) Movements(ctx context.Context, tillID int, from, to time.Time) ([]*models.TillMovement, error) {
	query := `SELECT id, till_id, moved_at, kind, amount, description FROM till_movements WHERE till_id=$1`
	args := []any{tillID}
	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(" AND moved_at >= $%d", len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += fmt.Sprintf(" AND moved_at <= $%d", len(args))
	}
	query += ` ORDER BY moved_at DESC, id DESC`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []*models.TillMovement
	for rows.Next() {
		var m models.TillMovement
		if err := rows.Scan(&m.ID, &m.TillID, &m.MovedAt, &m.Kind, &m.Amount, &m.Description); err != nil {
			return nil, err
		}
		movements = append(movements, &m)
	}
	return movements, rows.Err()
}

func (r *TillRepository) DeleteMovement(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM till_movements WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
