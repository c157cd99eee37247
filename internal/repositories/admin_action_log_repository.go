package repositories

import (
	"context"

	"repairshop-backend/internal/db"
	"repairshop-backend/internal/models"
)

type AdminActionLogRepository struct {
	DB db.DBTX
}

func NewAdminActionLogRepository(conn db.DBTX) *AdminActionLogRepository {
	return &AdminActionLogRepository{DB: conn}
}

func (r *AdminActionLogRepository) Create(ctx context.Context, log *models.AdminActionLog) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO admin_action_logs (action_type, target_type, target_id, description, ip_address)
         VALUES ($1, $2, $3, $4, $5)
         RETURNING id, created_at`,
		log.ActionType, log.TargetType, log.TargetID, log.Description, log.IPAddress,
	).Scan(&log.ID, &log.CreatedAt)
}

// List returns the most recent actions first.
func (r *AdminActionLogRepository) List(ctx context.Context, limit int) ([]*models.AdminActionLog, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.DB.Query(ctx,
		`SELECT id, action_type, target_type, target_id, description, ip_address, created_at
         FROM admin_action_logs
         ORDER BY created_at DESC, id DESC
         LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.AdminActionLog
	for rows.Next() {
		var l models.AdminActionLog
		if err := rows.Scan(&l.ID, &l.ActionType, &l.TargetType, &l.TargetID, &l.Description, &l.IPAddress, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}
