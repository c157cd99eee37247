package repositories

import (
	"context"

	"repairshop-backend/internal/db"
	"repairshop-backend/internal/models"
)

type StoreSettingRepository struct {
	DB db.DBTX
}

func NewStoreSettingRepository(conn db.DBTX) *StoreSettingRepository {
	return &StoreSettingRepository{DB: conn}
}

// Get returns ErrNotFound for unknown keys.
func (r *StoreSettingRepository) Get(ctx context.Context, key string) (*models.StoreSetting, error) {
	setting := &models.StoreSetting{}
	err := r.DB.QueryRow(ctx,
		`SELECT key, value, updated_at FROM store_settings WHERE key = $1`, key,
	).Scan(&setting.Key, &setting.Value, &setting.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return setting, nil
}

// Values loads the given keys into a map; missing keys are absent.
func (r *StoreSettingRepository) Values(ctx context.Context, keys ...string) (map[string]string, error) {
	rows, err := r.DB.Query(ctx, `SELECT key, value FROM store_settings WHERE key = ANY($1)`, keys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make(map[string]string, len(keys))
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		values[k] = v
	}
	return values, rows.Err()
}

func (r *StoreSettingRepository) Upsert(ctx context.Context, key, value string) error {
	_, err := r.DB.Exec(ctx,
		`INSERT INTO store_settings (key, value, updated_at)
         VALUES ($1, $2, NOW())
         ON CONFLICT (key)
         DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value)
	return err
}

func (r *StoreSettingRepository) Delete(ctx context.Context, key string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM store_settings WHERE key = $1`, key)
	return err
}
