package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"repairshop-backend/internal/db"
	"repairshop-backend/internal/models"
)

type UsedPhoneRepository struct {
	DB db.DBTX
}

func NewUsedPhoneRepository(conn db.DBTX) *UsedPhoneRepository {
	return &UsedPhoneRepository{DB: conn}
}

const usedPhoneColumns = `id, phone_name, phone_brand, imei, purchase_date, seller_last_name, seller_first_name,
	seller_id_type, seller_id_number, seller_id_place, seller_id_date, seller_phone, seller_address, created_at`

func scanUsedPhone(row pgx.Row) (*models.UsedPhonePurchase, error) {
	var u models.UsedPhonePurchase
	err := row.Scan(&u.ID, &u.PhoneName, &u.PhoneBrand, &u.IMEI, &u.PurchaseDate, &u.SellerLastName, &u.SellerFirstName,
		&u.SellerIDType, &u.SellerIDNumber, &u.SellerIDPlace, &u.SellerIDDate, &u.SellerPhone, &u.SellerAddress, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UsedPhoneRepository) Create(ctx context.Context, u *models.UsedPhonePurchase) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO used_phone_purchases(phone_name, phone_brand, imei, purchase_date,
			seller_last_name, seller_first_name, seller_id_type, seller_id_number,
			seller_id_place, seller_id_date, seller_phone, seller_address)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
         RETURNING id, created_at`,
		u.PhoneName, u.PhoneBrand, u.IMEI, u.PurchaseDate,
		u.SellerLastName, u.SellerFirstName, u.SellerIDType, u.SellerIDNumber,
		u.SellerIDPlace, u.SellerIDDate, u.SellerPhone, u.SellerAddress,
	).Scan(&u.ID, &u.CreatedAt)
}

func (r *UsedPhoneRepository) Get(ctx context.Context, id int) (*models.UsedPhonePurchase, error) {
	return scanUsedPhone(r.DB.QueryRow(ctx, `SELECT `+usedPhoneColumns+` FROM used_phone_purchases WHERE id=$1`, id))
}

func (r *UsedPhoneRepository) List(ctx context.Context, search string) ([]*models.UsedPhonePurchase, error) {
	query := `SELECT ` + usedPhoneColumns + ` FROM used_phone_purchases`
	var args []any
	if search != "" {
		args = append(args, "%"+search+"%")
		query += ` WHERE phone_name ILIKE $1 OR phone_brand ILIKE $1 OR imei ILIKE $1
			OR seller_last_name ILIKE $1 OR seller_id_number ILIKE $1`
	}
	query += ` ORDER BY purchase_date DESC, id DESC`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.UsedPhonePurchase
	for rows.Next() {
		u, err := scanUsedPhone(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, u)
	}
	return records, rows.Err()
}

func (r *UsedPhoneRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM used_phone_purchases WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
