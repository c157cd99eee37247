package models

import "time"

const DefaultSellerIDType = "Carte identité"

// UsedPhonePurchase is a compliance record for a second-hand phone bought from a private seller.
type UsedPhonePurchase struct {
	ID              int       `json:"id" db:"id"`
	PhoneName       string    `json:"phone_name" db:"phone_name"`
	PhoneBrand      string    `json:"phone_brand" db:"phone_brand"`
	IMEI            string    `json:"imei" db:"imei"`
	PurchaseDate    time.Time `json:"purchase_date" db:"purchase_date"`
	SellerLastName  string    `json:"seller_last_name" db:"seller_last_name"`
	SellerFirstName string    `json:"seller_first_name" db:"seller_first_name"`
	SellerIDType    string    `json:"seller_id_type" db:"seller_id_type"`
	SellerIDNumber  string    `json:"seller_id_number" db:"seller_id_number"`
	SellerIDPlace   string    `json:"seller_id_place" db:"seller_id_place"`
	SellerIDDate    string    `json:"seller_id_date" db:"seller_id_date"`
	SellerPhone     string    `json:"seller_phone" db:"seller_phone"`
	SellerAddress   string    `json:"seller_address" db:"seller_address"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

type CreateUsedPhoneRequest struct {
	PhoneName       string `json:"phone_name" validate:"required,max=120"`
	PhoneBrand      string `json:"phone_brand" validate:"required,max=80"`
	IMEI            string `json:"imei" validate:"max=32"`
	PurchaseDate    string `json:"purchase_date"`
	SellerLastName  string `json:"seller_last_name" validate:"required,max=120"`
	SellerFirstName string `json:"seller_first_name" validate:"max=120"`
	SellerIDType    string `json:"seller_id_type" validate:"max=60"`
	SellerIDNumber  string `json:"seller_id_number" validate:"required,max=60"`
	SellerIDPlace   string `json:"seller_id_place" validate:"max=120"`
	SellerIDDate    string `json:"seller_id_date" validate:"max=20"`
	SellerPhone     string `json:"seller_phone" validate:"max=40"`
	SellerAddress   string `json:"seller_address" validate:"max=255"`
}
