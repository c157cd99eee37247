package models

import "time"

const (
	SettingStoreName         = "store_name"
	SettingStorePhone        = "store_phone"
	SettingStoreLogoPath     = "store_logo_path"
	SettingAdminPasswordHash = "admin_password_hash"
	SettingAdminTOTPSecret   = "admin_totp_secret"
	SettingAdminTOTPEnabled  = "admin_totp_enabled"
)

type StoreSetting struct {
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// StoreSettings is the public view; secrets never leave the settings table.
type StoreSettings struct {
	StoreName     string `json:"store_name"`
	StorePhone    string `json:"store_phone"`
	StoreLogoPath string `json:"store_logo_path"`
}

type UpdateSettingsRequest struct {
	StoreName     string `json:"store_name" validate:"required,max=120"`
	StorePhone    string `json:"store_phone" validate:"max=40"`
	StoreLogoPath string `json:"store_logo_path" validate:"max=255"`
}
