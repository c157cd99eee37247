package models

import "time"

type AdminActionLog struct {
	ID          int       `json:"id" db:"id"`
	ActionType  string    `json:"action_type" db:"action_type"`
	TargetType  string    `json:"target_type" db:"target_type"`
	TargetID    *int      `json:"target_id,omitempty" db:"target_id"`
	Description string    `json:"description" db:"description"`
	IPAddress   *string   `json:"ip_address,omitempty" db:"ip_address"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type AdminStatus struct {
	PasswordSet   bool `json:"password_set"`
	TOTPEnabled   bool `json:"totp_enabled"`
	Authenticated bool `json:"authenticated"`
}

type AdminLoginRequest struct {
	Password string `json:"password" validate:"required"`
	Code     string `json:"code" validate:"omitempty,len=6,numeric"`
}

type AdminSetupRequest struct {
	Password string `json:"password" validate:"required,min=4,max=72"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=4,max=72"`
}

type TOTPCodeRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

type TOTPSetup struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
}

type AdminSession struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
