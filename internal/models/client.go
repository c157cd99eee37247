package models

import (
	"strings"
	"time"
)

type Client struct {
	ID        int       `json:"id" db:"id"`
	LastName  string    `json:"last_name" db:"last_name"`
	FirstName string    `json:"first_name" db:"first_name"`
	Phone     string    `json:"phone" db:"phone"`
	Email     string    `json:"email" db:"email"`
	Address   string    `json:"address" db:"address"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DisplayName is "LastName FirstName" without stray spaces.
func (c *Client) DisplayName() string {
	return strings.TrimSpace(c.LastName + " " + c.FirstName)
}

type CreateClientRequest struct {
	LastName  string `json:"last_name" validate:"required,max=120"`
	FirstName string `json:"first_name" validate:"max=120"`
	Phone     string `json:"phone" validate:"max=40"`
	Email     string `json:"email" validate:"omitempty,email"`
	Address   string `json:"address" validate:"max=255"`
}
