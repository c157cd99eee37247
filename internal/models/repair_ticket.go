package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TicketStatusInProgress = "En cours"
	TicketStatusDone       = "Terminé"
	TicketStatusDelivered  = "Livré"
	TicketStatusCancelled  = "Annulé"
	TicketStatusDeleted    = "Supprimé"
)

type RepairTicket struct {
	ID               int             `json:"id" db:"id"`
	ClientName       string          `json:"client_name" db:"client_name"`
	ClientPhone      string          `json:"client_phone" db:"client_phone"`
	DeviceBrand      string          `json:"device_brand" db:"device_brand"`
	DeviceModel      string          `json:"device_model" db:"device_model"`
	SerialNumber     string          `json:"serial_number" db:"serial_number"`
	WithCharger      bool            `json:"with_charger" db:"with_charger"`
	WithBattery      bool            `json:"with_battery" db:"with_battery"`
	InitialDiagnosis string          `json:"initial_diagnosis" db:"initial_diagnosis"`
	DepositDate      time.Time       `json:"deposit_date" db:"deposit_date"`
	WorkDone         string          `json:"work_done" db:"work_done"`
	PickupDate       *time.Time      `json:"pickup_date,omitempty" db:"pickup_date"`
	TotalAmount      decimal.Decimal `json:"total_amount" db:"total_amount"`
	PaidAmount       decimal.Decimal `json:"paid_amount" db:"paid_amount"`
	RemainingAmount  decimal.Decimal `json:"remaining_amount" db:"remaining_amount"`
	Status           string          `json:"status" db:"status"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}


type CreateTicketRequest struct {
	ClientName       string `json:"client_name" validate:"required,max=160"`
	ClientPhone      string `json:"client_phone" validate:"max=40"`
	DeviceBrand      string `json:"device_brand" validate:"required,max=80"`
	DeviceModel      string `json:"device_model" validate:"max=80"`
	SerialNumber     string `json:"serial_number" validate:"max=80"`
	WithCharger      bool   `json:"with_charger"`
	WithBattery      bool   `json:"with_battery"`
	InitialDiagnosis string `json:"initial_diagnosis"`
	DepositDate      string `json:"deposit_date"`
}

type PickupRequest struct {
	WorkDone   string          `json:"work_done"`
	Total      decimal.Decimal `json:"total"`
	Paid       decimal.Decimal `json:"paid"`
	PickupDate string          `json:"pickup_date"`
	Status     string          `json:"status" validate:"omitempty,oneof=Livré Terminé"`
	TillID     *int            `json:"till_id"`
}

type PickupResult struct {
	Ticket    *RepairTicket   `json:"ticket"`
	Remaining decimal.Decimal `json:"remaining"`
	Debt      *Debt           `json:"debt,omitempty"`
	Movement  *TillMovement   `json:"movement,omitempty"`
}
