package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"repairshop-backend/internal/cache"
	"repairshop-backend/internal/db"
	"repairshop-backend/internal/events"
	"repairshop-backend/internal/metrics"
	"repairshop-backend/internal/models"
	"repairshop-backend/internal/money"
	"repairshop-backend/internal/receipt"
	"repairshop-backend/internal/repositories"
	"repairshop-backend/internal/timeutil"
)

type TicketService struct {
	Pool     db.Pool
	Tickets  *repositories.TicketRepository
	Debts    *repositories.DebtRepository
	Tills    *repositories.TillRepository
	Settings *SettingsService
	Hub      *events.Hub
}

func NewTicketService(pool db.Pool, settings *SettingsService, hub *events.Hub) *TicketService {
	return &TicketService{
		Pool:     pool,
		Tickets:  repositories.NewTicketRepository(pool),
		Debts:    repositories.NewDebtRepository(pool),
		Tills:    repositories.NewTillRepository(pool),
		Settings: settings,
		Hub:      hub,
	}
}

// parseDay parses an optional date, defaulting to today in the store timezone.
func parseDay(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return timeutil.Today(), nil
	}
	t, err := timeutil.ParseDate(value)
	if err != nil {
		return time.Time{}, invalid("invalid date %q, expected YYYY-MM-DD or DD/MM/YYYY", value)
	}
	return t, nil
}

func (s *TicketService) CreateTicket(ctx context.Context, req *models.CreateTicketRequest) (*models.RepairTicket, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ClientName) == "" || strings.TrimSpace(req.DeviceBrand) == "" {
		return nil, invalid("client name and device brand are required")
	}
	deposit, err := parseDay(req.DepositDate)
	if err != nil {
		return nil, err
	}

	ticket := &models.RepairTicket{
		ClientName:       strings.TrimSpace(req.ClientName),
		ClientPhone:      strings.TrimSpace(req.ClientPhone),
		DeviceBrand:      strings.TrimSpace(req.DeviceBrand),
		DeviceModel:      strings.TrimSpace(req.DeviceModel),
		SerialNumber:     strings.TrimSpace(req.SerialNumber),
		WithCharger:      req.WithCharger,
		WithBattery:      req.WithBattery,
		InitialDiagnosis: strings.TrimSpace(req.InitialDiagnosis),
		DepositDate:      deposit,
		Status:           models.TicketStatusInProgress,
	}
	if err := s.Tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	metrics.TicketEvents.WithLabelValues("deposit").Inc()
	cache.InvalidateReportCaches(ctx)
	s.Hub.Publish(events.TicketCreated, ticket)
	zap.L().Info("repair ticket created", zap.Int("ticket_id", ticket.ID), zap.String("device", ticket.DeviceBrand))
	return ticket, nil
}

func (s *TicketService) ListTickets(ctx context.Context, status string) ([]*models.RepairTicket, error) {
	return s.Tickets.List(ctx, repositories.TicketFilter{Status: status})
}

// History lists every ticket except soft-deleted ones.
func (s *TicketService) History(ctx context.Context, search string) ([]*models.RepairTicket, error) {
	return s.Tickets.List(ctx, repositories.TicketFilter{ExcludeDeleted: true, Search: strings.TrimSpace(search)})
}

func (s *TicketService) GetTicket(ctx context.Context, id int) (*models.RepairTicket, error) {
	return s.Tickets.Get(ctx, id)
}

// pickupPlan is everything a pickup will write, computed before touching the store.
type pickupPlan struct {
	Status     string
	PickupDate time.Time
	Total      decimal.Decimal
	Paid       decimal.Decimal
	Remaining  decimal.Decimal
	Collected  decimal.Decimal
	TillID     *int
}

func planPickup(t *models.RepairTicket, req *models.PickupRequest) (*pickupPlan, error) {
	// only a ticket still in the workshop can be picked up, and only once
	if t.Status != models.TicketStatusInProgress {
		return nil, fmt.Errorf("%w: ticket %d is %s", ErrInvalidStatus, t.ID, t.Status)
	}
	if req.Total.IsNegative() || req.Paid.IsNegative() {
		return nil, invalid("total and paid must be zero or more")
	}

	status := req.Status
	if status == "" {
		status = models.TicketStatusDelivered
	}
	if status != models.TicketStatusDelivered && status != models.TicketStatusDone {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	date, err := parseDay(req.PickupDate)
	if err != nil {
		return nil, err
	}

	if req.Paid.IsPositive() && req.TillID == nil {
		return nil, invalid("a till is required when an amount is paid")
	}

	total, paid := money.Round2(req.Total), money.Round2(req.Paid)
	return &pickupPlan{
		Status:     status,
		PickupDate: date,
		Total:      total,
		Paid:       paid,
		Remaining:  money.Remaining(total, paid),
		Collected:  money.Collected(total, paid),
		TillID:     req.TillID,
	}, nil
}

// RecordPickup closes the repair: amounts are stored on the ticket, an unpaid
// balance opens a debt and the collected amount enters the till, all in one transaction.
func (s *TicketService) RecordPickup(ctx context.Context, id int, req *models.PickupRequest) (*models.PickupResult, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	result := &models.PickupResult{}
	err := db.RunInTx(ctx, s.Pool, func(tx pgx.Tx) error {
		tickets := s.Tickets.WithTx(tx)
		tills := s.Tills.WithTx(tx)

		ticket, err := tickets.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		plan, err := planPickup(ticket, req)
		if err != nil {
			return err
		}
		if plan.TillID != nil {
			if _, err := tills.Get(ctx, *plan.TillID); err != nil {
				if isNotFound(err) {
					return invalid("till %d does not exist", *plan.TillID)
				}
				return err
			}
		}

		ticket.WorkDone = strings.TrimSpace(req.WorkDone)
		ticket.PickupDate = &plan.PickupDate
		ticket.TotalAmount = plan.Total
		ticket.PaidAmount = plan.Paid
		ticket.RemainingAmount = plan.Remaining
		ticket.Status = plan.Status
		if err := tickets.RecordPickup(ctx, ticket); err != nil {
			return err
		}
		result.Ticket = ticket
		result.Remaining = plan.Remaining

		if money.Outstanding(plan.Remaining) {
			debt := &models.Debt{
				TicketID:        &ticket.ID,
				ClientName:      ticket.ClientName,
				DeviceBrand:     ticket.DeviceBrand,
				Description:     fmt.Sprintf("Réparation téléphone (ticket N°%d)", ticket.ID),
				TotalAmount:     plan.Total,
				PaidAmount:      plan.Paid,
				RemainingAmount: plan.Remaining,
				DueDate:         plan.PickupDate,
			}
			if err := s.Debts.WithTx(tx).Create(ctx, debt); err != nil {
				return fmt.Errorf("create debt: %w", err)
			}
			result.Debt = debt
		}

		if plan.TillID != nil && plan.Collected.IsPositive() {
			mv := &models.TillMovement{
				TillID:      *plan.TillID,
				Kind:        models.MovementIn,
				Amount:      plan.Collected,
				Description: fmt.Sprintf("Réparation téléphone N°%d", ticket.ID),
			}
			if err := tills.AddMovement(ctx, mv); err != nil {
				return fmt.Errorf("till movement: %w", err)
			}
			result.Movement = mv
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.TicketEvents.WithLabelValues("pickup").Inc()
	cache.InvalidateReportCaches(ctx)
	if result.Debt != nil {
		metrics.DebtsOpened.Inc()
	}
	if result.Movement != nil {
		metrics.TillMovements.WithLabelValues(models.MovementIn).Inc()
		s.Hub.Publish(events.TillMovement, result.Movement)
	}
	s.Hub.Publish(events.TicketPickedUp, result)
	zap.L().Info("repair ticket picked up",
		zap.Int("ticket_id", id),
		zap.String("total", result.Ticket.TotalAmount.StringFixed(2)),
		zap.String("remaining", result.Remaining.StringFixed(2)))
	return result, nil
}

func (s *TicketService) setStatus(ctx context.Context, id int, status string) (*models.RepairTicket, error) {
	var ticket *models.RepairTicket
	err := db.RunInTx(ctx, s.Pool, func(tx pgx.Tx) error {
		tickets := s.Tickets.WithTx(tx)
		t, err := tickets.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t.Status == models.TicketStatusDeleted {
			return fmt.Errorf("%w: ticket %d is deleted", ErrInvalidStatus, id)
		}
		if t.UpdatedAt, err = tickets.UpdateStatus(ctx, id, status); err != nil {
			return err
		}
		t.Status = status
		ticket = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateReportCaches(ctx)
	return ticket, nil
}

// CancelTicket marks the ticket Annulé. Deleted tickets stay deleted.
func (s *TicketService) CancelTicket(ctx context.Context, id int) (*models.RepairTicket, error) {
	t, err := s.setStatus(ctx, id, models.TicketStatusCancelled)
	if err == nil {
		metrics.TicketEvents.WithLabelValues("cancel").Inc()
	}
	return t, err
}

// DeleteTicket is a soft delete: the row stays with status Supprimé.
func (s *TicketService) DeleteTicket(ctx context.Context, id int) (*models.RepairTicket, error) {
	t, err := s.setStatus(ctx, id, models.TicketStatusDeleted)
	if err == nil {
		metrics.TicketEvents.WithLabelValues("delete").Inc()
	}
	return t, err
}

func (s *TicketService) DepositSlip(ctx context.Context, id int) (string, error) {
	t, err := s.Tickets.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return receipt.DepositTicket(s.Settings.ReceiptStore(ctx), t), nil
}

// RepairInvoice is the history preview; deleted tickets are hidden from history.
func (s *TicketService) RepairInvoice(ctx context.Context, id int) (string, error) {
	t, err := s.Tickets.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if t.Status == models.TicketStatusDeleted {
		return "", ErrNotFound
	}
	return receipt.RepairInvoice(s.Settings.ReceiptStore(ctx), t), nil
}

// isNotFound is shared by the services that translate lookups into validation errors.
func isNotFound(err error) bool {
	return errors.Is(err, repositories.ErrNotFound)
}
