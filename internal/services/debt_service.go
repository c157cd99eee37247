package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"repairshop-backend/internal/cache"
	"repairshop-backend/internal/db"
	"repairshop-backend/internal/events"
	"repairshop-backend/internal/metrics"
	"repairshop-backend/internal/models"
	"repairshop-backend/internal/money"
	"repairshop-backend/internal/repositories"
)

type DebtService struct {
	Pool  db.Pool
	Debts *repositories.DebtRepository
	Tills *repositories.TillRepository
	Hub   *events.Hub
}

func NewDebtService(pool db.Pool, hub *events.Hub) *DebtService {
	return &DebtService{
		Pool:  pool,
		Debts: repositories.NewDebtRepository(pool),
		Tills: repositories.NewTillRepository(pool),
		Hub:   hub,
	}
}

// ApplyPayment returns the new paid and remaining amounts of d after a payment.
// Paying more than the remaining balance needs an explicit confirmation.
func ApplyPayment(d *models.Debt, amount decimal.Decimal, confirmOverpay bool) (paid, remaining decimal.Decimal, err error) {
	amount = money.Round2(amount)
	if !amount.IsPositive() {
		return decimal.Zero, decimal.Zero, invalid("payment amount must be greater than zero")
	}
	if amount.GreaterThan(d.RemainingAmount.Add(money.Epsilon)) && !confirmOverpay {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: %s is more than the remaining %s",
			ErrOverpayment, amount.StringFixed(2), d.RemainingAmount.StringFixed(2))
	}
	paid = d.PaidAmount.Add(amount)
	return paid, money.Remaining(d.TotalAmount, paid), nil
}

func (s *DebtService) ListDebts(ctx context.Context, search string, openOnly bool) ([]*models.Debt, error) {
	return s.Debts.List(ctx, strings.TrimSpace(search), openOnly)
}

func (s *DebtService) GetDebt(ctx context.Context, id int) (*models.Debt, error) {
	d, err := s.Debts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Payments, err = s.Debts.ListPayments(ctx, id); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DebtService) CreateDebt(ctx context.Context, req *models.CreateDebtRequest) (*models.Debt, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.ClientName)
	if name == "" {
		return nil, ErrClientRequired
	}
	total, paid := money.Round2(req.Total), money.Round2(req.Paid)
	if !total.IsPositive() {
		return nil, invalid("total must be greater than zero")
	}
	if paid.IsNegative() {
		return nil, invalid("paid must be zero or more")
	}
	due, err := parseDay(req.DueDate)
	if err != nil {
		return nil, err
	}

	debt := &models.Debt{
		ClientName:      name,
		DeviceBrand:     strings.TrimSpace(req.DeviceBrand),
		Description:     strings.TrimSpace(req.Description),
		TotalAmount:     total,
		PaidAmount:      paid,
		RemainingAmount: money.Remaining(total, paid),
		DueDate:         due,
	}
	if err := s.Debts.Create(ctx, debt); err != nil {
		return nil, err
	}
	metrics.DebtsOpened.Inc()
	cache.InvalidateReportCaches(ctx)
	zap.L().Info("debt created", zap.Int("debt_id", debt.ID), zap.String("client", name),
		zap.String("remaining", debt.RemainingAmount.StringFixed(2)))
	return debt, nil
}

// RecordPayment adds a payment and, with a till, the matching ENTREE, in one transaction.
func (s *DebtService) RecordPayment(ctx context.Context, id int, req *models.DebtPaymentRequest) (*models.Debt, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	var (
		debt *models.Debt
		mv   *models.TillMovement
	)
	err := db.RunInTx(ctx, s.Pool, func(tx pgx.Tx) error {
		debts := s.Debts.WithTx(tx)
		d, err := debts.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		paid, remaining, err := ApplyPayment(d, req.Amount, req.ConfirmOverpay)
		if err != nil {
			return err
		}
		amount := money.Round2(req.Amount)

		if req.TillID != nil {
			tills := s.Tills.WithTx(tx)
			if _, err := tills.Get(ctx, *req.TillID); err != nil {
				if isNotFound(err) {
					return invalid("till %d does not exist", *req.TillID)
				}
				return err
			}
			mv = &models.TillMovement{
				TillID:      *req.TillID,
				Kind:        models.MovementIn,
				Amount:      amount,
				Description: fmt.Sprintf("Règlement créance N°%d", d.ID),
			}
			if err := tills.AddMovement(ctx, mv); err != nil {
				return fmt.Errorf("till movement: %w", err)
			}
		}

		if err := debts.AddPayment(ctx, &models.DebtPayment{DebtID: d.ID, Amount: amount, TillID: req.TillID}); err != nil {
			return fmt.Errorf("record payment: %w", err)
		}
		if err := debts.UpdateAmounts(ctx, d.ID, paid, remaining); err != nil {
			return err
		}
		d.PaidAmount, d.RemainingAmount = paid, remaining
		if d.Payments, err = debts.ListPayments(ctx, d.ID); err != nil {
			return err
		}
		debt = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	if mv != nil {
		metrics.TillMovements.WithLabelValues(models.MovementIn).Inc()
		s.Hub.Publish(events.TillMovement, mv)
	}
	cache.InvalidateReportCaches(ctx)
	s.Hub.Publish(events.DebtPaid, debt)
	zap.L().Info("debt payment recorded",
		zap.Int("debt_id", id),
		zap.String("amount", money.Round2(req.Amount).StringFixed(2)),
		zap.String("remaining", debt.RemainingAmount.StringFixed(2)))
	return debt, nil
}

// DeleteDebt removes a settled debt only.
func (s *DebtService) DeleteDebt(ctx context.Context, id int) error {
	err := db.RunInTx(ctx, s.Pool, func(tx pgx.Tx) error {
		debts := s.Debts.WithTx(tx)
		d, err := debts.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if money.Outstanding(d.RemainingAmount) {
			return fmt.Errorf("%w: %s still due", ErrDebtOutstanding, d.RemainingAmount.StringFixed(2))
		}
		return debts.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	cache.InvalidateReportCaches(ctx)
	return nil
}

// OutstandingTotal sums every open balance.
func (s *DebtService) OutstandingTotal(ctx context.Context) (decimal.Decimal, error) {
	return s.Debts.OutstandingTotal(ctx)
}
