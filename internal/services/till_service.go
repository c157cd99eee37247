package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"repairshop-backend/internal/cache"
	"repairshop-backend/internal/events"
	"repairshop-backend/internal/metrics"
	"repairshop-backend/internal/models"
	"repairshop-backend/internal/repositories"
)

type TillService struct {
	Repo *repositories.TillRepository
	Hub  *events.Hub
}

func NewTillService(repo *repositories.TillRepository, hub *events.Hub) *TillService {
	return &TillService{Repo: repo, Hub: hub}
}

// Balance folds a movement list into its ENTREE and SORTIE totals.
func Balance(tillID int, movements []*models.TillMovement) models.TillBalance {
	b := models.TillBalance{TillID: tillID, TotalIn: decimal.Zero, TotalOut: decimal.Zero}
	for _, m := range movements {
		switch m.Kind {
		case models.MovementIn:
			b.TotalIn = b.TotalIn.Add(m.Amount)
		case models.MovementOut:
			b.TotalOut = b.TotalOut.Add(m.Amount)
		}
	}
	b.Balance = b.TotalIn.Sub(b.TotalOut)
	return b
}

// normalizeMovement checks a manual movement and upper-cases its kind.
func normalizeMovement(req *models.CreateMovementRequest) (string, decimal.Decimal, error) {
	kind := strings.ToUpper(strings.TrimSpace(req.Kind))
	if kind != models.MovementIn && kind != models.MovementOut {
		return "", decimal.Zero, invalid("movement kind must be %s or %s", models.MovementIn, models.MovementOut)
	}
	amount := req.Amount.Round(2)
	if !amount.IsPositive() {
		return "", decimal.Zero, invalid("movement amount must be greater than zero")
	}
	return kind, amount, nil
}

func (s *TillService) ListTills(ctx context.Context) ([]*models.Till, error) {
	return s.Repo.List(ctx)
}

func (s *TillService) CreateTill(ctx context.Context, req *models.CreateTillRequest) (*models.Till, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("till name is required")
	}
	exists, err := s.Repo.NameExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: a till named %q already exists", ErrConflict, name)
	}
	till := &models.Till{Name: name, Description: strings.TrimSpace(req.Description), Balance: decimal.Zero}
	if err := s.Repo.Create(ctx, till); err != nil {
		return nil, err
	}
	zap.L().Info("till created", zap.Int("till_id", till.ID), zap.String("name", name))
	return till, nil
}

// Balance is summed from every movement on each call.
func (s *TillService) Balance(ctx context.Context, tillID int) (*models.TillBalance, error) {
	if _, err := s.Repo.Get(ctx, tillID); err != nil {
		return nil, err
	}
	in, out, err := s.Repo.Totals(ctx, tillID)
	if err != nil {
		return nil, err
	}
	return &models.TillBalance{TillID: tillID, TotalIn: in, TotalOut: out, Balance: in.Sub(out)}, nil
}

func (s *TillService) ListMovements(ctx context.Context, tillID int, from, to time.Time) ([]*models.TillMovement, error) {
	if _, err := s.Repo.Get(ctx, tillID); err != nil {
		return nil, err
	}
	return s.Repo.Movements(ctx, tillID, from, to)
}

func (s *TillService) AddMovement(ctx context.Context, tillID int, req *models.CreateMovementRequest) (*models.TillMovement, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	kind, amount, err := normalizeMovement(req)
	if err != nil {
		return nil, err
	}
	if _, err := s.Repo.Get(ctx, tillID); err != nil {
		return nil, err
	}
	mv := &models.TillMovement{
		TillID:      tillID,
		Kind:        kind,
		Amount:      amount,
		Description: strings.TrimSpace(req.Description),
	}
	if err := s.Repo.AddMovement(ctx, mv); err != nil {
		return nil, err
	}
	metrics.TillMovements.WithLabelValues(kind).Inc()
	cache.InvalidateReportCaches(ctx)
	s.Hub.Publish(events.TillMovement, mv)
	zap.L().Info("till movement added",
		zap.Int("till_id", tillID), zap.String("kind", kind), zap.String("amount", amount.StringFixed(2)))
	return mv, nil
}

// DeleteMovement removes a ledger line; the balance follows on the next read.
func (s *TillService) DeleteMovement(ctx context.Context, id int) (*models.TillMovement, error) {
	mv, err := s.Repo.GetMovement(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.DeleteMovement(ctx, id); err != nil {
		return nil, err
	}
	cache.InvalidateReportCaches(ctx)
	s.Hub.Publish(events.TillMovement, map[string]any{"deleted": id, "till_id": mv.TillID})
	zap.L().Info("till movement deleted", zap.Int("movement_id", id), zap.Int("till_id", mv.TillID))
	return mv, nil
}
