package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
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

// Cart is a validated, merged list of sale lines.
type Cart struct {
	Lines []models.SaleLine
	Total decimal.Decimal
}

// BuildCart merges catalog lines sharing product and unit price and computes
// subtotals. Manual lines (no product) are never merged and need a label.
func BuildCart(lines []models.CartLineRequest) (*Cart, error) {
	if len(lines) == 0 {
		return nil, invalid("the cart is empty")
	}
	cart := &Cart{}
	index := map[string]int{}
	for i, l := range lines {
		if l.Quantity < 1 {
			return nil, invalid("line %d: quantity must be at least 1", i+1)
		}
		if l.UnitPrice.IsNegative() {
			return nil, invalid("line %d: unit price must be zero or more", i+1)
		}
		label := strings.TrimSpace(l.Label)
		price := money.Round2(l.UnitPrice)

		if l.ProductID == nil {
			if label == "" {
				return nil, invalid("line %d: a manual line needs a label", i+1)
			}
			cart.Lines = append(cart.Lines, models.SaleLine{Label: label, Quantity: l.Quantity, UnitPrice: price})
			continue
		}

		key := fmt.Sprintf("%d|%s", *l.ProductID, price.StringFixed(2))
		if pos, ok := index[key]; ok {
			cart.Lines[pos].Quantity += l.Quantity
			continue
		}
		id := *l.ProductID
		index[key] = len(cart.Lines)
		cart.Lines = append(cart.Lines, models.SaleLine{ProductID: &id, Label: label, Quantity: l.Quantity, UnitPrice: price})
	}

	cart.Total = decimal.Zero
	for i := range cart.Lines {
		line := &cart.Lines[i]
		line.Subtotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		cart.Total = cart.Total.Add(line.Subtotal)
	}
	return cart, nil
}

// Settle returns the change to hand back and the unpaid remainder.
func Settle(total, paid decimal.Decimal) (change, remaining decimal.Decimal) {
	return money.Change(total, paid), money.Remaining(total, paid)
}

// productDemand sums the requested quantity per product, in product id order.
func productDemand(lines []models.SaleLine) ([]int, map[int]int) {
	demand := map[int]int{}
	for _, l := range lines {
		if l.ProductID != nil {
			demand[*l.ProductID] += l.Quantity
		}
	}
	ids := make([]int, 0, len(demand))
	for id := range demand {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, demand
}

func validPaymentMode(mode string) bool {
	for _, m := range models.PaymentModes {
		if m == mode {
			return true
		}
	}
	return false
}

type SaleService struct {
	Pool     db.Pool
	Sales    *repositories.SaleRepository
	Products *repositories.ProductRepository
	Tills    *repositories.TillRepository
	Debts    *repositories.DebtRepository
	Clients  *repositories.ClientRepository
	Settings *SettingsService
	Hub      *events.Hub
}

func NewSaleService(pool db.Pool, settings *SettingsService, hub *events.Hub) *SaleService {
	return &SaleService{
		Pool:     pool,
		Sales:    repositories.NewSaleRepository(pool),
		Products: repositories.NewProductRepository(pool),
		Tills:    repositories.NewTillRepository(pool),
		Debts:    repositories.NewDebtRepository(pool),
		Clients:  repositories.NewClientRepository(pool),
		Settings: settings,
		Hub:      hub,
	}
}

// checkout describes how a sale is labelled in the ledger and the debts.
type checkout struct {
	kind           string
	documentNumber string
	description    string
	movementLabel  func(*models.Sale) string
	debtLabel      func(*models.Sale) string
}

func (s *SaleService) CreateSale(ctx context.Context, req *models.CreateSaleRequest) (*models.SaleResult, error) {
	return s.process(ctx, req, checkout{
		kind:          models.SaleKindCounter,
		movementLabel: func(sale *models.Sale) string { return fmt.Sprintf("Vente comptoir N°%d", sale.ID) },
		debtLabel:     func(sale *models.Sale) string { return fmt.Sprintf("Vente comptoir N°%d", sale.ID) },
	})
}

// resolveClient picks the debt holder name: an existing client, a client
// created on the spot, or the free-text name.
func (s *SaleService) resolveClient(ctx context.Context, clients *repositories.ClientRepository, req *models.CreateSaleRequest) (string, error) {
	switch {
	case req.ClientID != nil:
		c, err := clients.Get(ctx, *req.ClientID)
		if isNotFound(err) {
			return "", invalid("client %d does not exist", *req.ClientID)
		}
		if err != nil {
			return "", err
		}
		return c.DisplayName(), nil
	case req.NewClient != nil:
		c := &models.Client{
			LastName:  strings.TrimSpace(req.NewClient.LastName),
			FirstName: strings.TrimSpace(req.NewClient.FirstName),
			Phone:     strings.TrimSpace(req.NewClient.Phone),
		}
		if c.LastName == "" {
			return "", invalid("new client: last name is required")
		}
		if err := clients.Create(ctx, c); err != nil {
			return "", fmt.Errorf("create client: %w", err)
		}
		return c.DisplayName(), nil
	default:
		return strings.TrimSpace(req.ClientName), nil
	}
}

func (s *SaleService) process(ctx context.Context, req *models.CreateSaleRequest, co checkout) (*models.SaleResult, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	cart, err := BuildCart(req.Lines)
	if err != nil {
		return nil, err
	}
	if req.Paid.IsNegative() {
		return nil, invalid("paid amount must be zero or more")
	}
	mode := req.PaymentMode
	if mode == "" {
		mode = models.DefaultPaymentMode
	}
	if !validPaymentMode(mode) {
		return nil, invalid("unknown payment mode %q", mode)
	}

	paid := money.Round2(req.Paid)
	change, remaining := Settle(cart.Total, paid)

	result := &models.SaleResult{}
	var lowStock []*models.Product

	err = db.RunInTx(ctx, s.Pool, func(tx pgx.Tx) error {
		tills := s.Tills.WithTx(tx)
		products := s.Products.WithTx(tx)
		sales := s.Sales.WithTx(tx)

		if _, err := tills.Get(ctx, req.TillID); err != nil {
			if isNotFound(err) {
				return invalid("till %d does not exist", req.TillID)
			}
			return err
		}

		clientName, err := s.resolveClient(ctx, s.Clients.WithTx(tx), req)
		if err != nil {
			return err
		}
		if money.Outstanding(remaining) && clientName == "" {
			return ErrClientRequired
		}

		ids, demand := productDemand(cart.Lines)
		catalog := make(map[int]*models.Product, len(ids))
		for _, id := range ids {
			p, err := products.GetForUpdate(ctx, id)
			if isNotFound(err) {
				return invalid("product %d does not exist", id)
			}
			if err != nil {
				return err
			}
			if !p.Active {
				return invalid("product %q is inactive", p.Name)
			}
			if p.Quantity < demand[id] {
				return fmt.Errorf("%w: %s (in stock %d, requested %d)", ErrInsufficientStock, p.Name, p.Quantity, demand[id])
			}
			catalog[id] = p
		}
		for i := range cart.Lines {
			line := &cart.Lines[i]
			if line.ProductID != nil && line.Label == "" {
				line.Label = catalog[*line.ProductID].Name
			}
		}

		number := strings.TrimSpace(co.documentNumber)
		if co.kind == models.SaleKindInvoice && number == "" {
			if number, err = sales.NextInvoiceNumber(ctx); err != nil {
				return err
			}
		}

		sale := &models.Sale{
			TillID:          req.TillID,
			ClientName:      clientName,
			PaymentMode:     mode,
			TotalAmount:     cart.Total,
			PaidAmount:      paid,
			ChangeAmount:    change,
			RemainingAmount: remaining,
			DocumentNumber:  number,
			Description:     strings.TrimSpace(co.description),
			Kind:            co.kind,
			Lines:           cart.Lines,
		}
		if err := sales.Create(ctx, sale); err != nil {
			return err
		}
		result.Sale = sale

		for _, id := range ids {
			qty, err := products.AdjustQuantity(ctx, id, -demand[id])
			if errors.Is(err, repositories.ErrStockUnderflow) {
				return fmt.Errorf("%w: %s", ErrInsufficientStock, catalog[id].Name)
			}
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			p := catalog[id]
			p.Quantity = qty
			if p.LowStock() {
				lowStock = append(lowStock, p)
			}
		}

		if collected := money.Collected(cart.Total, paid); collected.IsPositive() {
			mv := &models.TillMovement{
				TillID:      req.TillID,
				Kind:        models.MovementIn,
				Amount:      collected,
				Description: co.movementLabel(sale),
			}
			if err := tills.AddMovement(ctx, mv); err != nil {
				return fmt.Errorf("till movement: %w", err)
			}
			result.Movement = mv
		}

		if money.Outstanding(remaining) {
			debt := &models.Debt{
				ClientName:      clientName,
				Description:     co.debtLabel(sale),
				TotalAmount:     cart.Total,
				PaidAmount:      paid,
				RemainingAmount: remaining,
				DueDate:         timeutil.Today(),
			}
			if err := s.Debts.WithTx(tx).Create(ctx, debt); err != nil {
				return fmt.Errorf("create debt: %w", err)
			}
			result.Debt = debt
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Receipt = receipt.SaleVoucher(s.Settings.ReceiptStore(ctx), result.Sale)
	s.afterSale(ctx, result, lowStock)
	return result, nil
}

func (s *SaleService) afterSale(ctx context.Context, result *models.SaleResult, lowStock []*models.Product) {
	sale := result.Sale
	metrics.SalesTotal.WithLabelValues(sale.Kind).Inc()
	metrics.SalesAmount.Add(sale.TotalAmount.InexactFloat64())
	if result.Debt != nil {
		metrics.DebtsOpened.Inc()
	}
	if result.Movement != nil {
		metrics.TillMovements.WithLabelValues(models.MovementIn).Inc()
		s.Hub.Publish(events.TillMovement, result.Movement)
	}
	cache.InvalidateReportCaches(ctx)

	s.Hub.Publish(events.SaleCreated, sale)
	for _, p := range lowStock {
		s.Hub.Publish(events.StockLow, p)
	}
	zap.L().Info("sale recorded",
		zap.Int("sale_id", sale.ID),
		zap.String("kind", sale.Kind),
		zap.String("total", sale.TotalAmount.StringFixed(2)),
		zap.String("remaining", sale.RemainingAmount.StringFixed(2)))
}

// ListSales returns sales newest first. Zero bounds are open.
func (s *SaleService) ListSales(ctx context.Context, from, to time.Time) ([]*models.Sale, error) {
	return s.Sales.List(ctx, from, to)
}

func (s *SaleService) GetSale(ctx context.Context, id int) (*models.Sale, error) {
	return s.Sales.Get(ctx, id)
}

// Receipt rebuilds the customer voucher of a recorded sale.
func (s *SaleService) Receipt(ctx context.Context, id int) (string, error) {
	sale, err := s.Sales.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return receipt.SaleVoucher(s.Settings.ReceiptStore(ctx), sale), nil
}

// Invoice is the history preview of a sale.
func (s *SaleService) Invoice(ctx context.Context, id int) (string, error) {
	sale, err := s.Sales.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return receipt.CounterSaleInvoice(s.Settings.ReceiptStore(ctx), sale), nil
}
