package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"repairshop-backend/internal/cache"
	"repairshop-backend/internal/export"
	"repairshop-backend/internal/models"
	"repairshop-backend/internal/receipt"
	"repairshop-backend/internal/timeutil"
)

const dashboardCacheTTL = time.Minute

// Dashboard is the counter-screen summary of the current day.
type Dashboard struct {
	Date             string          `json:"date"`
	SalesCount       int             `json:"sales_count"`
	SalesTotal       decimal.Decimal `json:"sales_total"`
	Collected        decimal.Decimal `json:"collected"`
	OpenTickets      int             `json:"open_tickets"`
	LowStockProducts int             `json:"low_stock_products"`
	DebtsOutstanding decimal.Decimal `json:"debts_outstanding"`
	Tills            []*models.Till  `json:"tills"`
}

// HistoryService serves past repairs and sales with their documents and exports.
type HistoryService struct {
	Tickets  *TicketService
	Sales    *SaleService
	Products *ProductService
	Debts    *DebtService
	Tills    *TillService
}

func NewHistoryService(tickets *TicketService, sales *SaleService, products *ProductService, debts *DebtService, tills *TillService) *HistoryService {
	return &HistoryService{Tickets: tickets, Sales: sales, Products: products, Debts: debts, Tills: tills}
}

func (s *HistoryService) RepairHistory(ctx context.Context, search string) ([]*models.RepairTicket, error) {
	return s.Tickets.History(ctx, search)
}

func (s *HistoryService) RepairInvoice(ctx context.Context, id int) (string, error) {
	return s.Tickets.RepairInvoice(ctx, id)
}

func (s *HistoryService) RepairInvoicePDF(ctx context.Context, id int) ([]byte, error) {
	text, err := s.Tickets.RepairInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	return receipt.PDF("Facture réparation", text)
}

// SaleHistory lists past sales; it is read-only.
func (s *HistoryService) SaleHistory(ctx context.Context, from, to time.Time) ([]*models.Sale, error) {
	return s.Sales.ListSales(ctx, from, to)
}

func (s *HistoryService) SaleInvoice(ctx context.Context, id int) (string, error) {
	return s.Sales.Invoice(ctx, id)
}

func (s *HistoryService) SaleInvoicePDF(ctx context.Context, id int) ([]byte, error) {
	text, err := s.Sales.Invoice(ctx, id)
	if err != nil {
		return nil, err
	}
	return receipt.PDF("Facture vente", text)
}

// salesWithLines loads the lines of every sale in the range.
func (s *HistoryService) salesWithLines(ctx context.Context, from, to time.Time) ([]*models.Sale, error) {
	sales, err := s.Sales.ListSales(ctx, from, to)
	if err != nil {
		return nil, err
	}
	for _, sale := range sales {
		if sale.Lines, err = s.Sales.Sales.Lines(ctx, sale.ID); err != nil {
			return nil, err
		}
	}
	return sales, nil
}

func (s *HistoryService) ExportSales(ctx context.Context, from, to time.Time) ([]byte, error) {
	sales, err := s.salesWithLines(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return export.SalesXLSX(sales)
}

func (s *HistoryService) DailyCSV(ctx context.Context, from, to time.Time) ([]byte, error) {
	sales, err := s.Sales.ListSales(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return export.DailyCSV(export.SummarizeDays(sales))
}

// Dashboard serves the day's aggregates from a short cache that every
// cash-affecting write invalidates. Till balances are read fresh on every call.
func (s *HistoryService) Dashboard(ctx context.Context) (*Dashboard, error) {
	d, err := s.dashboardSummary(ctx)
	if err != nil {
		return nil, err
	}
	if d.Tills, err = s.Tills.ListTills(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// dashboardSummary returns everything but the tills, cached for dashboardCacheTTL.
func (s *HistoryService) dashboardSummary(ctx context.Context) (*Dashboard, error) {
	if data, ok := cache.GetCached(ctx, cache.DashboardKey); ok {
		var cached Dashboard
		if err := json.Unmarshal(data, &cached); err == nil {
			cached.Tills = nil
			return &cached, nil
		}
	}

	today := timeutil.Today()
	sales, err := s.Sales.ListSales(ctx, timeutil.StartOfDay(today), timeutil.EndOfDay(today))
	if err != nil {
		return nil, err
	}
	d := summarizeSales(today, sales)

	open, err := s.Tickets.ListTickets(ctx, models.TicketStatusInProgress)
	if err != nil {
		return nil, err
	}
	d.OpenTickets = len(open)

	low, err := s.Products.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	d.LowStockProducts = len(low)

	if d.DebtsOutstanding, err = s.Debts.OutstandingTotal(ctx); err != nil {
		return nil, err
	}

	if data, err := json.Marshal(d); err == nil {
		cache.SetCached(ctx, cache.DashboardKey, data, dashboardCacheTTL)
	} else {
		zap.L().Warn("dashboard not cached", zap.Error(err))
	}
	return d, nil
}

func summarizeSales(day time.Time, sales []*models.Sale) *Dashboard {
	d := &Dashboard{
		Date:       day.Format(timeutil.DateLayout),
		SalesCount: len(sales),
		SalesTotal: decimal.Zero,
		Collected:  decimal.Zero,
	}
	for _, sale := range sales {
		d.SalesTotal = d.SalesTotal.Add(sale.TotalAmount)
		d.Collected = d.Collected.Add(sale.PaidAmount.Sub(sale.ChangeAmount))
	}
	return d
}
