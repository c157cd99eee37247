package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repairshop-backend/internal/cache"
	"repairshop-backend/internal/database"
	"repairshop-backend/internal/models"
	"repairshop-backend/internal/repositories"
)

// testPool connects to TEST_DATABASE_URL, migrates and empties the shop tables.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, database.NewMigrator(pool).RunMigrations(ctx))
	_, err = pool.Exec(ctx, `TRUNCATE sale_lines, sales, debt_payments, debts, till_movements,
		purchase_invoice_lines, purchase_invoices, products, repair_tickets, clients,
		used_phone_purchases, admin_action_logs RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return pool
}

func firstTill(t *testing.T, pool *pgxpool.Pool) int {
	t.Helper()
	tills, err := repositories.NewTillRepository(pool).List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, tills, "default tills are seeded by migration")
	return tills[0].ID
}

func TestSaleFlowWithDebt(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	settings := NewSettingsService(pool, "DA", 40)
	products := NewProductService(pool, nil)
	sales := NewSaleService(pool, settings, nil)
	tills := NewTillService(repositories.NewTillRepository(pool), nil)
	tillID := firstTill(t, pool)

	before, err := tills.Balance(ctx, tillID)
	require.NoError(t, err)

	p, err := products.CreateProduct(ctx, &models.CreateProductRequest{
		Name: "Chargeur USB-C", Barcode: "6111000", SalePrice: dec("1000"), Quantity: 5, LowStockThreshold: 3,
	})
	require.NoError(t, err)

	_, err = sales.CreateSale(ctx, &models.CreateSaleRequest{
		TillID: tillID,
		Lines:  []models.CartLineRequest{{ProductID: &p.ID, Quantity: 2, UnitPrice: dec("1000")}},
		Paid:   dec("1200"),
	})
	assert.ErrorIs(t, err, ErrClientRequired, "an unpaid sale needs a client")

	res, err := sales.CreateSale(ctx, &models.CreateSaleRequest{
		TillID:     tillID,
		Lines:      []models.CartLineRequest{{ProductID: &p.ID, Quantity: 2, UnitPrice: dec("1000")}},
		Paid:       dec("1200"),
		ClientName: "Karim",
	})
	require.NoError(t, err)
	assert.True(t, res.Sale.RemainingAmount.Equal(dec("800")))
	require.NotNil(t, res.Debt)
	assert.Equal(t, "Vente comptoir N°1", res.Debt.Description)
	require.NotNil(t, res.Movement)
	assert.True(t, res.Movement.Amount.Equal(dec("1200")))
	assert.Contains(t, res.Receipt, "Reste")

	after, err := tills.Balance(ctx, tillID)
	require.NoError(t, err)
	assert.True(t, after.Balance.Sub(before.Balance).Equal(dec("1200")))

	stocked, err := products.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stocked.Quantity)

	low, err := products.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
}

func TestSaleRejectsInsufficientStockAtomically(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	products := NewProductService(pool, nil)
	sales := NewSaleService(pool, NewSettingsService(pool, "DA", 40), nil)
	tillID := firstTill(t, pool)

	a, err := products.CreateProduct(ctx, &models.CreateProductRequest{Name: "Coque", SalePrice: dec("500"), Quantity: 10})
	require.NoError(t, err)
	b, err := products.CreateProduct(ctx, &models.CreateProductRequest{Name: "Film", SalePrice: dec("300"), Quantity: 1})
	require.NoError(t, err)

	_, err = sales.CreateSale(ctx, &models.CreateSaleRequest{
		TillID: tillID,
		Lines: []models.CartLineRequest{
			{ProductID: &a.ID, Quantity: 2, UnitPrice: dec("500")},
			{ProductID: &b.ID, Quantity: 2, UnitPrice: dec("300")},
		},
		Paid: dec("1600"),
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	unchanged, err := products.GetProduct(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, unchanged.Quantity)

	list, err := sales.ListSales(ctx, unchanged.CreatedAt.AddDate(0, 0, -1), unchanged.CreatedAt.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeactivatedProductKeepsSaleLines(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	products := NewProductService(pool, nil)
	sales := NewSaleService(pool, NewSettingsService(pool, "DA", 40), nil)
	tillID := firstTill(t, pool)

	p, err := products.CreateProduct(ctx, &models.CreateProductRequest{Name: "Batterie J5", SalePrice: dec("2000"), Quantity: 2})
	require.NoError(t, err)
	res, err := sales.CreateSale(ctx, &models.CreateSaleRequest{
		TillID: tillID,
		Lines:  []models.CartLineRequest{{ProductID: &p.ID, Quantity: 1, UnitPrice: dec("2000")}},
		Paid:   dec("2000"),
	})
	require.NoError(t, err)

	_, err = products.SetActive(ctx, p.ID, false)
	require.NoError(t, err)

	sale, err := sales.GetSale(ctx, res.Sale.ID)
	require.NoError(t, err)
	require.Len(t, sale.Lines, 1)
	assert.Equal(t, "Batterie J5", sale.Lines[0].Label)

	_, err = products.FindByBarcode(ctx, "none")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPickupOpensDebtAndPayingItOff(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	settings := NewSettingsService(pool, "DA", 40)
	tickets := NewTicketService(pool, settings, nil)
	debts := NewDebtService(pool, nil)
	tillID := firstTill(t, pool)

	ticket, err := tickets.CreateTicket(ctx, &models.CreateTicketRequest{ClientName: "Samir", DeviceBrand: "Xiaomi"})
	require.NoError(t, err)

	res, err := tickets.RecordPickup(ctx, ticket.ID, &models.PickupRequest{
		WorkDone: "Remplacement écran", Total: dec("2000"), Paid: dec("1200"), TillID: &tillID,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Debt)
	assert.Equal(t, models.TicketStatusDelivered, res.Ticket.Status)
	assert.True(t, res.Debt.RemainingAmount.Equal(dec("800")))

	_, err = tickets.CancelTicket(ctx, ticket.ID)
	require.NoError(t, err)
	_, err = tickets.RecordPickup(ctx, ticket.ID, &models.PickupRequest{Total: dec("1")})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	assert.ErrorIs(t, debts.DeleteDebt(ctx, res.Debt.ID), ErrDebtOutstanding)

	_, err = debts.RecordPayment(ctx, res.Debt.ID, &models.DebtPaymentRequest{Amount: dec("900")})
	assert.ErrorIs(t, err, ErrOverpayment)

	paid, err := debts.RecordPayment(ctx, res.Debt.ID, &models.DebtPaymentRequest{Amount: dec("800"), TillID: &tillID})
	require.NoError(t, err)
	assert.True(t, paid.RemainingAmount.IsZero())
	require.Len(t, paid.Payments, 1)

	require.NoError(t, debts.DeleteDebt(ctx, res.Debt.ID))
}

func TestPickupHappensOnce(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	tickets := NewTicketService(pool, NewSettingsService(pool, "DA", 40), nil)
	debts := NewDebtService(pool, nil)
	tills := NewTillService(repositories.NewTillRepository(pool), nil)
	tillID := firstTill(t, pool)

	ticket, err := tickets.CreateTicket(ctx, &models.CreateTicketRequest{ClientName: "Nadia", DeviceBrand: "Oppo"})
	require.NoError(t, err)

	missing := 9999
	_, err = tickets.RecordPickup(ctx, ticket.ID, &models.PickupRequest{Total: dec("1000"), Paid: dec("1000"), TillID: &missing})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = tickets.RecordPickup(ctx, ticket.ID, &models.PickupRequest{Total: dec("1000"), Paid: dec("600"), TillID: &tillID})
	require.NoError(t, err)

	_, err = tickets.RecordPickup(ctx, ticket.ID, &models.PickupRequest{Total: dec("1000"), Paid: dec("600"), TillID: &tillID})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	open, err := debts.ListDebts(ctx, "", true)
	require.NoError(t, err)
	assert.Len(t, open, 1)

	movements, err := tills.ListMovements(ctx, tillID, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, movements, 1)
}

// With TEST_REDIS_ADDR set the summary cache is live too.
func TestDashboardReflectsTillMovements(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	if addr := os.Getenv("TEST_REDIS_ADDR"); addr != "" {
		require.NoError(t, cache.Init(addr, "", 0))
		t.Cleanup(func() { _ = cache.Close() })
		cache.InvalidateReportCaches(ctx)
	}

	settings := NewSettingsService(pool, "DA", 40)
	tickets := NewTicketService(pool, settings, nil)
	sales := NewSaleService(pool, settings, nil)
	tills := NewTillService(repositories.NewTillRepository(pool), nil)
	history := NewHistoryService(tickets, sales, NewProductService(pool, nil), NewDebtService(pool, nil), tills)
	tillID := firstTill(t, pool)

	balanceOf := func(d *Dashboard) string {
		for _, till := range d.Tills {
			if till.ID == tillID {
				return till.Balance.StringFixed(2)
			}
		}
		t.Fatalf("till %d missing from dashboard", tillID)
		return ""
	}

	before, err := history.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0.00", balanceOf(before))
	assert.Zero(t, before.OpenTickets)

	_, err = tills.AddMovement(ctx, tillID, &models.CreateMovementRequest{Kind: models.MovementIn, Amount: dec("350"), Description: "Fond de caisse"})
	require.NoError(t, err)
	_, err = tickets.CreateTicket(ctx, &models.CreateTicketRequest{ClientName: "Karim", DeviceBrand: "Samsung"})
	require.NoError(t, err)

	after, err := history.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, "350.00", balanceOf(after))
	assert.Equal(t, 1, after.OpenTickets)
}

func TestPurchaseInvoiceUpdatesStockAndTill(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	settings := NewSettingsService(pool, "DA", 40)
	products := NewProductService(pool, nil)
	invoices := NewInvoiceService(pool, NewSaleService(pool, settings, nil), settings, nil)
	tillID := firstTill(t, pool)

	p, err := products.CreateProduct(ctx, &models.CreateProductRequest{Name: "Ecran A52", SalePrice: dec("4500"), Quantity: 1})
	require.NoError(t, err)

	res, err := invoices.ApplyPurchaseInvoice(ctx, &models.PurchaseInvoiceRequest{
		Supplier: "Grossiste",
		TillID:   &tillID,
		Lines:    []models.PurchaseLineRequest{{ProductID: p.ID, Quantity: 3, PurchasePrice: dec("2500")}},
	})
	require.NoError(t, err)
	assert.Regexp(t, `^BA-\d{6}$`, res.Invoice.DocumentNumber)
	require.NotNil(t, res.Movement)
	assert.Equal(t, models.MovementOut, res.Movement.Kind)
	assert.Equal(t, "Achat "+res.Invoice.DocumentNumber+" - Grossiste", res.Movement.Description)
	assert.Contains(t, res.Voucher, "TOTAL : 7500.00 DA")

	updated, err := products.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)
	assert.True(t, updated.PurchasePrice.Equal(dec("2500")))
	assert.True(t, updated.SalePrice.Equal(dec("4500")))
}
