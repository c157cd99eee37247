package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repairshop-backend/internal/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func intPtr(v int) *int { return &v }

func TestBuildCartMergesSameProductAndPrice(t *testing.T) {
	cart, err := BuildCart([]models.CartLineRequest{
		{ProductID: intPtr(7), Quantity: 1, UnitPrice: dec("500")},
		{ProductID: intPtr(7), Quantity: 2, UnitPrice: dec("500.00")},
		{ProductID: intPtr(7), Quantity: 1, UnitPrice: dec("450")},
		{Label: "Main d'oeuvre", Quantity: 1, UnitPrice: dec("700")},
	})
	require.NoError(t, err)

	require.Len(t, cart.Lines, 3)
	assert.Equal(t, 3, cart.Lines[0].Quantity)
	assert.True(t, cart.Lines[0].Subtotal.Equal(dec("1500")))
	assert.True(t, cart.Lines[1].Subtotal.Equal(dec("450")))
	assert.Nil(t, cart.Lines[2].ProductID)
	assert.True(t, cart.Total.Equal(dec("2650")))
}

func TestBuildCartRejectsBadLines(t *testing.T) {
	tests := []struct {
		name  string
		lines []models.CartLineRequest
	}{
		{"empty cart", nil},
		{"zero quantity", []models.CartLineRequest{{ProductID: intPtr(1), Quantity: 0, UnitPrice: dec("10")}}},
		{"negative price", []models.CartLineRequest{{ProductID: intPtr(1), Quantity: 1, UnitPrice: dec("-1")}}},
		{"manual line without label", []models.CartLineRequest{{Label: "  ", Quantity: 1, UnitPrice: dec("10")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildCart(tt.lines)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestSettle(t *testing.T) {
	tests := []struct {
		total, paid, change, remaining string
	}{
		{"2000", "1200", "0", "800"},
		{"1300", "1300", "0", "0"},
		{"1300", "1500", "200", "0"},
		{"0", "0", "0", "0"},
	}
	for _, tt := range tests {
		change, remaining := Settle(dec(tt.total), dec(tt.paid))
		assert.True(t, change.Equal(dec(tt.change)), "change for %s/%s = %s", tt.total, tt.paid, change)
		assert.True(t, remaining.Equal(dec(tt.remaining)), "remaining for %s/%s = %s", tt.total, tt.paid, remaining)
	}
}

func TestProductDemandSumsAcrossPrices(t *testing.T) {
	ids, demand := productDemand([]models.SaleLine{
		{ProductID: intPtr(9), Quantity: 2},
		{ProductID: intPtr(3), Quantity: 1},
		{ProductID: intPtr(9), Quantity: 1},
		{Label: "manual", Quantity: 5},
	})
	assert.Equal(t, []int{3, 9}, ids)
	assert.Equal(t, 3, demand[9])
	assert.Equal(t, 1, demand[3])
}

func TestPlanPickup(t *testing.T) {
	open := &models.RepairTicket{ID: 4, Status: models.TicketStatusInProgress}

	plan, err := planPickup(open, &models.PickupRequest{Total: dec("2000"), Paid: dec("1200"), TillID: intPtr(1)})
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusDelivered, plan.Status)
	assert.True(t, plan.Remaining.Equal(dec("800")))
	assert.True(t, plan.Collected.Equal(dec("1200")))

	plan, err = planPickup(open, &models.PickupRequest{Total: dec("1300"), Paid: dec("1500"), TillID: intPtr(1)})
	require.NoError(t, err)
	assert.True(t, plan.Remaining.IsZero())
	assert.True(t, plan.Collected.Equal(dec("1300")))

	plan, err = planPickup(open, &models.PickupRequest{Total: dec("500"), Status: models.TicketStatusDone})
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusDone, plan.Status)
	assert.Nil(t, plan.TillID)
}

func TestPlanPickupRejects(t *testing.T) {
	open := &models.RepairTicket{ID: 1, Status: models.TicketStatusInProgress}

	for _, status := range []string{
		models.TicketStatusCancelled,
		models.TicketStatusDeleted,
		models.TicketStatusDelivered,
		models.TicketStatusDone,
	} {
		t.Run(status, func(t *testing.T) {
			closed := &models.RepairTicket{ID: 2, Status: status}
			_, err := planPickup(closed, &models.PickupRequest{Total: dec("100"), Paid: dec("100"), TillID: intPtr(1)})
			assert.ErrorIs(t, err, ErrInvalidStatus)
		})
	}

	_, err := planPickup(open, &models.PickupRequest{Total: dec("100"), Status: models.TicketStatusCancelled})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = planPickup(open, &models.PickupRequest{Total: dec("-1")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = planPickup(open, &models.PickupRequest{Total: dec("100"), Paid: dec("50")})
	assert.ErrorIs(t, err, ErrValidation, "a payment needs a till")

	_, err = planPickup(open, &models.PickupRequest{Total: dec("100"), PickupDate: "31-12-2024"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSummarizeSales(t *testing.T) {
	day := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	d := summarizeSales(day, []*models.Sale{
		{TotalAmount: dec("1500"), PaidAmount: dec("2000"), ChangeAmount: dec("500")},
		{TotalAmount: dec("3000"), PaidAmount: dec("1000")},
	})
	assert.Equal(t, "2026-03-05", d.Date)
	assert.Equal(t, 2, d.SalesCount)
	assert.True(t, d.SalesTotal.Equal(dec("4500")))
	assert.True(t, d.Collected.Equal(dec("2500")))
	assert.Nil(t, d.Tills)

	empty := summarizeSales(day, nil)
	assert.Zero(t, empty.SalesCount)
	assert.True(t, empty.Collected.IsZero())
}

func TestRecordPaymentValidatesBeforeTouchingStorage(t *testing.T) {
	tests := []struct {
		name string
		req  *models.DebtPaymentRequest
	}{
		{"zero till", &models.DebtPaymentRequest{Amount: dec("10"), TillID: intPtr(0)}},
		{"negative till", &models.DebtPaymentRequest{Amount: dec("10"), TillID: intPtr(-4)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&DebtService{}).RecordPayment(context.Background(), 1, tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestBalanceFold(t *testing.T) {
	b := Balance(3, []*models.TillMovement{
		{Kind: models.MovementIn, Amount: dec("1000")},
		{Kind: models.MovementOut, Amount: dec("300")},
		{Kind: models.MovementIn, Amount: dec("50.50")},
	})
	assert.Equal(t, 3, b.TillID)
	assert.True(t, b.TotalIn.Equal(dec("1050.50")))
	assert.True(t, b.TotalOut.Equal(dec("300")))
	assert.True(t, b.Balance.Equal(dec("750.50")))

	empty := Balance(1, nil)
	assert.True(t, empty.Balance.IsZero())
}

func TestNormalizeMovement(t *testing.T) {
	kind, amount, err := normalizeMovement(&models.CreateMovementRequest{Kind: " sortie ", Amount: dec("12.345")})
	require.NoError(t, err)
	assert.Equal(t, models.MovementOut, kind)
	assert.True(t, amount.Equal(dec("12.35")))

	_, _, err = normalizeMovement(&models.CreateMovementRequest{Kind: "VIREMENT", Amount: dec("10")})
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = normalizeMovement(&models.CreateMovementRequest{Kind: "ENTREE", Amount: dec("0")})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestApplyPayment(t *testing.T) {
	debt := &models.Debt{TotalAmount: dec("2000"), PaidAmount: dec("1200"), RemainingAmount: dec("800")}

	paid, remaining, err := ApplyPayment(debt, dec("300"), false)
	require.NoError(t, err)
	assert.True(t, paid.Equal(dec("1500")))
	assert.True(t, remaining.Equal(dec("500")))

	paid, remaining, err = ApplyPayment(debt, dec("800.01"), false)
	require.NoError(t, err, "within the one cent tolerance")
	assert.True(t, paid.Equal(dec("2000.01")))
	assert.True(t, remaining.IsZero())

	_, _, err = ApplyPayment(debt, dec("900"), false)
	assert.ErrorIs(t, err, ErrOverpayment)

	paid, remaining, err = ApplyPayment(debt, dec("900"), true)
	require.NoError(t, err)
	assert.True(t, paid.Equal(dec("2100")))
	assert.True(t, remaining.IsZero())

	_, _, err = ApplyPayment(debt, dec("0"), true)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPurchaseLine(t *testing.T) {
	p := &models.Product{ID: 5, Name: "Ecran A52", SalePrice: dec("4500")}

	line, err := purchaseLine(p, models.PurchaseLineRequest{ProductID: 5, Quantity: 3, PurchasePrice: dec("2500")})
	require.NoError(t, err)
	assert.Equal(t, "Ecran A52", line.Label)
	assert.True(t, line.SalePrice.Equal(dec("4500")), "sale price defaults to the catalog price")
	assert.True(t, line.Subtotal.Equal(dec("7500")))

	newPrice := dec("5000")
	line, err = purchaseLine(p, models.PurchaseLineRequest{ProductID: 5, Quantity: 1, PurchasePrice: dec("2600"), SalePrice: &newPrice})
	require.NoError(t, err)
	assert.True(t, line.SalePrice.Equal(dec("5000")))

	_, err = purchaseLine(p, models.PurchaseLineRequest{ProductID: 5, Quantity: 1, PurchasePrice: dec("0")})
	assert.ErrorIs(t, err, ErrValidation)

	free := &models.Product{ID: 6, Name: "Film", SalePrice: decimal.Zero}
	_, err = purchaseLine(free, models.PurchaseLineRequest{ProductID: 6, Quantity: 1, PurchasePrice: dec("100")})
	assert.ErrorIs(t, err, ErrValidation, "sale price must end up positive")
}

func TestApplyProductUpdateOnlyTouchesSetFields(t *testing.T) {
	p := &models.Product{Name: "Coque", Barcode: "111", SalePrice: dec("800"), Quantity: 4, Active: true}
	name := "  Coque silicone "
	qty := 10

	applyProductUpdate(p, &models.UpdateProductRequest{Name: &name, Quantity: &qty})

	assert.Equal(t, "Coque silicone", p.Name)
	assert.Equal(t, "111", p.Barcode)
	assert.True(t, p.SalePrice.Equal(dec("800")))
	assert.Equal(t, 10, p.Quantity)
	assert.NoError(t, checkProduct(p))

	p.SalePrice = dec("-5")
	assert.ErrorIs(t, checkProduct(p), ErrValidation)
}

func TestUsedPhoneDefaults(t *testing.T) {
	u, err := usedPhoneFromRequest(&models.CreateUsedPhoneRequest{
		PhoneName: "Galaxy S10", PhoneBrand: "Samsung", SellerLastName: "Benali", SellerIDNumber: "123456",
	})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSellerIDType, u.SellerIDType)
	assert.False(t, u.PurchaseDate.IsZero())

	_, err = usedPhoneFromRequest(&models.CreateUsedPhoneRequest{PhoneName: "Galaxy S10", PhoneBrand: "Samsung", SellerLastName: "Benali"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestValidateReportsJSONFieldNames(t *testing.T) {
	err := Validate(&models.CreateTicketRequest{ClientName: "Amine"})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "required", verr.Fields["device_brand"])
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "device_brand (required)")
}

func TestParseDay(t *testing.T) {
	d, err := parseDay("2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, 5, d.Day())

	d, err = parseDay("05/03/2024")
	require.NoError(t, err)
	assert.Equal(t, 3, int(d.Month()))

	_, err = parseDay("yesterday")
	assert.ErrorIs(t, err, ErrValidation)
}
