package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repairshop-backend/internal/auth"
	"repairshop-backend/internal/events"
	"repairshop-backend/internal/handlers"
	"repairshop-backend/internal/middleware"
)

// newTestRouter wires handlers without services; only routes that never reach a service are exercised.
func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	sessions, err := auth.NewSessionManager("", time.Hour, "test")
	require.NoError(t, err)
	return NewRouter(
		handlers.NewAdminHandler(nil),
		handlers.NewSettingsHandler(nil, nil),
		handlers.NewClientHandler(nil),
		handlers.NewTicketHandler(nil, nil),
		handlers.NewProductHandler(nil, nil),
		handlers.NewSaleHandler(nil),
		handlers.NewInvoiceHandler(nil, nil),
		handlers.NewTillHandler(nil, nil),
		handlers.NewDebtHandler(nil),
		handlers.NewUsedPhoneHandler(nil, nil),
		handlers.NewHistoryHandler(nil),
		handlers.NewPrinterHandler(nil),
		handlers.NewHealthHandler(nil),
		middleware.NewAdminGate(sessions),
		events.NewHub(),
	)
}

func TestGatedRoutesRequireAdminToken(t *testing.T) {
	router := newTestRouter(t)
	gated := []struct{ method, path string }{
		{http.MethodPut, "/api/admin/password"},
		{http.MethodGet, "/api/admin/actions"},
		{http.MethodPost, "/api/admin/totp/setup"},
		{http.MethodPut, "/api/settings"},
		{http.MethodDelete, "/api/tickets/3"},
		{http.MethodPost, "/api/products"},
		{http.MethodPost, "/api/products/import"},
		{http.MethodPut, "/api/products/8"},
		{http.MethodPost, "/api/products/8/deactivate"},
		{http.MethodPost, "/api/products/8/activate"},
		{http.MethodPost, "/api/products/8/stock"},
		{http.MethodPost, "/api/invoices/purchase"},
		{http.MethodPost, "/api/tills"},
		{http.MethodPost, "/api/tills/1/movements"},
		{http.MethodDelete, "/api/tills/movements/5"},
		{http.MethodDelete, "/api/used-phones/2"},
	}
	for _, tt := range gated {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRouteMatching(t *testing.T) {
	router := newTestRouter(t)
	tests := []struct {
		method, path string
		match        bool
	}{
		{http.MethodGet, "/api/products/low-stock", true},
		{http.MethodGet, "/api/products/export", true},
		{http.MethodGet, "/api/products/barcode/6111234567890", true},
		{http.MethodGet, "/api/sales/abc", false},
		{http.MethodGet, "/api/history/sales/export", true},
		{http.MethodGet, "/api/history/repairs/4/invoice.pdf", true},
		{http.MethodGet, "/api/reports/daily.csv", true},
		{http.MethodPatch, "/api/sales/1", false},
		{http.MethodGet, "/ws/events", true},
		{http.MethodGet, "/metrics", true},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			var m mux.RouteMatch
			assert.Equal(t, tt.match, router.Match(httptest.NewRequest(tt.method, tt.path, nil), &m))
		})
	}
}

func TestLivenessNeedsNoDependencies(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
