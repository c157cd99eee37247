package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repairshop-backend/internal/health"
	"repairshop-backend/internal/services"
	"repairshop-backend/internal/timeutil"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: quantity must be at least 1", services.ErrValidation), http.StatusBadRequest},
		{&services.ValidationError{Fields: map[string]string{"till_id": "required"}}, http.StatusBadRequest},
		{services.ErrClientRequired, http.StatusBadRequest},
		{fmt.Errorf("sale 9: %w", services.ErrNotFound), http.StatusNotFound},
		{services.ErrInsufficientStock, http.StatusConflict},
		{services.ErrOverpayment, http.StatusConflict},
		{services.ErrDebtOutstanding, http.StatusConflict},
		{services.ErrInvalidStatus, http.StatusConflict},
		{services.ErrConflict, http.StatusConflict},
		{services.ErrUnauthorized, http.StatusUnauthorized},
		{services.ErrForbidden, http.StatusForbidden},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteServiceError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/sales", nil)

	t.Run("validation fields", func(t *testing.T) {
		rec := httptest.NewRecorder()
		writeServiceError(rec, req, &services.ValidationError{Fields: map[string]string{"lines": "min"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "validation failed", body["error"])
		assert.Equal(t, map[string]interface{}{"lines": "min"}, body["fields"])
	})

	t.Run("business rule keeps message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		writeServiceError(rec, req, fmt.Errorf("Coque X: %w", services.ErrInsufficientStock))
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "Coque X: insufficient stock", decodeBody(t, rec)["error"])
	})

	t.Run("internal error is hidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		writeServiceError(rec, req, errors.New("pq: relation missing"))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Internal server error", decodeBody(t, rec)["error"])
	})
}

func TestDecodeRejectsMalformedBody(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/clients", strings.NewReader("{name:"))
	assert.False(t, decode(rec, req, &dst))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/clients", strings.NewReader(`{"name":"Benali"}`))
	assert.True(t, decode(rec, req, &dst))
	assert.Equal(t, "Benali", dst.Name)
}

func TestPathID(t *testing.T) {
	tests := []struct {
		id   string
		want int
		ok   bool
	}{
		{"12", 12, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": tt.id})
			rec := httptest.NewRecorder()
			id, ok := pathID(rec, req)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, id)
			if !ok {
				assert.Equal(t, http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestDateRange(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/sales?from=2026-03-01&to=2026-03-31", nil)
	from, to, ok := dateRange(rec, req)
	require.True(t, ok)
	assert.Equal(t, "2026-03-01", from.In(timeutil.Location()).Format("2006-01-02"))
	assert.Equal(t, 0, from.In(timeutil.Location()).Hour())
	assert.Equal(t, "2026-03-31", to.In(timeutil.Location()).Format("2006-01-02"))
	assert.Equal(t, 23, to.In(timeutil.Location()).Hour())

	rec = httptest.NewRecorder()
	from, to, ok = dateRange(rec, httptest.NewRequest(http.MethodGet, "/api/sales", nil))
	require.True(t, ok)
	assert.True(t, from.IsZero())
	assert.True(t, to.IsZero())

	rec = httptest.NewRecorder()
	_, _, ok = dateRange(rec, httptest.NewRequest(http.MethodGet, "/api/sales?from=yesterday", nil))
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRangeSuffix(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, timeutil.Location())
	to := time.Date(2026, 3, 31, 23, 59, 59, 0, timeutil.Location())
	assert.Equal(t, "20260301_20260331", rangeSuffix(from, to))
	assert.Equal(t, "20260301", rangeSuffix(from, time.Time{}))
	assert.Len(t, rangeSuffix(time.Time{}, time.Time{}), 8)
}

// Bad input is rejected before any service is touched, so nil services are safe here.
func TestHandlersRejectBadInputEarly(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		vars    map[string]string
		body    string
	}{
		{"sale bad id", (&SaleHandler{}).Get, map[string]string{"id": "x"}, ""},
		{"pickup bad body", (&TicketHandler{}).Pickup, map[string]string{"id": "4"}, "not json"},
		{"debt payment bad id", (&DebtHandler{}).Pay, map[string]string{"id": "0"}, `{"amount":"10"}`},
		{"till movements bad date", (&TillHandler{}).Movements, map[string]string{"id": "1"}, ""},
		{"purchase bad body", (&InvoiceHandler{}).Purchase, nil, "["},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/x?from=31-13-2026", strings.NewReader(tt.body))
			if tt.vars != nil {
				req = mux.SetURLVars(req, tt.vars)
			}
			rec := httptest.NewRecorder()
			tt.handler(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestImportRequiresFileField(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "catalogue"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/products/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	(&ProductHandler{}).Import(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing file field", decodeBody(t, rec)["error"])
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

func TestHealthHandlers(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(nil).BasicHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	up := NewHealthHandler(health.NewHealthChecker(stubPinger{}, t.TempDir()))
	rec = httptest.NewRecorder()
	up.ReadinessHealth(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "disabled", decodeBody(t, rec)["redis"])

	down := NewHealthHandler(health.NewHealthChecker(stubPinger{err: errors.New("refused")}, ""))
	rec = httptest.NewRecorder()
	down.ReadinessHealth(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
