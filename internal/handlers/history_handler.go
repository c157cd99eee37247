package handlers

import (
	"fmt"
	"net/http"
	"time"

	"repairshop-backend/internal/services"
	"repairshop-backend/internal/timeutil"
	"repairshop-backend/pkg/utils"
)

const pdfContentType = "application/pdf"

// HistoryHandler serves read-only history, documents and exports.
type HistoryHandler struct {
	Service *services.HistoryService
}

func NewHistoryHandler(service *services.HistoryService) *HistoryHandler {
	return &HistoryHandler{Service: service}
}

// GET /api/history/repairs?search=
func (h *HistoryHandler) Repairs(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.Service.RepairHistory(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, tickets)
}

// GET /api/history/repairs/{id}/invoice
func (h *HistoryHandler) RepairInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	text, err := h.Service.RepairInvoice(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.Text(w, text)
}

// GET /api/history/repairs/{id}/invoice.pdf
func (h *HistoryHandler) RepairInvoicePDF(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	data, err := h.Service.RepairInvoicePDF(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.Attachment(w, pdfContentType, fmt.Sprintf("facture_reparation_%d.pdf", id), data)
}

// GET /api/history/sales?from=&to=
func (h *HistoryHandler) Sales(w http.ResponseWriter, r *http.Request) {
	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}
	sales, err := h.Service.SaleHistory(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, sales)
}

// GET /api/history/sales/{id}/invoice
func (h *HistoryHandler) SaleInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	text, err := h.Service.SaleInvoice(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.Text(w, text)
}

// GET /api/history/sales/{id}/invoice.pdf
func (h *HistoryHandler) SaleInvoicePDF(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	data, err := h.Service.SaleInvoicePDF(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.Attachment(w, pdfContentType, fmt.Sprintf("facture_vente_%d.pdf", id), data)
}

// GET /api/history/sales/export?from=&to=
func (h *HistoryHandler) ExportSales(w http.ResponseWriter, r *http.Request) {
	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}
	data, err := h.Service.ExportSales(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.Attachment(w, xlsxContentType, "ventes_"+rangeSuffix(from, to)+".xlsx", data)
}

// GET /api/reports/daily.csv?from=&to=
func (h *HistoryHandler) DailyCSV(w http.ResponseWriter, r *http.Request) {
	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}
	data, err := h.Service.DailyCSV(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.Attachment(w, "text/csv; charset=utf-8", "journal_"+rangeSuffix(from, to)+".csv", data)
}

// GET /api/dashboard
func (h *HistoryHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.Dashboard(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, d)
}

// rangeSuffix names an export after its bounds, or today when unbounded.
func rangeSuffix(from, to time.Time) string {
	const layout = "20060102"
	switch {
	case !from.IsZero() && !to.IsZero():
		return timeutil.Format(from, layout) + "_" + timeutil.Format(to, layout)
	case !from.IsZero():
		return timeutil.Format(from, layout)
	case !to.IsZero():
		return timeutil.Format(to, layout)
	default:
		return timeutil.Format(timeutil.Now(), layout)
	}
}
