package handlers

import (
	"fmt"
	"net/http"

	"repairshop-backend/internal/models"
	"repairshop-backend/internal/services"
	"repairshop-backend/pkg/utils"
)

type InvoiceHandler struct {
	Service *services.InvoiceService
	Admin   *services.AdminService
}

func NewInvoiceHandler(service *services.InvoiceService, admin *services.AdminService) *InvoiceHandler {
	return &InvoiceHandler{Service: service, Admin: admin}
}

// Purchase receives supplier goods into stock and optionally pays them from a till.
// POST /api/invoices/purchase
func (h *InvoiceHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req models.PurchaseInvoiceRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := h.Service.ApplyPurchaseInvoice(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	inv := result.Invoice
	audit(r, h.Admin, "purchase_invoice", "purchase_invoice", inv.ID,
		fmt.Sprintf("Facture achat %s (%s): %s", inv.DocumentNumber, inv.Supplier, inv.TotalAmount.StringFixed(2)))
	utils.JSON(w, http.StatusCreated, result)
}

// POST /api/invoices/sale
func (h *InvoiceHandler) Sale(w http.ResponseWriter, r *http.Request) {
	var req models.SaleInvoiceRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := h.Service.ApplySaleInvoice(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, result)
}
