package handlers

import (
	"net/http"

	"repairshop-backend/internal/services"
	"repairshop-backend/pkg/utils"
)

type PrinterHandler struct {
	Service *services.PrinterService
}

func NewPrinterHandler(service *services.PrinterService) *PrinterHandler {
	return &PrinterHandler{Service: service}
}

// PrintDepositSlip sends the ticket deposit slip to the counter printer.
// POST /api/tickets/{id}/print
func (h *PrinterHandler) PrintDepositSlip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.Service.PrintDepositSlip(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, result)
}

// POST /api/sales/{id}/print
func (h *PrinterHandler) PrintSaleReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.Service.PrintSaleReceipt(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, result)
}
