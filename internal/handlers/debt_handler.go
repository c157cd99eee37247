package handlers

import (
	"net/http"

	"repairshop-backend/internal/models"
	"repairshop-backend/internal/services"
	"repairshop-backend/pkg/utils"
)

type DebtHandler struct {
	Service *services.DebtService
}

func NewDebtHandler(service *services.DebtService) *DebtHandler {
	return &DebtHandler{Service: service}
}

// GET /api/debts?search=&open_only=
func (h *DebtHandler) List(w http.ResponseWriter, r *http.Request) {
	debts, err := h.Service.ListDebts(r.Context(), r.URL.Query().Get("search"), boolQuery(r, "open_only"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, debts)
}

// POST /api/debts
func (h *DebtHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDebtRequest
	if !decode(w, r, &req) {
		return
	}
	debt, err := h.Service.CreateDebt(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, debt)
}

// Get returns the debt with its payment history.
// GET /api/debts/{id}
func (h *DebtHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	debt, err := h.Service.GetDebt(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, debt)
}

// POST /api/debts/{id}/payments
func (h *DebtHandler) Pay(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.DebtPaymentRequest
	if !decode(w, r, &req) {
		return
	}
	debt, err := h.Service.RecordPayment(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, debt)
}

// Delete removes a settled debt; an outstanding one is refused.
// DELETE /api/debts/{id}
func (h *DebtHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteDebt(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
