package handlers

import (
	"net/http"

	"repairshop-backend/internal/models"
	"repairshop-backend/internal/services"
	"repairshop-backend/pkg/utils"
)

type SaleHandler struct {
	Service *services.SaleService
}

func NewSaleHandler(service *services.SaleService) *SaleHandler {
	return &SaleHandler{Service: service}
}

// GET /api/sales?from=&to=
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}
	sales, err := h.Service.ListSales(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, sales)
}

// Create checks out a counter cart: stock, till entry and any debt move together.
// POST /api/sales
func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSaleRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := h.Service.CreateSale(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, result)
}

// GET /api/sales/{id}
func (h *SaleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	sale, err := h.Service.GetSale(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, sale)
}

// GET /api/sales/{id}/receipt
func (h *SaleHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	text, err := h.Service.Receipt(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.Text(w, text)
}
