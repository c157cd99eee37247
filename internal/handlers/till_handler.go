package handlers

import (
	"fmt"
	"net/http"

	"repairshop-backend/internal/models"
	"repairshop-backend/internal/services"
	"repairshop-backend/pkg/utils"
)

type TillHandler struct {
	Service *services.TillService
	Admin   *services.AdminService
}

func NewTillHandler(service *services.TillService, admin *services.AdminService) *TillHandler {
	return &TillHandler{Service: service, Admin: admin}
}

// List returns every till with its derived balance.
// GET /api/tills
func (h *TillHandler) List(w http.ResponseWriter, r *http.Request) {
	tills, err := h.Service.ListTills(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, tills)
}

// POST /api/tills
func (h *TillHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTillRequest
	if !decode(w, r, &req) {
		return
	}
	till, err := h.Service.CreateTill(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	audit(r, h.Admin, "till_create", "till", till.ID, "Caisse créée: "+till.Name)
	utils.JSON(w, http.StatusCreated, till)
}

// GET /api/tills/{id}/balance
func (h *TillHandler) Balance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	balance, err := h.Service.Balance(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, balance)
}

// GET /api/tills/{id}/movements?from=&to=
func (h *TillHandler) Movements(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}
	movements, err := h.Service.ListMovements(r.Context(), id, from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, movements)
}

// AddMovement records a manual cash entry or withdrawal.
// POST /api/tills/{id}/movements
func (h *TillHandler) AddMovement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.CreateMovementRequest
	if !decode(w, r, &req) {
		return
	}
	m, err := h.Service.AddMovement(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	audit(r, h.Admin, "till_movement_add", "till_movement", m.ID,
		fmt.Sprintf("%s %s caisse %d: %s", m.Kind, m.Amount.StringFixed(2), m.TillID, m.Description))
	utils.JSON(w, http.StatusCreated, m)
}

// DELETE /api/tills/movements/{id}
func (h *TillHandler) DeleteMovement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	m, err := h.Service.DeleteMovement(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	audit(r, h.Admin, "till_movement_delete", "till_movement", id,
		fmt.Sprintf("Mouvement supprimé: %s %s caisse %d", m.Kind, m.Amount.StringFixed(2), m.TillID))
	w.WriteHeader(http.StatusNoContent)
}
