package handlers

import (
	"fmt"
	"net/http"

	"repairshop-backend/internal/models"
	"repairshop-backend/internal/services"
	"repairshop-backend/pkg/utils"
)

type TicketHandler struct {
	Service *services.TicketService
	Admin   *services.AdminService
}

func NewTicketHandler(service *services.TicketService, admin *services.AdminService) *TicketHandler {
	return &TicketHandler{Service: service, Admin: admin}
}

// List returns the open tickets, or those with the given status.
// GET /api/tickets?status=
func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.Service.ListTickets(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, tickets)
}

// POST /api/tickets
func (h *TicketHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTicketRequest
	if !decode(w, r, &req) {
		return
	}
	ticket, err := h.Service.CreateTicket(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, ticket)
}

// GET /api/tickets/{id}
func (h *TicketHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ticket, err := h.Service.GetTicket(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, ticket)
}

// Pickup closes the ticket, collecting cash and opening a debt for any balance.
// POST /api/tickets/{id}/pickup
func (h *TicketHandler) Pickup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.PickupRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := h.Service.RecordPickup(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, result)
}

// POST /api/tickets/{id}/cancel
func (h *TicketHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ticket, err := h.Service.CancelTicket(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, ticket)
}

// DELETE /api/tickets/{id}
func (h *TicketHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ticket, err := h.Service.DeleteTicket(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	audit(r, h.Admin, "ticket_delete", "ticket", id, fmt.Sprintf("Ticket N°%d supprimé (%s)", id, ticket.ClientName))
	utils.JSON(w, http.StatusOK, ticket)
}

// GET /api/tickets/{id}/deposit-slip
func (h *TicketHandler) DepositSlip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	text, err := h.Service.DepositSlip(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.Text(w, text)
}
