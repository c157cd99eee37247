package handlers

import (
	"net/http"

	"repairshop-backend/internal/models"
	"repairshop-backend/internal/services"
	"repairshop-backend/pkg/utils"
)

type UsedPhoneHandler struct {
	Service *services.UsedPhoneService
	Admin   *services.AdminService
}

func NewUsedPhoneHandler(service *services.UsedPhoneService, admin *services.AdminService) *UsedPhoneHandler {
	return &UsedPhoneHandler{Service: service, Admin: admin}
}

// GET /api/used-phones?search=
func (h *UsedPhoneHandler) List(w http.ResponseWriter, r *http.Request) {
	phones, err := h.Service.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, phones)
}

// POST /api/used-phones
func (h *UsedPhoneHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUsedPhoneRequest
	if !decode(w, r, &req) {
		return
	}
	phone, err := h.Service.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, phone)
}

// GET /api/used-phones/{id}
func (h *UsedPhoneHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	phone, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, phone)
}

// DELETE /api/used-phones/{id}
func (h *UsedPhoneHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	audit(r, h.Admin, "used_phone_delete", "used_phone", id, "Fiche téléphone occasion supprimée")
	w.WriteHeader(http.StatusNoContent)
}

// Sheet is the printable purchase declaration signed by the seller.
// GET /api/used-phones/{id}/sheet
func (h *UsedPhoneHandler) Sheet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	text, err := h.Service.Sheet(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.Text(w, text)
}
