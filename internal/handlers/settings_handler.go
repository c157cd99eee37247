package handlers

import (
	"net/http"

	"repairshop-backend/internal/models"
	"repairshop-backend/internal/services"
	"repairshop-backend/pkg/utils"
)

type SettingsHandler struct {
	Service *services.SettingsService
	Admin   *services.AdminService
}

func NewSettingsHandler(service *services.SettingsService, admin *services.AdminService) *SettingsHandler {
	return &SettingsHandler{Service: service, Admin: admin}
}

// GET /api/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Service.Get(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, settings)
}

// PUT /api/settings
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateSettingsRequest
	if !decode(w, r, &req) {
		return
	}
	settings, err := h.Service.Update(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	audit(r, h.Admin, "settings_update", "settings", 0, "Paramètres magasin modifiés")
	utils.JSON(w, http.StatusOK, settings)
}
