package handlers

import (
	"net/http"
	"strconv"

	"repairshop-backend/internal/middleware"
	"repairshop-backend/internal/models"
	"repairshop-backend/internal/services"
	"repairshop-backend/pkg/utils"
)

// AdminHandler handles the store admin password, sessions and TOTP.
type AdminHandler struct {
	Service *services.AdminService
}

func NewAdminHandler(service *services.AdminService) *AdminHandler {
	return &AdminHandler{Service: service}
}

// Status tells the counter whether a password exists and whether this client is unlocked.
// GET /api/admin/status
func (h *AdminHandler) Status(w http.ResponseWriter, r *http.Request) {
	_, authenticated := middleware.GetSessionIDFromContext(r.Context())
	status, err := h.Service.Status(r.Context(), authenticated)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, status)
}

// POST /api/admin/setup
func (h *AdminHandler) Setup(w http.ResponseWriter, r *http.Request) {
	var req models.AdminSetupRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Service.Setup(r.Context(), &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	audit(r, h.Service, "admin_setup", "admin", 0, "Mot de passe administrateur défini")
	utils.JSON(w, http.StatusCreated, map[string]string{"message": "Admin password defined"})
}

// POST /api/admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.AdminLoginRequest
	if !decode(w, r, &req) {
		return
	}
	session, err := h.Service.Login(r.Context(), &req, middleware.ClientIP(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, session)
}

// POST /api/admin/logout
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if id, ok := middleware.GetSessionIDFromContext(r.Context()); ok {
		h.Service.Logout(id)
	}
	w.WriteHeader(http.StatusNoContent)
}

// PUT /api/admin/password
func (h *AdminHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req models.ChangePasswordRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Service.ChangePassword(r.Context(), &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	audit(r, h.Service, "password_change", "admin", 0, "Mot de passe administrateur modifié")
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Password changed, please log in again"})
}

// GET /api/admin/actions?limit=
func (h *AdminHandler) Actions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	actions, err := h.Service.Actions(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, actions)
}

// POST /api/admin/totp/setup
func (h *AdminHandler) SetupTOTP(w http.ResponseWriter, r *http.Request) {
	setup, err := h.Service.SetupTOTP(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, setup)
}

// POST /api/admin/totp/enable
func (h *AdminHandler) EnableTOTP(w http.ResponseWriter, r *http.Request) {
	var req models.TOTPCodeRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Service.EnableTOTP(r.Context(), &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	audit(r, h.Service, "totp_enable", "admin", 0, "Double authentification activée")
	utils.JSON(w, http.StatusOK, map[string]bool{"totp_enabled": true})
}

// POST /api/admin/totp/disable
func (h *AdminHandler) DisableTOTP(w http.ResponseWriter, r *http.Request) {
	var req models.TOTPCodeRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Service.DisableTOTP(r.Context(), &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	audit(r, h.Service, "totp_disable", "admin", 0, "Double authentification désactivée")
	utils.JSON(w, http.StatusOK, map[string]bool{"totp_enabled": false})
}
