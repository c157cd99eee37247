package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"repairshop-backend/internal/middleware"
	"repairshop-backend/internal/services"
	"repairshop-backend/internal/timeutil"
	"repairshop-backend/pkg/utils"
)

const maxBodyBytes = 1 << 20

// statusFor maps service errors to HTTP statuses. Unknown errors are 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrClientRequired):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrOverpayment),
		errors.Is(err, services.ErrDebtOutstanding),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		zap.L().Error("request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		utils.Error(w, status, "Internal server error", nil)
		return
	}

	var verr *services.ValidationError
	if errors.As(err, &verr) {
		utils.Error(w, status, services.ErrValidation.Error(), verr.Fields)
		return
	}
	utils.Error(w, status, err.Error(), nil)
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		utils.Error(w, http.StatusBadRequest, "Invalid ID", nil)
		return 0, false
	}
	return id, true
}

// dateRange reads ?from=&to= as whole store days. Missing bounds are open.
func dateRange(w http.ResponseWriter, r *http.Request) (from, to time.Time, ok bool) {
	q := r.URL.Query()
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		d, err := timeutil.ParseDate(v)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid from date", nil)
			return from, to, false
		}
		from = timeutil.StartOfDay(d)
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		d, err := timeutil.ParseDate(v)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid to date", nil)
			return from, to, false
		}
		to = timeutil.EndOfDay(d)
	}
	return from, to, true
}

// audit records a gated action against the admin log.
func audit(r *http.Request, admin *services.AdminService, action, target string, id int, description string) {
	if admin == nil {
		return
	}
	var targetID *int
	if id > 0 {
		targetID = &id
	}
	admin.Record(r.Context(), action, target, targetID, description, middleware.ClientIP(r))
}

func boolQuery(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && v
}
