package middleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"repairshop-backend/internal/auth"
)

type contextKey string

const SessionIDKey contextKey = "admin_session_id"

// AdminGate protects store-wide admin actions behind a live admin session.
type AdminGate struct {
	sessions *auth.SessionManager
}

func NewAdminGate(sessions *auth.SessionManager) *AdminGate {
	return &AdminGate{sessions: sessions}
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Require rejects requests without a valid admin session.
func (g *AdminGate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "admin authentication required")
			return
		}
		claims, err := g.sessions.Validate(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		ctx := context.WithValue(r.Context(), SessionIDKey, claims.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Optional attaches the session when a valid token is sent, and never rejects.
func (g *AdminGate) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := bearerToken(r); ok {
			if claims, err := g.sessions.Validate(token); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), SessionIDKey, claims.ID))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// GetSessionIDFromContext returns the admin session id set by the gate.
func GetSessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(SessionIDKey).(string)
	return id, ok && id != ""
}

// ClientIP extracts the real IP address from the request.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
