// Package adminapi exposes the JWT-protected HTTP control surface for a
// running initiator process (spec.md §6.6): session status, forced
// reconnect, and a pointer to the metrics/websocket endpoints. Grounded on
// the teacher's admin/handlers.go: the same Bearer-auth-then-mux.HandleFunc
// shape and respondJSON/respondError/cors helpers, narrowed from a full
// broker back-office (users/funds/orders/groups) down to FIX session
// operations.
package adminapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ShabbirHasan1/hotfix/auth"
	"github.com/ShabbirHasan1/hotfix/session"
)

// SessionSupervisor is the narrow surface adminapi needs from whatever owns
// the running engines (cmd/fixinitiator's process-level registry).
type SessionSupervisor interface {
	// Sessions lists every configured session ID and its current phase.
	Sessions() map[string]session.Phase
	// Reconnect forces a session's transport.Supervisor to tear down and
	// redial, returning an error if sessionID is unknown.
	Reconnect(sessionID string) error
}

// Handler provides the admin HTTP handlers bound to a SessionSupervisor.
type Handler struct {
	sup SessionSupervisor
}

// NewHandler builds a Handler.
func NewHandler(sup SessionSupervisor) *Handler {
	return &Handler{sup: sup}
}

// Register wires every admin route onto mux, matching the teacher's
// RegisterRoutes(mux) call-site shape.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", h.HandleHealthz)
	mux.HandleFunc("/sessions", h.requireAuth(h.HandleListSessions))
	mux.HandleFunc("/sessions/reconnect", h.requireAuth(h.HandleReconnect))
}

// HandleHealthz is unauthenticated liveness probe, matching spec.md §6.6.
func (h *Handler) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	cors(w)
	respondJSON(w, map[string]string{"status": "ok"})
}

// HandleListSessions returns every configured session's current phase.
func (h *Handler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	cors(w)
	sessions := h.sup.Sessions()
	out := make(map[string]string, len(sessions))
	for id, phase := range sessions {
		out[id] = phase.String()
	}
	respondJSON(w, out)
}

// reconnectRequest is the body for POST /sessions/reconnect.
type reconnectRequest struct {
	SessionID string `json:"session_id"`
}

// HandleReconnect forces a named session to redial.
func (h *Handler) HandleReconnect(w http.ResponseWriter, r *http.Request) {
	cors(w)
	if r.Method != http.MethodPost {
		respondError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req reconnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.sup.Reconnect(req.SessionID); err != nil {
		respondError(w, err.Error(), http.StatusNotFound)
		return
	}

	respondJSON(w, map[string]string{"status": "reconnecting", "session_id": req.SessionID})
}

func (h *Handler) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := authenticate(r); err != nil {
			respondError(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func authenticate(r *http.Request) (*auth.Claims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, http.ErrNoCookie
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, http.ErrNoCookie
	}

	return auth.ValidateTokenWithDefault(parts[1])
}

func cors(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
