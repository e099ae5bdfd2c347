package handler

import (
	"encoding/json"
	"net/http"

	"lend/internal/gate"
	"lend/internal/middleware"
)

type GateHandler struct {
	gate   *gate.Gate
	logger Logger
}

func NewGateHandler(g *gate.Gate, log Logger) *GateHandler {
	return &GateHandler{gate: g, logger: log}
}

// Check evaluates the navigation rules for the requested route. It never
// fails: collaborator faults degrade to allow inside the gate.
func (h *GateHandler) Check(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	route := r.URL.Query().Get("route")
	if route == "" {
		h.respondError(w, http.StatusBadRequest, "route query parameter is required")
		return
	}

	decision := h.gate.Decide(r.Context(), userID, route)
	h.respondJSON(w, http.StatusOK, decision)
}

func (h *GateHandler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func (h *GateHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
