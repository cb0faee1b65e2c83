package handler

import (
	"log/slog"
	"net/http"
	"net/mail"

	"github.com/agent8/licensing/internal/metrics"
	"github.com/agent8/licensing/internal/store"
)

// EntitlementHandler answers entitlement lookups for client gates.
type EntitlementHandler struct {
	store   store.Store
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewEntitlementHandler creates a new EntitlementHandler.
func NewEntitlementHandler(st store.Store, recorder metrics.Recorder, logger *slog.Logger) *EntitlementHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &EntitlementHandler{
		store:   st,
		metrics: recorder,
		logger:  logger,
	}
}

// EntitlementResponse reports whether an email holds an entitlement.
type EntitlementResponse struct {
	Entitled bool `json:"entitled"`
}

// Check handles GET /entitlement?email=...
//
// An unknown email is a legitimate negative: 200 with entitled:false.
func (h *EntitlementHandler) Check(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "MISSING_EMAIL", "email is required")
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_EMAIL", "email is not a valid address")
		return
	}

	entitled, err := h.store.IsEntitled(r.Context(), email)
	if err != nil {
		h.logger.Error("entitlement_check_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.metrics.IncEntitlementChecked(entitled)
	writeJSON(w, http.StatusOK, EntitlementResponse{Entitled: entitled})
}
