package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/agent8/licensing/internal/billing"
)

// CheckoutHandler handles checkout session creation.
type CheckoutHandler struct {
	manager *billing.CheckoutManager
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(manager *billing.CheckoutManager, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		manager: manager,
		logger:  logger,
	}
}

// CreateCheckoutSessionRequest is the body for POST /create-checkout-session.
type CreateCheckoutSessionRequest struct {
	TierKey string `json:"tierKey"`
}

// CreateCheckoutSessionResponse carries the hosted checkout page URL.
type CreateCheckoutSessionResponse struct {
	URL string `json:"url"`
}

// Create handles POST /create-checkout-session.
func (h *CheckoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCheckoutSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if req.TierKey == "" {
		writeError(w, http.StatusBadRequest, "MISSING_TIER", "tierKey is required")
		return
	}

	url, err := h.manager.CreateCheckoutSession(r.Context(), req.TierKey)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrUnknownTier):
			writeError(w, http.StatusBadRequest, "UNKNOWN_TIER", "Unknown subscription tier")
		case errors.Is(err, billing.ErrBackendUnconfigured):
			writeError(w, http.StatusInternalServerError, "PAYMENTS_UNCONFIGURED", "Payments are not configured")
		default:
			h.logger.Error("checkout_session_failed",
				"tier", req.TierKey,
				"error", err,
			)
			writeError(w, http.StatusInternalServerError, "CHECKOUT_FAILED", "Could not create checkout session")
		}
		return
	}

	writeJSON(w, http.StatusOK, CreateCheckoutSessionResponse{URL: url})
}
