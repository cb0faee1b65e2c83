package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/agent8/licensing/internal/billing"
)

// VerifyHandler handles post-checkout session verification.
type VerifyHandler struct {
	verifier *billing.SessionVerifier
	logger   *slog.Logger
}

// NewVerifyHandler creates a new VerifyHandler.
func NewVerifyHandler(verifier *billing.SessionVerifier, logger *slog.Logger) *VerifyHandler {
	return &VerifyHandler{
		verifier: verifier,
		logger:   logger,
	}
}

// VerifySessionResponse reports the payment outcome. An unpaid
// session is ok:false, not an error.
type VerifySessionResponse struct {
	OK    bool   `json:"ok"`
	Email string `json:"email,omitempty"`
}

// Verify handles GET /verify-session?session_id=...
func (h *VerifyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")

	result, err := h.verifier.VerifySession(r.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrMissingSessionID):
			writeError(w, http.StatusBadRequest, "MISSING_SESSION_ID", "session_id is required")
		case errors.Is(err, billing.ErrBackendUnconfigured):
			writeError(w, http.StatusInternalServerError, "PAYMENTS_UNCONFIGURED", "Payments are not configured")
		default:
			h.logger.Error("session_verification_failed",
				"session_id", sessionID,
				"error", err,
			)
			writeError(w, http.StatusInternalServerError, "VERIFICATION_FAILED", "Could not verify checkout session")
		}
		return
	}

	writeJSON(w, http.StatusOK, VerifySessionResponse{OK: result.OK, Email: result.Email})
}
