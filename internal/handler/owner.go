package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/agent8/licensing/internal/auth"
	"github.com/agent8/licensing/internal/metrics"
	"github.com/agent8/licensing/internal/middleware"
)

// OwnerHandler handles the owner access-code override.
type OwnerHandler struct {
	authenticator *auth.OwnerAuthenticator
	metrics       metrics.Recorder
	logger        *slog.Logger
}

// NewOwnerHandler creates a new OwnerHandler.
func NewOwnerHandler(authenticator *auth.OwnerAuthenticator, recorder metrics.Recorder, logger *slog.Logger) *OwnerHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &OwnerHandler{
		authenticator: authenticator,
		metrics:       recorder,
		logger:        logger,
	}
}

// OwnerLoginRequest is the body for POST /owner-login. The code is
// never logged.
type OwnerLoginRequest struct {
	Code string `json:"code"`
}

// OwnerLoginResponse reports the login outcome.
type OwnerLoginResponse struct {
	Access bool   `json:"access"`
	Token  string `json:"token,omitempty"`
}

// Login handles POST /owner-login.
func (h *OwnerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req OwnerLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	result, err := h.authenticator.Login(req.Code)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNotConfigured):
			writeError(w, http.StatusInternalServerError, "OWNER_ACCESS_NOT_CONFIGURED", "Owner access is not configured")
		case errors.Is(err, auth.ErrCodeRequired):
			writeError(w, http.StatusBadRequest, "MISSING_CODE", "code is required")
		default:
			h.logger.Error("owner_login_failed", "error", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		}
		return
	}

	if !result.Access {
		h.metrics.IncOwnerLogin(false)
		h.logger.Warn("owner_login_rejected",
			"request_id", middleware.GetRequestID(r.Context()),
			"ip", r.RemoteAddr,
		)
		writeError(w, http.StatusUnauthorized, "AUTHENTICATION_FAILED", "Invalid access code")
		return
	}

	h.metrics.IncOwnerLogin(true)
	h.logger.Info("owner_login_succeeded",
		"request_id", middleware.GetRequestID(r.Context()),
	)
	writeJSON(w, http.StatusOK, OwnerLoginResponse{Access: true, Token: result.Token})
}
