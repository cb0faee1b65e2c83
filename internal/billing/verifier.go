package billing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/agent8/licensing/internal/metrics"
	"github.com/agent8/licensing/internal/store"
)

// Verification is the outcome of checking a checkout session.
// OK=false without an error is a legitimate "not yet paid" result,
// not a failure.
type Verification struct {
	OK    bool
	Email string
}

// SessionVerifier retrieves checkout sessions from the payment backend
// and grants entitlements for completed, paid sessions.
type SessionVerifier struct {
	backend Backend
	store   store.Store
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewSessionVerifier creates a SessionVerifier.
func NewSessionVerifier(backend Backend, st store.Store, recorder metrics.Recorder, logger *slog.Logger) *SessionVerifier {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &SessionVerifier{
		backend: backend,
		store:   st,
		metrics: recorder,
		logger:  logger,
	}
}

// VerifySession checks the session's payment state and grants the
// payer's email on success. Safe to call repeatedly for one session:
// the grant is an idempotent upsert, so retries only refresh the
// record's timestamp.
func (v *SessionVerifier) VerifySession(ctx context.Context, sessionID string) (Verification, error) {
	if sessionID == "" {
		return Verification{}, ErrMissingSessionID
	}
	if v.backend == nil {
		return Verification{}, ErrBackendUnconfigured
	}

	session, err := v.backend.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return Verification{}, fmt.Errorf("%w: %v", ErrVerification, err)
	}

	if !session.Paid() || session.CustomerEmail == "" {
		v.metrics.IncSessionVerified("unpaid")
		v.logger.Info("session_not_paid",
			slog.String("session_id", sessionID),
			slog.String("status", session.Status),
			slog.String("payment_status", session.PaymentStatus),
		)
		return Verification{OK: false}, nil
	}

	if err := v.store.Grant(ctx, session.CustomerEmail); err != nil {
		// A paid session must not silently lose its grant.
		return Verification{}, fmt.Errorf("%w: %v", ErrVerification, err)
	}

	v.metrics.IncSessionVerified("paid")
	v.metrics.IncEntitlementGranted()
	v.logger.Info("entitlement_granted",
		slog.String("session_id", sessionID),
	)

	return Verification{OK: true, Email: session.CustomerEmail}, nil
}
