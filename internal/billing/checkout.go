package billing

import (
	"context"
	"crypto/rand"
	"log/slog"

	"github.com/oklog/ulid/v2"

	"github.com/agent8/licensing/internal/metrics"
)

// SessionIDPlaceholder is substituted by the payment backend with the
// real session id when redirecting to the success URL.
const SessionIDPlaceholder = "{CHECKOUT_SESSION_ID}"

// CheckoutManager creates hosted checkout sessions for catalog tiers.
type CheckoutManager struct {
	backend    Backend
	resolver   *CatalogResolver
	successURL string
	cancelURL  string
	metrics    metrics.Recorder
	logger     *slog.Logger
}

// NewCheckoutManager creates a CheckoutManager. successURL and
// cancelURL are the redirect targets for the hosted page; the session
// id placeholder is appended to successURL here.
func NewCheckoutManager(backend Backend, resolver *CatalogResolver, successURL, cancelURL string, recorder metrics.Recorder, logger *slog.Logger) *CheckoutManager {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &CheckoutManager{
		backend:    backend,
		resolver:   resolver,
		successURL: successURL,
		cancelURL:  cancelURL,
		metrics:    recorder,
		logger:     logger,
	}
}

// CreateCheckoutSession resolves the tier's price and creates a
// subscription-mode checkout session, returning the hosted page URL.
func (m *CheckoutManager) CreateCheckoutSession(ctx context.Context, tierKey string) (string, error) {
	if m.backend == nil {
		return "", ErrBackendUnconfigured
	}

	priceID, err := m.resolver.ResolvePrice(ctx, tierKey)
	if err != nil {
		return "", err
	}

	// The reference id ties backend-side session records to our logs.
	ref := ulid.MustNew(ulid.Now(), rand.Reader).String()

	session, err := m.backend.CreateCheckoutSession(ctx, CheckoutParams{
		PriceID:             priceID,
		Quantity:            1,
		SuccessURL:          m.successURL + "?session_id=" + SessionIDPlaceholder,
		CancelURL:           m.cancelURL,
		ClientReferenceID:   ref,
		AllowPromotionCodes: true,
	})
	if err != nil {
		return "", err
	}

	m.metrics.IncCheckoutSessionCreated(tierKey)
	m.logger.Info("checkout_session_created",
		slog.String("tier", tierKey),
		slog.String("price_id", priceID),
		slog.String("reference", ref),
	)

	return session.URL, nil
}
