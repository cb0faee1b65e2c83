package billing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/agent8/licensing/internal/metrics"
)

func newTestCheckoutManager(backend Backend) (*CheckoutManager, *metrics.InMemoryRecorder) {
	recorder := metrics.NewInMemory()
	resolver := NewCatalogResolver(backend, "Agent 8", testLogger())
	manager := NewCheckoutManager(backend, resolver,
		"http://localhost:4242/success.html",
		"http://localhost:4242/cancel.html",
		recorder, testLogger())
	return manager, recorder
}

func TestCreateCheckoutSessionReturnsHostedURL(t *testing.T) {
	backend := newFakeBackend()
	manager, recorder := newTestCheckoutManager(backend)

	url, err := manager.CreateCheckoutSession(context.Background(), "platinum8")
	if err != nil {
		t.Fatalf("CreateCheckoutSession() error = %v", err)
	}
	if !strings.HasPrefix(url, "https://checkout.example.com/") {
		t.Errorf("url = %q, want hosted checkout url", url)
	}
	if got := recorder.Snapshot().CheckoutSessionsCreated; got != 1 {
		t.Errorf("checkout sessions created = %d, want 1", got)
	}
}

func TestCreateCheckoutSessionResolvesCatalogFirst(t *testing.T) {
	backend := newFakeBackend()
	manager, _ := newTestCheckoutManager(backend)

	if _, err := manager.CreateCheckoutSession(context.Background(), "bronze8"); err != nil {
		t.Fatalf("CreateCheckoutSession() error = %v", err)
	}

	if backend.createdProducts != 1 || backend.createdPrices != 1 {
		t.Errorf("created products=%d prices=%d, want 1 and 1",
			backend.createdProducts, backend.createdPrices)
	}
}

func TestCreateCheckoutSessionUnknownTier(t *testing.T) {
	backend := newFakeBackend()
	manager, _ := newTestCheckoutManager(backend)

	_, err := manager.CreateCheckoutSession(context.Background(), "copper8")
	if !errors.Is(err, ErrUnknownTier) {
		t.Fatalf("error = %v, want ErrUnknownTier", err)
	}
	if len(backend.sessions) != 0 {
		t.Error("unknown tier must not create a checkout session")
	}
}

func TestCreateCheckoutSessionBackendUnconfigured(t *testing.T) {
	manager, _ := newTestCheckoutManager(nil)

	_, err := manager.CreateCheckoutSession(context.Background(), "gold8")
	if !errors.Is(err, ErrBackendUnconfigured) {
		t.Fatalf("error = %v, want ErrBackendUnconfigured", err)
	}
}

func TestSuccessURLCarriesSessionIDPlaceholder(t *testing.T) {
	backend := newFakeBackend()
	captured := &paramsCapturingBackend{Backend: backend}
	resolver := NewCatalogResolver(backend, "Agent 8", testLogger())
	manager := NewCheckoutManager(captured, resolver,
		"http://localhost:4242/success.html",
		"http://localhost:4242/cancel.html",
		nil, testLogger())

	if _, err := manager.CreateCheckoutSession(context.Background(), "gold8"); err != nil {
		t.Fatalf("CreateCheckoutSession() error = %v", err)
	}

	want := "http://localhost:4242/success.html?session_id=" + SessionIDPlaceholder
	if captured.params.SuccessURL != want {
		t.Errorf("success url = %q, want %q", captured.params.SuccessURL, want)
	}
	if captured.params.CancelURL != "http://localhost:4242/cancel.html" {
		t.Errorf("cancel url = %q", captured.params.CancelURL)
	}
	if captured.params.Quantity != 1 {
		t.Errorf("quantity = %d, want 1", captured.params.Quantity)
	}
	if captured.params.ClientReferenceID == "" {
		t.Error("expected a client reference id")
	}
	if !captured.params.AllowPromotionCodes {
		t.Error("expected promotion codes to be allowed")
	}
}

// paramsCapturingBackend records the checkout params passed through.
type paramsCapturingBackend struct {
	Backend
	params CheckoutParams
}

func (b *paramsCapturingBackend) CreateCheckoutSession(ctx context.Context, cp CheckoutParams) (CheckoutSession, error) {
	b.params = cp
	return b.Backend.CreateCheckoutSession(ctx, cp)
}
