package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/agent8/licensing/internal/billing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var errStubBackend = errors.New("backend unavailable")

// stubBackend is a minimal in-memory billing.Backend for handler tests.
type stubBackend struct {
	products []billing.Product
	prices   []billing.Price
	sessions map[string]billing.CheckoutSession

	seq  int
	fail bool
}

func newStubBackend() *stubBackend {
	return &stubBackend{sessions: make(map[string]billing.CheckoutSession)}
}

func (s *stubBackend) ListProducts(ctx context.Context, cursor string) (billing.ProductPage, error) {
	if s.fail {
		return billing.ProductPage{}, errStubBackend
	}
	return billing.ProductPage{Products: s.products}, nil
}

func (s *stubBackend) CreateProduct(ctx context.Context, name string) (billing.Product, error) {
	s.seq++
	p := billing.Product{ID: fmt.Sprintf("prod_%d", s.seq), Name: name}
	s.products = append(s.products, p)
	return p, nil
}

func (s *stubBackend) ListPrices(ctx context.Context, productID, cursor string) (billing.PricePage, error) {
	var out []billing.Price
	for _, p := range s.prices {
		if p.ProductID == productID {
			out = append(out, p)
		}
	}
	return billing.PricePage{Prices: out}, nil
}

func (s *stubBackend) CreatePrice(ctx context.Context, np billing.NewPrice) (billing.Price, error) {
	s.seq++
	p := billing.Price{
		ID:         fmt.Sprintf("price_%d", s.seq),
		ProductID:  np.ProductID,
		Active:     true,
		Recurring:  true,
		Interval:   np.Interval,
		Currency:   np.Currency,
		UnitAmount: np.UnitAmount,
	}
	s.prices = append(s.prices, p)
	return p, nil
}

func (s *stubBackend) CreateCheckoutSession(ctx context.Context, cp billing.CheckoutParams) (billing.CheckoutSession, error) {
	if s.fail {
		return billing.CheckoutSession{}, errStubBackend
	}
	s.seq++
	session := billing.CheckoutSession{
		ID:            fmt.Sprintf("cs_test_%d", s.seq),
		URL:           fmt.Sprintf("https://checkout.example.com/pay/cs_test_%d", s.seq),
		Status:        "open",
		PaymentStatus: "unpaid",
	}
	s.sessions[session.ID] = session
	return session, nil
}

func (s *stubBackend) GetCheckoutSession(ctx context.Context, id string) (billing.CheckoutSession, error) {
	if s.fail {
		return billing.CheckoutSession{}, errStubBackend
	}
	session, ok := s.sessions[id]
	if !ok {
		return billing.CheckoutSession{}, fmt.Errorf("no such session: %s", id)
	}
	return session, nil
}

func (s *stubBackend) pay(id, email string) {
	session := s.sessions[id]
	session.Status = billing.SessionStatusComplete
	session.PaymentStatus = billing.PaymentStatusPaid
	session.CustomerEmail = email
	s.sessions[id] = session
}

func newCheckoutManager(backend billing.Backend) *billing.CheckoutManager {
	resolver := billing.NewCatalogResolver(backend, "Agent 8", testLogger())
	return billing.NewCheckoutManager(backend, resolver,
		"http://localhost:4242/success.html",
		"http://localhost:4242/cancel.html",
		nil, testLogger())
}
