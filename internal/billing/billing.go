// Package billing integrates with the payment backend: resolving the
// tier catalog to backend products and prices, minting hosted checkout
// sessions, and verifying completed sessions.
package billing

import (
	"context"
	"errors"
)

// Billing errors.
var (
	ErrUnknownTier         = errors.New("unknown tier")
	ErrBackendUnconfigured = errors.New("payment backend not configured")
	ErrMissingSessionID    = errors.New("missing session id")
	ErrVerification        = errors.New("session verification failed")
)

// Checkout session states as reported by the payment backend.
const (
	SessionStatusComplete = "complete"
	PaymentStatusPaid     = "paid"
	IntervalMonth         = "month"
)

// Product is a catalog product owned by the payment backend.
type Product struct {
	ID   string
	Name string
}

// Price is a catalog price owned by the payment backend.
type Price struct {
	ID         string
	ProductID  string
	Active     bool
	Recurring  bool
	Interval   string
	Currency   string
	UnitAmount int64
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Products   []Product
	HasMore    bool
	NextCursor string
}

// PricePage is one page of a price listing.
type PricePage struct {
	Prices     []Price
	HasMore    bool
	NextCursor string
}

// NewPrice describes a recurring price to create.
type NewPrice struct {
	ProductID  string
	UnitAmount int64
	Currency   string
	Interval   string
	Nickname   string
}

// CheckoutParams describes a hosted checkout session to create.
type CheckoutParams struct {
	PriceID             string
	Quantity            int64
	SuccessURL          string
	CancelURL           string
	ClientReferenceID   string
	AllowPromotionCodes bool
}

// CheckoutSession is the backend's view of a hosted checkout flow.
type CheckoutSession struct {
	ID            string
	URL           string
	Status        string
	PaymentStatus string
	CustomerEmail string
}

// Paid reports whether the session completed with a successful payment.
func (s CheckoutSession) Paid() bool {
	return s.Status == SessionStatusComplete && s.PaymentStatus == PaymentStatusPaid
}

// Backend is the payment-backend client surface the billing layer
// needs. The production implementation talks to Stripe; tests use a
// fake.
type Backend interface {
	// ListProducts returns one page of products starting after cursor
	// (empty cursor = first page).
	ListProducts(ctx context.Context, cursor string) (ProductPage, error)
	CreateProduct(ctx context.Context, name string) (Product, error)

	// ListPrices returns one page of the product's prices.
	ListPrices(ctx context.Context, productID, cursor string) (PricePage, error)
	CreatePrice(ctx context.Context, p NewPrice) (Price, error)

	CreateCheckoutSession(ctx context.Context, p CheckoutParams) (CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (CheckoutSession, error)
}
