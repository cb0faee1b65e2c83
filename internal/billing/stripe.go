package billing

import (
	"context"
	"fmt"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	stripesession "github.com/stripe/stripe-go/v82/checkout/session"
	stripeprice "github.com/stripe/stripe-go/v82/price"
	stripeproduct "github.com/stripe/stripe-go/v82/product"
)

// listPageSize is the page size for catalog listings. 100 is the
// backend's maximum.
const listPageSize = 100

// StripeBackend implements Backend against the Stripe API.
//
// The API call sites are injected as function fields so tests can
// exercise the adapter without the network.
type StripeBackend struct {
	timeout time.Duration

	listProducts func(params *stripe.ProductListParams) *stripeproduct.Iter
	newProduct   func(params *stripe.ProductParams) (*stripe.Product, error)
	listPrices   func(params *stripe.PriceListParams) *stripeprice.Iter
	newPrice     func(params *stripe.PriceParams) (*stripe.Price, error)
	newSession   func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	getSession   func(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// NewStripeBackend configures the global Stripe client key and returns
// an adapter. Every outbound call carries a deadline so an unresponsive
// backend cannot hang a request indefinitely.
func NewStripeBackend(apiKey string, timeout time.Duration) *StripeBackend {
	stripe.Key = apiKey
	return &StripeBackend{
		timeout:      timeout,
		listProducts: stripeproduct.List,
		newProduct:   stripeproduct.New,
		listPrices:   stripeprice.List,
		newPrice:     stripeprice.New,
		newSession:   stripesession.New,
		getSession:   stripesession.Get,
	}
}

func (b *StripeBackend) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, b.timeout)
}

// ListProducts returns one page of products.
func (b *StripeBackend) ListProducts(ctx context.Context, cursor string) (ProductPage, error) {
	ctx, cancel := b.callContext(ctx)
	defer cancel()

	params := &stripe.ProductListParams{}
	params.Context = ctx
	params.Single = true
	params.Limit = stripe.Int64(listPageSize)
	if cursor != "" {
		params.StartingAfter = stripe.String(cursor)
	}

	iter := b.listProducts(params)

	var page ProductPage
	for iter.Next() {
		p := iter.Product()
		page.Products = append(page.Products, Product{ID: p.ID, Name: p.Name})
	}
	if err := iter.Err(); err != nil {
		return ProductPage{}, fmt.Errorf("list products: %w", err)
	}

	page.HasMore = iter.Meta().HasMore
	if n := len(page.Products); n > 0 {
		page.NextCursor = page.Products[n-1].ID
	}
	return page, nil
}

// CreateProduct creates a product with the given name.
func (b *StripeBackend) CreateProduct(ctx context.Context, name string) (Product, error) {
	ctx, cancel := b.callContext(ctx)
	defer cancel()

	params := &stripe.ProductParams{Name: stripe.String(name)}
	params.Context = ctx

	p, err := b.newProduct(params)
	if err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	return Product{ID: p.ID, Name: p.Name}, nil
}

// ListPrices returns one page of the product's prices.
func (b *StripeBackend) ListPrices(ctx context.Context, productID, cursor string) (PricePage, error) {
	ctx, cancel := b.callContext(ctx)
	defer cancel()

	params := &stripe.PriceListParams{Product: stripe.String(productID)}
	params.Context = ctx
	params.Single = true
	params.Limit = stripe.Int64(listPageSize)
	if cursor != "" {
		params.StartingAfter = stripe.String(cursor)
	}

	iter := b.listPrices(params)

	var page PricePage
	for iter.Next() {
		page.Prices = append(page.Prices, fromStripePrice(iter.Price()))
	}
	if err := iter.Err(); err != nil {
		return PricePage{}, fmt.Errorf("list prices: %w", err)
	}

	page.HasMore = iter.Meta().HasMore
	if n := len(page.Prices); n > 0 {
		page.NextCursor = page.Prices[n-1].ID
	}
	return page, nil
}

// CreatePrice creates a recurring price for a product.
func (b *StripeBackend) CreatePrice(ctx context.Context, np NewPrice) (Price, error) {
	ctx, cancel := b.callContext(ctx)
	defer cancel()

	params := &stripe.PriceParams{
		Product:    stripe.String(np.ProductID),
		UnitAmount: stripe.Int64(np.UnitAmount),
		Currency:   stripe.String(np.Currency),
		Recurring: &stripe.PriceRecurringParams{
			Interval: stripe.String(np.Interval),
		},
		Nickname: stripe.String(np.Nickname),
	}
	params.Context = ctx

	p, err := b.newPrice(params)
	if err != nil {
		return Price{}, fmt.Errorf("create price: %w", err)
	}
	return fromStripePrice(p), nil
}

// CreateCheckoutSession creates a subscription-mode hosted checkout
// session and returns its URL.
func (b *StripeBackend) CreateCheckoutSession(ctx context.Context, cp CheckoutParams) (CheckoutSession, error) {
	ctx, cancel := b.callContext(ctx)
	defer cancel()

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(cp.SuccessURL),
		CancelURL:  stripe.String(cp.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(cp.PriceID),
				Quantity: stripe.Int64(cp.Quantity),
			},
		},
		AllowPromotionCodes: stripe.Bool(cp.AllowPromotionCodes),
	}
	if cp.ClientReferenceID != "" {
		params.ClientReferenceID = stripe.String(cp.ClientReferenceID)
	}
	params.Context = ctx

	s, err := b.newSession(params)
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("create checkout session: %w", err)
	}
	return fromStripeSession(s), nil
}

// GetCheckoutSession retrieves a checkout session by id.
func (b *StripeBackend) GetCheckoutSession(ctx context.Context, id string) (CheckoutSession, error) {
	ctx, cancel := b.callContext(ctx)
	defer cancel()

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := b.getSession(id, params)
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("get checkout session: %w", err)
	}
	return fromStripeSession(s), nil
}

func fromStripePrice(p *stripe.Price) Price {
	out := Price{
		ID:         p.ID,
		Active:     p.Active,
		Currency:   string(p.Currency),
		UnitAmount: p.UnitAmount,
		Recurring:  p.Type == stripe.PriceTypeRecurring,
	}
	if p.Product != nil {
		out.ProductID = p.Product.ID
	}
	if p.Recurring != nil {
		out.Interval = string(p.Recurring.Interval)
	}
	return out
}

func fromStripeSession(s *stripe.CheckoutSession) CheckoutSession {
	out := CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		Status:        string(s.Status),
		PaymentStatus: string(s.PaymentStatus),
	}
	if s.CustomerDetails != nil {
		out.CustomerEmail = s.CustomerDetails.Email
	}
	return out
}
