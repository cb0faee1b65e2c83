package billing

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// fakeBackend is an in-memory Backend for tests. pageSize below the
// item count forces the pagination path.
type fakeBackend struct {
	mu       sync.Mutex
	pageSize int

	products []Product
	prices   []Price
	sessions map[string]CheckoutSession

	productSeq int
	priceSeq   int
	sessionSeq int

	createdProducts int
	createdPrices   int

	failListProducts bool
	failGetSession   bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		pageSize: 2,
		sessions: make(map[string]CheckoutSession),
	}
}

var errFakeBackend = errors.New("backend unavailable")

func (f *fakeBackend) ListProducts(ctx context.Context, cursor string) (ProductPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failListProducts {
		return ProductPage{}, errFakeBackend
	}

	start := 0
	if cursor != "" {
		for i, p := range f.products {
			if p.ID == cursor {
				start = i + 1
				break
			}
		}
	}

	end := start + f.pageSize
	if end > len(f.products) {
		end = len(f.products)
	}

	page := ProductPage{Products: append([]Product(nil), f.products[start:end]...)}
	page.HasMore = end < len(f.products)
	if len(page.Products) > 0 {
		page.NextCursor = page.Products[len(page.Products)-1].ID
	}
	return page, nil
}

func (f *fakeBackend) CreateProduct(ctx context.Context, name string) (Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.productSeq++
	f.createdProducts++
	p := Product{ID: fmt.Sprintf("prod_%03d", f.productSeq), Name: name}
	f.products = append(f.products, p)
	return p, nil
}

func (f *fakeBackend) ListPrices(ctx context.Context, productID, cursor string) (PricePage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matching []Price
	for _, p := range f.prices {
		if p.ProductID == productID {
			matching = append(matching, p)
		}
	}

	start := 0
	if cursor != "" {
		for i, p := range matching {
			if p.ID == cursor {
				start = i + 1
				break
			}
		}
	}

	end := start + f.pageSize
	if end > len(matching) {
		end = len(matching)
	}

	page := PricePage{Prices: append([]Price(nil), matching[start:end]...)}
	page.HasMore = end < len(matching)
	if len(page.Prices) > 0 {
		page.NextCursor = page.Prices[len(page.Prices)-1].ID
	}
	return page, nil
}

func (f *fakeBackend) CreatePrice(ctx context.Context, np NewPrice) (Price, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.priceSeq++
	f.createdPrices++
	p := Price{
		ID:         fmt.Sprintf("price_%03d", f.priceSeq),
		ProductID:  np.ProductID,
		Active:     true,
		Recurring:  true,
		Interval:   np.Interval,
		Currency:   np.Currency,
		UnitAmount: np.UnitAmount,
	}
	f.prices = append(f.prices, p)
	return p, nil
}

func (f *fakeBackend) CreateCheckoutSession(ctx context.Context, cp CheckoutParams) (CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sessionSeq++
	s := CheckoutSession{
		ID:            fmt.Sprintf("cs_test_%03d", f.sessionSeq),
		URL:           fmt.Sprintf("https://checkout.example.com/pay/cs_test_%03d", f.sessionSeq),
		Status:        "open",
		PaymentStatus: "unpaid",
	}
	f.sessions[s.ID] = s
	return s, nil
}

func (f *fakeBackend) GetCheckoutSession(ctx context.Context, id string) (CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failGetSession {
		return CheckoutSession{}, errFakeBackend
	}

	s, ok := f.sessions[id]
	if !ok {
		return CheckoutSession{}, fmt.Errorf("no such session: %s", id)
	}
	return s, nil
}

// completeSession marks a session paid with the given payer email.
func (f *fakeBackend) completeSession(id, email string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := f.sessions[id]
	s.Status = SessionStatusComplete
	s.PaymentStatus = PaymentStatusPaid
	s.CustomerEmail = email
	f.sessions[id] = s
}
