package billing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/agent8/licensing/internal/model"
)

// CatalogResolver maps tier keys onto payment-backend price IDs,
// creating the product and price on first use.
//
// Resolution is idempotent: repeated calls for the same tier find the
// existing product and price instead of creating new ones. The
// list-then-create sequence is not transactional on the backend, so
// two concurrent first-time resolutions of the same tier can each
// create a resource; the next resolution converges on the first match.
type CatalogResolver struct {
	backend     Backend
	productName string
	logger      *slog.Logger
}

// NewCatalogResolver creates a resolver. productName is the display
// prefix for backend product names ("<productName> <tier name>").
func NewCatalogResolver(backend Backend, productName string, logger *slog.Logger) *CatalogResolver {
	return &CatalogResolver{
		backend:     backend,
		productName: productName,
		logger:      logger,
	}
}

// ResolvePrice returns the backend price ID for the tier, ensuring the
// product and a matching active monthly price exist.
func (r *CatalogResolver) ResolvePrice(ctx context.Context, tierKey string) (string, error) {
	tier, ok := model.LookupTier(tierKey)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTier, tierKey)
	}
	if r.backend == nil {
		return "", ErrBackendUnconfigured
	}

	productID, err := r.ensureProduct(ctx, r.productName+" "+tier.DisplayName)
	if err != nil {
		return "", err
	}

	priceID, err := r.ensurePrice(ctx, productID, tier)
	if err != nil {
		return "", err
	}
	return priceID, nil
}

// ensureProduct finds the product by exact name, creating it if absent.
func (r *CatalogResolver) ensureProduct(ctx context.Context, name string) (string, error) {
	cursor := ""
	for {
		page, err := r.backend.ListProducts(ctx, cursor)
		if err != nil {
			return "", err
		}
		for _, p := range page.Products {
			if p.Name == name {
				return p.ID, nil
			}
		}
		if !page.HasMore || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	created, err := r.backend.CreateProduct(ctx, name)
	if err != nil {
		return "", err
	}
	r.logger.Info("created catalog product",
		slog.String("product_id", created.ID),
		slog.String("name", name),
	)
	return created.ID, nil
}

// ensurePrice finds an active monthly recurring price matching the
// tier's amount and currency, creating one if absent.
func (r *CatalogResolver) ensurePrice(ctx context.Context, productID string, tier model.Tier) (string, error) {
	cursor := ""
	for {
		page, err := r.backend.ListPrices(ctx, productID, cursor)
		if err != nil {
			return "", err
		}
		for _, p := range page.Prices {
			if priceMatchesTier(p, tier) {
				return p.ID, nil
			}
		}
		if !page.HasMore || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	created, err := r.backend.CreatePrice(ctx, NewPrice{
		ProductID:  productID,
		UnitAmount: tier.UnitAmount,
		Currency:   model.Currency,
		Interval:   IntervalMonth,
		Nickname:   tier.DisplayName + " Monthly",
	})
	if err != nil {
		return "", err
	}
	r.logger.Info("created catalog price",
		slog.String("price_id", created.ID),
		slog.String("tier", tier.Key),
		slog.Int64("unit_amount", tier.UnitAmount),
	)
	return created.ID, nil
}

func priceMatchesTier(p Price, tier model.Tier) bool {
	return p.Active &&
		p.Recurring &&
		p.Interval == IntervalMonth &&
		p.Currency == model.Currency &&
		p.UnitAmount == tier.UnitAmount
}
