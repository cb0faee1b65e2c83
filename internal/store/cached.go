package store

import (
	"context"

	"github.com/agent8/licensing/internal/cache"
	"github.com/agent8/licensing/internal/metrics"
	"github.com/agent8/licensing/internal/model"
)

// CachedStore decorates a Store with a Redis read-through cache for
// entitlement lookups. Cache failures fall through to the inner store;
// the cache is an optimization, never a source of truth.
type CachedStore struct {
	inner   Store
	cache   *cache.Cache
	metrics metrics.Recorder
}

// NewCachedStore wraps inner with the given cache.
func NewCachedStore(inner Store, c *cache.Cache, recorder metrics.Recorder) *CachedStore {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &CachedStore{inner: inner, cache: c, metrics: recorder}
}

// Grant writes through to the inner store and refreshes the cache.
func (s *CachedStore) Grant(ctx context.Context, email string) error {
	email = model.NormalizeEmail(email)
	if err := s.inner.Grant(ctx, email); err != nil {
		return err
	}

	// Best effort: a failed cache write only costs a future miss.
	_ = s.cache.SetEntitlement(ctx, email, true)
	return nil
}

// IsEntitled consults the cache first, then the inner store.
// Only positive results are cached; a "not entitled" answer must stay
// fresh so a just-paid subscriber is not locked out for the TTL.
func (s *CachedStore) IsEntitled(ctx context.Context, email string) (bool, error) {
	email = model.NormalizeEmail(email)

	if entitled, ok := s.cache.GetEntitlement(ctx, email); ok {
		s.metrics.IncEntitlementCacheHit()
		return entitled, nil
	}
	s.metrics.IncEntitlementCacheMiss()

	entitled, err := s.inner.IsEntitled(ctx, email)
	if err != nil {
		return false, err
	}
	if entitled {
		_ = s.cache.SetEntitlement(ctx, email, true)
	}
	return entitled, nil
}

// Close closes the inner store. The cache client is owned by main.
func (s *CachedStore) Close() error {
	return s.inner.Close()
}
