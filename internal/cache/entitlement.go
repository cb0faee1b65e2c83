package cache

import (
	"context"
	"time"
)

const (
	// entitlementCachePrefix is the Redis key prefix for entitlement flags.
	entitlementCachePrefix = "entitlement:email:"
	// entitlementCacheTTL bounds how long a granted flag is served
	// without consulting the durable store.
	entitlementCacheTTL = 5 * time.Minute
)

// GetEntitlement retrieves a cached entitlement flag.
// The second return reports whether a cached value was present.
func (c *Cache) GetEntitlement(ctx context.Context, email string) (bool, bool) {
	val, err := c.client.Get(ctx, entitlementCachePrefix+email).Result()
	if err != nil {
		// Cache miss or Redis error - either way, fall through.
		return false, false
	}
	return val == "1", true
}

// SetEntitlement caches an entitlement flag.
func (c *Cache) SetEntitlement(ctx context.Context, email string, entitled bool) error {
	val := "0"
	if entitled {
		val = "1"
	}
	return c.client.Set(ctx, entitlementCachePrefix+email, val, entitlementCacheTTL).Err()
}

// DeleteEntitlement removes a cached flag. Extension point for a
// future revocation path.
func (c *Cache) DeleteEntitlement(ctx context.Context, email string) error {
	return c.client.Del(ctx, entitlementCachePrefix+email).Err()
}
