package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	CheckoutSessionsCreated uint64
	SessionsVerifiedPaid    uint64
	SessionsVerifiedUnpaid  uint64
	EntitlementsGranted     uint64
	EntitlementChecksTrue   uint64
	EntitlementChecksFalse  uint64
	EntitlementCacheHits    uint64
	EntitlementCacheMisses  uint64
	OwnerLoginsOK           uint64
	OwnerLoginsFailed       uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	checkoutSessionsCreated uint64
	sessionsVerifiedPaid    uint64
	sessionsVerifiedUnpaid  uint64
	entitlementsGranted     uint64
	entitlementChecksTrue   uint64
	entitlementChecksFalse  uint64
	entitlementCacheHits    uint64
	entitlementCacheMisses  uint64
	ownerLoginsOK           uint64
	ownerLoginsFailed       uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		CheckoutSessionsCreated: atomic.LoadUint64(&m.checkoutSessionsCreated),
		SessionsVerifiedPaid:    atomic.LoadUint64(&m.sessionsVerifiedPaid),
		SessionsVerifiedUnpaid:  atomic.LoadUint64(&m.sessionsVerifiedUnpaid),
		EntitlementsGranted:     atomic.LoadUint64(&m.entitlementsGranted),
		EntitlementChecksTrue:   atomic.LoadUint64(&m.entitlementChecksTrue),
		EntitlementChecksFalse:  atomic.LoadUint64(&m.entitlementChecksFalse),
		EntitlementCacheHits:    atomic.LoadUint64(&m.entitlementCacheHits),
		EntitlementCacheMisses:  atomic.LoadUint64(&m.entitlementCacheMisses),
		OwnerLoginsOK:           atomic.LoadUint64(&m.ownerLoginsOK),
		OwnerLoginsFailed:       atomic.LoadUint64(&m.ownerLoginsFailed),
	}
}

// IncCheckoutSessionCreated increments the checkout session counter.
func (m *InMemoryRecorder) IncCheckoutSessionCreated(tierKey string) {
	atomic.AddUint64(&m.checkoutSessionsCreated, 1)
}

// IncSessionVerified increments the verification counter for the outcome.
func (m *InMemoryRecorder) IncSessionVerified(outcome string) {
	if outcome == "paid" {
		atomic.AddUint64(&m.sessionsVerifiedPaid, 1)
	} else {
		atomic.AddUint64(&m.sessionsVerifiedUnpaid, 1)
	}
}

// IncEntitlementGranted increments the grant counter.
func (m *InMemoryRecorder) IncEntitlementGranted() {
	atomic.AddUint64(&m.entitlementsGranted, 1)
}

// IncEntitlementChecked increments the check counter for the result.
func (m *InMemoryRecorder) IncEntitlementChecked(entitled bool) {
	if entitled {
		atomic.AddUint64(&m.entitlementChecksTrue, 1)
	} else {
		atomic.AddUint64(&m.entitlementChecksFalse, 1)
	}
}

// IncEntitlementCacheHit increments the cache hit counter.
func (m *InMemoryRecorder) IncEntitlementCacheHit() {
	atomic.AddUint64(&m.entitlementCacheHits, 1)
}

// IncEntitlementCacheMiss increments the cache miss counter.
func (m *InMemoryRecorder) IncEntitlementCacheMiss() {
	atomic.AddUint64(&m.entitlementCacheMisses, 1)
}

// IncOwnerLogin increments the owner login counter for the result.
func (m *InMemoryRecorder) IncOwnerLogin(success bool) {
	if success {
		atomic.AddUint64(&m.ownerLoginsOK, 1)
	} else {
		atomic.AddUint64(&m.ownerLoginsFailed, 1)
	}
}
