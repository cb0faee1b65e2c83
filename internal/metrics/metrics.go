// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Checkout metrics
	IncCheckoutSessionCreated(tierKey string)
	IncSessionVerified(outcome string) // outcome: "paid" or "unpaid"

	// Entitlement metrics
	IncEntitlementGranted()
	IncEntitlementChecked(entitled bool)
	IncEntitlementCacheHit()
	IncEntitlementCacheMiss()

	// Owner override metrics
	IncOwnerLogin(success bool)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
