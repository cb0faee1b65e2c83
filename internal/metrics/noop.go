package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncCheckoutSessionCreated is a no-op.
func (n *NoopRecorder) IncCheckoutSessionCreated(tierKey string) {}

// IncSessionVerified is a no-op.
func (n *NoopRecorder) IncSessionVerified(outcome string) {}

// IncEntitlementGranted is a no-op.
func (n *NoopRecorder) IncEntitlementGranted() {}

// IncEntitlementChecked is a no-op.
func (n *NoopRecorder) IncEntitlementChecked(entitled bool) {}

// IncEntitlementCacheHit is a no-op.
func (n *NoopRecorder) IncEntitlementCacheHit() {}

// IncEntitlementCacheMiss is a no-op.
func (n *NoopRecorder) IncEntitlementCacheMiss() {}

// IncOwnerLogin is a no-op.
func (n *NoopRecorder) IncOwnerLogin(success bool) {}
