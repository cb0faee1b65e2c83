// Package store provides the durable entitlement mapping from
// normalized email to entitlement state.
package store

import (
	"context"
	"errors"
)

// Store errors.
var (
	// ErrWriteFailed wraps persistence failures on the write path.
	// Reads never return it: an unreadable store reads as empty.
	ErrWriteFailed = errors.New("entitlement write failed")
)

// Store is the entitlement persistence contract.
//
// Grant is an idempotent upsert: it sets entitled=true for the email
// and refreshes the timestamp. IsEntitled returns false (not an
// error) for emails never granted. Both normalize the email before
// touching storage.
type Store interface {
	Grant(ctx context.Context, email string) error
	IsEntitled(ctx context.Context, email string) (bool, error)
	Close() error
}
