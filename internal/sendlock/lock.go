// Package sendlock guards against two concurrent send calls for the same
// order passing the has-been-sent check simultaneously. The lease covers
// the in-flight transmission window only; long-term idempotency lives in
// the transmission ledger.
package sendlock

import (
	"context"
	"time"
)

// OrderLock is a per-order send lease.
type OrderLock interface {
	// Acquire takes the lease for an order. It reports false when another
	// transmission currently holds it.
	Acquire(ctx context.Context, orderID string, ttl time.Duration) (bool, error)
	// Release frees the lease if this holder still owns it.
	Release(ctx context.Context, orderID string) error
}
