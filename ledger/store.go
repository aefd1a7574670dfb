// Package ledger provides the short-lived key-value flags the reconciliation
// core uses to deduplicate work across concurrent requests: the "poll already
// queued for order X" flag and single-use authorization nonces.
//
// Entries are protected only by short TTLs and accepted-duplicate semantics,
// never locks; the downstream effects they guard are idempotent.
package ledger

import (
	"context"
	"time"
)

// Store is the idempotency ledger contract consumed by the core.
// Implementations must be safe for concurrent use.
//
// The interface is designed to support both in-memory and distributed
// backends (Redis, database, etc.) for different deployment scenarios.
type Store interface {
	// Get returns the value for key and whether the entry exists and has
	// not expired.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set writes key with a time-to-live after which the entry reads as
	// absent. A ttl of zero stores the entry without expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes the entry. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Take reads and invalidates a single-use entry in one call. It returns the
// stored value and true exactly once per entry; later calls see an absent
// key. Used for nonces that correlate an outbound exchange with its single
// expected inbound confirmation.
func Take(ctx context.Context, s Store, key string) (string, bool, error) {
	v, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return "", false, err
	}
	if err := s.Delete(ctx, key); err != nil {
		return "", false, err
	}
	return v, true, nil
}
