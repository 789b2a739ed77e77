// Package lock provides try-once mutual exclusion keyed by string, used to
// keep at most one decision in flight per request.
package lock

import (
	"context"
	"errors"
)

// ErrNotObtained is returned when the key is already held elsewhere.
var ErrNotObtained = errors.New("lock not obtained")

// Locker hands out exclusive leases. Obtain never waits: it either returns a
// held Lock or ErrNotObtained.
type Locker interface {
	Obtain(ctx context.Context, key string) (Lock, error)
}

// Lock is a held lease.
type Lock interface {
	Release(ctx context.Context) error
}
