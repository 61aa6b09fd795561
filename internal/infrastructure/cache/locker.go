// Package cache provides keyed try-locks used to serialize quotation confirmation.
// A Redis implementation coordinates several server instances; the in-memory
// implementation is for single-instance deployments and tests.
package cache

import (
	"context"
	"time"

	"github.com/sisl/eshop/internal/domain/shared"
)

// DefaultLockTTL bounds how long a crashed holder can keep a key locked
const DefaultLockTTL = 2 * time.Minute

// ErrLockHeld is returned by TryLock when another holder owns the key
var ErrLockHeld = shared.NewDomainError("LOCK_HELD", "Lock is held by another process")

// Unlock releases a lock obtained from TryLock. Releasing twice, or after the TTL
// expired and someone else took the key, is a no-op.
type Unlock func(ctx context.Context) error

// Locker acquires exclusive, expiring locks on string keys without blocking
type Locker interface {
	TryLock(ctx context.Context, key string) (Unlock, error)
}
