package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type heldLock struct {
	token     uuid.UUID
	expiresAt time.Time
}

// MemoryLocker implements Locker within a single process. Expired entries are
// replaced lazily on the next TryLock for the same key.
type MemoryLocker struct {
	mu    sync.Mutex
	held  map[string]heldLock
	ttl   time.Duration
	clock func() time.Time
}

// NewMemoryLocker creates an in-process locker
func NewMemoryLocker(ttl time.Duration) *MemoryLocker {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &MemoryLocker{
		held:  make(map[string]heldLock),
		ttl:   ttl,
		clock: time.Now,
	}
}

// TryLock implements Locker
func (l *MemoryLocker) TryLock(_ context.Context, key string) (Unlock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if h, ok := l.held[key]; ok && now.Before(h.expiresAt) {
		return nil, ErrLockHeld
	}

	token := uuid.New()
	l.held[key] = heldLock{token: token, expiresAt: now.Add(l.ttl)}

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if h, ok := l.held[key]; ok && h.token == token {
			delete(l.held, key)
		}
		return nil
	}, nil
}

// Len returns the number of keys currently tracked, expired or not
func (l *MemoryLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.held)
}

var _ Locker = (*MemoryLocker)(nil)
