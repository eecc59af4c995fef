package session

import (
	"context"
	"sync"
)

// Locker serializes mutations of one user's active-session set. Login and
// logout-all for the same user must not interleave; operations on different
// users never contend.
type Locker interface {
	// Lock blocks until the key is held and returns the release func. The
	// release func must be called on every exit path.
	Lock(ctx context.Context, key string) (func(), error)
}

// keyedMutex is the in-process Locker used for single-replica deployments.
// Entries are reference counted and removed once the last holder releases, so
// the map does not grow with the user population.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex returns an in-process per-key Locker.
func NewKeyedMutex() Locker {
	return &keyedMutex{locks: make(map[string]*lockEntry)}
}

func (k *keyedMutex) Lock(_ context.Context, key string) (func(), error) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &lockEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}, nil
}
