package lock

import (
	"context"
	"sync"
)

// Local is an in-process Locker.
type Local struct {
	mu   sync.Mutex
	held map[string]uint64
	seq  uint64
}

// NewLocal constructs an empty in-process locker.
func NewLocal() *Local {
	return &Local{held: make(map[string]uint64)}
}

// Obtain acquires key if nobody holds it.
func (l *Local) Obtain(ctx context.Context, key string) (Lock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[key]; busy {
		return nil, ErrNotObtained
	}
	l.seq++
	l.held[key] = l.seq
	return &localLock{owner: l, key: key, token: l.seq}, nil
}

type localLock struct {
	owner *Local
	key   string
	token uint64
	once  sync.Once
}

// Release frees the key. Releasing twice is a no-op.
func (k *localLock) Release(context.Context) error {
	k.once.Do(func() {
		k.owner.mu.Lock()
		defer k.owner.mu.Unlock()
		if k.owner.held[k.key] == k.token {
			delete(k.owner.held, k.key)
		}
	})
	return nil
}
