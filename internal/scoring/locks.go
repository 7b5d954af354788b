package scoring

import (
	"context"
	"sync"
)

// KeyedLocks is a Serializer backed by one mutex per inquiry. Mutexes are
// reference counted and dropped once no caller holds or waits for them.
type KeyedLocks struct {
	mu    sync.Mutex
	locks map[int64]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedLocks() *KeyedLocks {
	return &KeyedLocks{locks: make(map[int64]*keyedLock)}
}

func (k *KeyedLocks) Do(ctx context.Context, inquiryID int64, fn func(ctx context.Context) error) error {
	k.mu.Lock()
	l, ok := k.locks[inquiryID]
	if !ok {
		l = &keyedLock{}
		k.locks[inquiryID] = l
	}
	l.refs++
	k.mu.Unlock()

	defer func() {
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, inquiryID)
		}
		k.mu.Unlock()
	}()

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}
