package usecase

import "sync"

// keyedMutex serializes work per game id. Entries are dropped once nobody
// holds or waits for them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refLock)}
}

// Lock blocks until key is free and returns the matching unlock.
func (that *keyedMutex) Lock(key string) func() {
	that.mu.Lock()
	lock, ok := that.locks[key]
	if !ok {
		lock = &refLock{}
		that.locks[key] = lock
	}
	lock.refs++
	that.mu.Unlock()

	lock.Lock()

	return func() {
		lock.Unlock()

		that.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(that.locks, key)
		}
		that.mu.Unlock()
	}
}
