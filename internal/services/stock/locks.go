package stock

import "sync"

// keyedMutex hands out one mutex per key. Entries are never evicted; the
// key space is bounded by the (user, ticker) pairs a process sees.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns its unlock function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// tickerKey is the lock shared by sales and dividend distributions of one
// user's ticker across all wallets.
func tickerKey(userID, ticker string) string {
	return userID + "|" + ticker
}
