package service

import "sync"

// keyLock hands out one mutex per identity key, serializing the
// read-modify-write cycle of concurrent merges against the same
// (itemName, batchNo). Mutexes are never reclaimed; the key space is the
// inventory itself, which is small.
type keyLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyLock() *keyLock {
	return &keyLock{locks: make(map[string]*sync.Mutex)}
}

func (k *keyLock) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}
