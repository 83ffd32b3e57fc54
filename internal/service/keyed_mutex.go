package service

import "sync"

// keyedMutex serializes check-then-act sequences (name uniqueness, version
// assignment) per resource key, so unrelated resources never contend.
// Entries are never reclaimed; the key space is bounded by live owners and
// game systems.
type keyedMutex struct {
	entries sync.Map // key -> *sync.Mutex
}

// lock acquires the mutex for key and returns its unlock func.
func (k *keyedMutex) lock(key string) func() {
	v, _ := k.entries.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
