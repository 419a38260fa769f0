package engine

import "sync"

// keyedMutex serializes critical sections per key. Used to make the
// find-then-write upsert atomic per sourceURL when concurrent scrapes hit
// the same product. Mutexes are never reclaimed; the key space is bounded
// by the URLs seen in one process lifetime.
type keyedMutex struct {
	locks sync.Map // string -> *sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	v, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
