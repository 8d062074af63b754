package availability

import "sync"

// resourceLocks serializes reservation attempts per resource. Contention
// on one resource never blocks reservations against another. Entries are
// kept for the life of the process; the map is bounded by the number of
// distinct resources seen.
type resourceLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newResourceLocks() *resourceLocks {
	return &resourceLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for the given resource and returns its unlock
// function.
func (r *resourceLocks) Lock(resourceID string) func() {
	r.mu.Lock()
	lock, ok := r.locks[resourceID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[resourceID] = lock
	}
	r.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
