package bidding

import "sync"

// itemLocks is a lazily grown table of per-item mutexes. One lock guards the
// validate-then-apply step for one item; bids on different items never share
// a lock. Entries live for the lifetime of the process, which is bounded by
// the number of items ever created.
type itemLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// lock acquires the mutex for itemID, creating it on first use, and returns
// the matching unlock func.
func (l *itemLocks) lock(itemID string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	m, ok := l.locks[itemID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[itemID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
