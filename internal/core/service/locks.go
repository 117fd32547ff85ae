package service

import "sync"

// AuctionLocks serializes mutating operations per auction id. Operations on
// distinct ids proceed independently; two operations on the same id never
// interleave, which keeps refund-then-replace and the claim flag flips
// indivisible from the caller's point of view.
//
// One instance is shared by the auction, bid and claim services. Locks are
// never removed: the set of auction ids a process touches is bounded and
// each entry is a single mutex.
type AuctionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewAuctionLocks() *AuctionLocks {
	return &AuctionLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for id, creating it on first use, and returns the
// matching unlock func.
func (l *AuctionLocks) Lock(id string) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
