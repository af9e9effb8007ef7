package ledger

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v4"
)

// accountLocks serializes all mutations to a given account through one
// mutex per userId. Mutexes are never removed; the set of active users is
// small relative to the store.
type accountLocks struct {
	locks *xsync.Map[string, *sync.Mutex]
}

func newAccountLocks() *accountLocks {
	return &accountLocks{locks: xsync.NewMap[string, *sync.Mutex]()}
}

// lock acquires the exclusive lock for one account and returns the unlock.
func (l *accountLocks) lock(userID string) func() {
	mu, _ := l.locks.LoadOrStore(userID, &sync.Mutex{})
	mu.Lock()
	return mu.Unlock
}

// lockPair acquires both accounts' locks in userId order so two concurrent
// opposite-direction operations cannot deadlock.
func (l *accountLocks) lockPair(a, b string) func() {
	if a == b {
		return l.lock(a)
	}
	first, second := a, b
	if second < first {
		first, second = second, first
	}
	unlockFirst := l.lock(first)
	unlockSecond := l.lock(second)
	return func() {
		unlockSecond()
		unlockFirst()
	}
}
