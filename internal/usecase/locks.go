package usecase

import "sync"

// txLocks serializes registration and reconciliation per transaction id.
// Different transaction ids never share a lock, so initiation and
// webhook handling stay fully parallel across transactions.
type txLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newTxLocks() *txLocks {
	return &txLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *txLocks) get(transactionID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[transactionID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[transactionID] = lock
	}
	return lock
}

// forget drops the lock for a transaction that reached a terminal state.
func (l *txLocks) forget(transactionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, transactionID)
}
