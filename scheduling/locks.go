package scheduling

import "sync"

// TableLocker serializes the check-then-commit section per table, so two
// concurrent requests cannot both see a free window and double-book it.
// Requests for different tables do not contend.
type TableLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewTableLocker() *TableLocker {
	return &TableLocker{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the lock for a table and returns the matching unlock.
func (l *TableLocker) Lock(tableID string) func() {
	l.mu.Lock()
	m, ok := l.locks[tableID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[tableID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
