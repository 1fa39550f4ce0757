// Package chatlock serializes work per chat while letting different chats proceed in parallel.
package chatlock

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// Locks is a keyed mutex. The zero value is ready to use.
type Locks struct {
	mu      sync.Mutex
	entries map[int64]*entry
}

// Lock blocks until the caller holds chatID exclusively and returns the matching unlock func.
func (l *Locks) Lock(chatID int64) func() {
	l.mu.Lock()
	if l.entries == nil {
		l.entries = make(map[int64]*entry)
	}
	e, ok := l.entries[chatID]
	if !ok {
		e = &entry{}
		l.entries[chatID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()

			l.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(l.entries, chatID)
			}
			l.mu.Unlock()
		})
	}
}

// Len reports how many chats currently hold or wait for a lock.
func (l *Locks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
