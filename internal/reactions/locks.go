package reactions

import "sync"

// messageLocks serializes event handling per carrier message. Two reaction
// events on the same message run their lookup-cleanup-grant sequence one
// after the other; events on different messages proceed concurrently.
type messageLocks struct {
	mu    sync.Mutex
	locks map[string]*messageLock
}

type messageLock struct {
	mu   sync.Mutex
	refs int
}

func newMessageLocks() *messageLocks {
	return &messageLocks{
		locks: make(map[string]*messageLock),
	}
}

// lock acquires the per-message lock and returns the matching unlock. Lock
// entries are reference counted so the map does not grow with every message
// ever seen.
func (l *messageLocks) lock(messageID string) func() {
	l.mu.Lock()
	entry, ok := l.locks[messageID]
	if !ok {
		entry = &messageLock{}
		l.locks[messageID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, messageID)
		}
		l.mu.Unlock()
	}
}
