package service

import "sync"

// sessionLocks hands out one mutex per session ID so the
// requester-message/assistant-reply pair is written without interleaving from
// concurrent posts to the same session. Entries are never reclaimed; the set
// is bounded by the number of sessions seen by this process.
type sessionLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{m: make(map[string]*sync.Mutex)}
}

// get returns the mutex for sessionID, creating it on first use.
func (l *sessionLocks) get(sessionID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if m, ok := l.m[sessionID]; ok {
		return m
	}
	m := &sync.Mutex{}
	l.m[sessionID] = m
	return m
}
