package convo

import (
	"sync"
	"time"
)

// Manager owns the active sessions keyed by chat id. Sessions for different
// chats are independent; the chain itself is shared and read-only.
type Manager struct {
	mu       sync.RWMutex
	chain    *Chain
	sessions map[int64]*Session
}

// NewManager constructs a Manager over the given chain.
func NewManager(chain *Chain) *Manager {
	return &Manager{
		chain:    chain,
		sessions: make(map[int64]*Session),
	}
}

// Start creates a fresh session for the chat, replacing any previous one.
func (m *Manager) Start(chatID, correlationID int64, flow Flow) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := newSession(m.chain, flow, chatID, correlationID)
	m.sessions[chatID] = s
	return s
}

// Lookup returns the active session for the chat, if any.
func (m *Manager) Lookup(chatID int64) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[chatID]
	return s, ok
}

// Release discards the chat's session, but only if it still is the given one.
// A handler finishing a session the reaper already evicted (and possibly
// replaced) must not remove its successor.
func (m *Manager) Release(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.sessions[s.Owner]; ok && cur == s {
		delete(m.sessions, s.Owner)
	}
}

// Reap evicts sessions whose last activity is older than ttl and returns the
// number of evicted sessions. A non-positive ttl reaps nothing.
func (m *Manager) Reap(now time.Time, ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for chatID, s := range m.sessions {
		if now.Sub(s.lastActive()) > ttl {
			delete(m.sessions, chatID)
			n++
		}
	}
	return n
}
