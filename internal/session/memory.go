package session

import (
	"context"
	"sync"

	"github.com/ssplabs/atende/internal/result"
)

// MemoryStore keeps session histories in process memory. Entries are
// never evicted; restart loses everything.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]Message
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]Message)}
}

// GetHistory returns a copy of the session's messages in append order.
// A never-seen session id yields an empty history, not a failure.
func (s *MemoryStore) GetHistory(_ context.Context, sessionID string) result.Result[[]Message] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.sessions[sessionID]
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return result.Ok(out)
}

// Append adds msg to the end of the session's history, creating the
// session if needed.
func (s *MemoryStore) Append(_ context.Context, sessionID string, msg Message) result.Result[struct{}] {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sessionID] = append(s.sessions[sessionID], msg)
	return result.Ok(struct{}{})
}

// Len reports the number of tracked sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
