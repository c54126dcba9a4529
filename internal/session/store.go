// Package session provides keyed conversation history with pluggable
// backends: a volatile in-process map or a SQLite store with TTL
// eviction. Both expose the same narrow Store contract.
package session

import (
	"context"
	"time"

	"github.com/ssplabs/atende/internal/result"
)

// Message roles within a session history.
const (
	RoleHuman     = "human"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry in a session's history.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Human builds a human-authored message stamped now.
func Human(content string) Message {
	return Message{Role: RoleHuman, Content: content, Timestamp: time.Now().UTC()}
}

// Assistant builds an agent-authored message stamped now.
func Assistant(content string) Message {
	return Message{Role: RoleAssistant, Content: content, Timestamp: time.Now().UTC()}
}

// Store is the session history contract. Sessions are created lazily:
// GetHistory on a never-seen id succeeds with an empty history. Appends
// are ordered per session; ordering across concurrent appenders is the
// caller's concern.
type Store interface {
	GetHistory(ctx context.Context, sessionID string) result.Result[[]Message]
	Append(ctx context.Context, sessionID string, msg Message) result.Result[struct{}]
}
