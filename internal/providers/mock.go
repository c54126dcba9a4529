package providers

import (
	"context"
	"sync"

	"github.com/ssplabs/atende/internal/result"
	"github.com/ssplabs/atende/internal/session"
)

// MockAdapter is a scriptable Adapter for tests.
type MockAdapter struct {
	mu      sync.Mutex
	Reply   string
	FailMsg string
	Calls   []MockCall
}

// MockCall records one Generate invocation.
type MockCall struct {
	Input   string
	History []session.Message
	Context Context
}

// Generate records the call and returns the scripted reply or failure.
func (m *MockAdapter) Generate(_ context.Context, input string, history []session.Message, pctx Context) result.Result[string] {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Input: input, History: history, Context: pctx})
	m.mu.Unlock()

	if m.FailMsg != "" {
		return result.Fail[string](m.FailMsg)
	}
	return result.Ok(m.Reply)
}

// CallCount returns how many times Generate was invoked.
func (m *MockAdapter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
