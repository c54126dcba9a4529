// Package agent turns a resolved text utterance plus session history
// into a reply and durably appends both sides of the turn.
package agent

import (
	"context"
	"sync"
	"time"

	"github.com/ssplabs/atende/internal/providers"
	"github.com/ssplabs/atende/internal/result"
	"github.com/ssplabs/atende/internal/session"
)

// Agent owns one session store handle and one language-model adapter.
type Agent struct {
	store        session.Store
	adapter      providers.Adapter
	systemPrompt string
	now          func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-session serialization
}

// New creates an Agent.
func New(store session.Store, adapter providers.Adapter, systemPrompt string) *Agent {
	return &Agent{
		store:        store,
		adapter:      adapter,
		systemPrompt: systemPrompt,
		now:          time.Now,
		locks:        make(map[string]*sync.Mutex),
	}
}

// sessionLock returns the mutex serializing turns for sessionID.
func (a *Agent) sessionLock(sessionID string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	l, ok := a.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		a.locks[sessionID] = l
	}
	return l
}

// GenerateReply produces the agent's reply for inputText within the
// session. Read-history-then-append is atomic per session id; turns
// for distinct sessions proceed concurrently.
//
// If appending the assistant message fails after the human message was
// stored, the generated reply is suppressed and a failure is returned:
// callers must not treat a reply as delivered when history is
// inconsistent.
func (a *Agent) GenerateReply(ctx context.Context, inputText, sessionID string) result.Result[string] {
	if inputText == "" || sessionID == "" {
		return result.Fail[string]("Input inválido.")
	}

	lock := a.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	history := a.store.GetHistory(ctx, sessionID)
	if !history.Success() {
		return result.Fail[string]("Erro ao obter histórico da sessão")
	}

	reply := a.adapter.Generate(ctx, inputText, history.Data(), providers.Context{
		Date:         a.now(),
		SystemPrompt: a.systemPrompt,
	})
	if !reply.Success() {
		return result.Fail[string](reply.Err())
	}

	if r := a.store.Append(ctx, sessionID, session.Human(inputText)); !r.Success() {
		return result.Fail[string]("Erro ao atualizar histórico com a mensagem do usuário")
	}
	if r := a.store.Append(ctx, sessionID, session.Assistant(reply.Data())); !r.Success() {
		return result.Fail[string]("Erro ao atualizar histórico com a resposta da IA")
	}

	return result.Ok(reply.Data())
}
