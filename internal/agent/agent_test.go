package agent

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/ssplabs/atende/internal/providers"
	"github.com/ssplabs/atende/internal/result"
	"github.com/ssplabs/atende/internal/session"
)

// failingStore wraps a real store and fails selected operations.
type failingStore struct {
	inner         session.Store
	failGet       bool
	failAppendAt  int // 1-based append call index to fail, 0 = never
	appendCalls   int
	appendCallsMu sync.Mutex
}

func (f *failingStore) GetHistory(ctx context.Context, id string) result.Result[[]session.Message] {
	if f.failGet {
		return result.Fail[[]session.Message]("backend indisponível")
	}
	return f.inner.GetHistory(ctx, id)
}

func (f *failingStore) Append(ctx context.Context, id string, msg session.Message) result.Result[struct{}] {
	f.appendCallsMu.Lock()
	f.appendCalls++
	n := f.appendCalls
	f.appendCallsMu.Unlock()
	if f.failAppendAt != 0 && n == f.failAppendAt {
		return result.Fail[struct{}]("disco cheio")
	}
	return f.inner.Append(ctx, id, msg)
}

func TestGenerateReplyValidation(t *testing.T) {
	store := session.NewMemoryStore()
	mock := &providers.MockAdapter{Reply: "olá"}
	a := New(store, mock, "prompt")

	tests := []struct {
		name      string
		input     string
		sessionID string
	}{
		{"empty input", "", "123"},
		{"empty session", "Oi", ""},
		{"both empty", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := a.GenerateReply(context.Background(), tc.input, tc.sessionID)
			if r.Success() {
				t.Fatal("expected failure")
			}
			if r.Err() != "Input inválido." {
				t.Errorf("Err = %q", r.Err())
			}
		})
	}
	if mock.CallCount() != 0 {
		t.Errorf("model invoked %d times on invalid input, want 0", mock.CallCount())
	}
	if h := store.GetHistory(context.Background(), "123"); len(h.Data()) != 0 {
		t.Error("invalid input produced side effects")
	}
}

func TestGenerateReplyHappyPath(t *testing.T) {
	store := session.NewMemoryStore()
	mock := &providers.MockAdapter{Reply: "Olá! Em que posso ajudar?"}
	a := New(store, mock, "Você é o atendente.")

	r := a.GenerateReply(context.Background(), "Oi", "123")
	if !r.Success() {
		t.Fatalf("expected success, got %q", r.Err())
	}
	if r.Data() != "Olá! Em que posso ajudar?" {
		t.Errorf("reply = %q", r.Data())
	}

	// History pairing: exactly 2 entries, human then assistant.
	h := store.GetHistory(context.Background(), "123").Data()
	if len(h) != 2 {
		t.Fatalf("history length = %d, want 2", len(h))
	}
	if h[0].Role != session.RoleHuman || h[0].Content != "Oi" {
		t.Errorf("first entry = %+v", h[0])
	}
	if h[1].Role != session.RoleAssistant || h[1].Content != "Olá! Em que posso ajudar?" {
		t.Errorf("second entry = %+v", h[1])
	}

	if len(mock.Calls) != 1 {
		t.Fatalf("model called %d times", len(mock.Calls))
	}
	call := mock.Calls[0]
	if call.Input != "Oi" {
		t.Errorf("model input = %q", call.Input)
	}
	if call.Context.SystemPrompt != "Você é o atendente." {
		t.Errorf("system prompt = %q", call.Context.SystemPrompt)
	}
	if call.Context.Date.IsZero() {
		t.Error("current date not passed to model")
	}
}

func TestGenerateReplyHistoryGrowsByTwoEachTurn(t *testing.T) {
	store := session.NewMemoryStore()
	a := New(store, &providers.MockAdapter{Reply: "resposta"}, "")

	for turn := 1; turn <= 3; turn++ {
		r := a.GenerateReply(context.Background(), fmt.Sprintf("pergunta %d", turn), "s")
		if !r.Success() {
			t.Fatalf("turn %d failed: %q", turn, r.Err())
		}
		h := store.GetHistory(context.Background(), "s").Data()
		if len(h) != turn*2 {
			t.Fatalf("after turn %d history length = %d, want %d", turn, len(h), turn*2)
		}
	}
}

func TestGenerateReplyHistoryFailureAbortsBeforeModel(t *testing.T) {
	store := &failingStore{inner: session.NewMemoryStore(), failGet: true}
	mock := &providers.MockAdapter{Reply: "nunca"}
	a := New(store, mock, "")

	r := a.GenerateReply(context.Background(), "Oi", "123")
	if r.Success() {
		t.Fatal("expected failure")
	}
	if r.Err() != "Erro ao obter histórico da sessão" {
		t.Errorf("Err = %q", r.Err())
	}
	if mock.CallCount() != 0 {
		t.Error("model invoked despite history failure")
	}
}

func TestGenerateReplyModelFailurePropagates(t *testing.T) {
	store := session.NewMemoryStore()
	a := New(store, &providers.MockAdapter{FailMsg: "Erro ao gerar resposta: quota"}, "")

	r := a.GenerateReply(context.Background(), "Oi", "123")
	if r.Success() {
		t.Fatal("expected failure")
	}
	if r.Err() != "Erro ao gerar resposta: quota" {
		t.Errorf("Err = %q", r.Err())
	}
	if h := store.GetHistory(context.Background(), "123"); len(h.Data()) != 0 {
		t.Error("history mutated despite model failure")
	}
}

func TestGenerateReplyAssistantAppendFailureSuppressed(t *testing.T) {
	store := &failingStore{inner: session.NewMemoryStore(), failAppendAt: 2}
	a := New(store, &providers.MockAdapter{Reply: "gerado"}, "")

	r := a.GenerateReply(context.Background(), "Oi", "123")
	if r.Success() {
		t.Fatal("reply must be suppressed when the assistant append fails")
	}
	if r.Err() != "Erro ao atualizar histórico com a resposta da IA" {
		t.Errorf("Err = %q", r.Err())
	}
}

func TestGenerateReplyConcurrentSameSession(t *testing.T) {
	store := session.NewMemoryStore()
	a := New(store, &providers.MockAdapter{Reply: "r"}, "")

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := a.GenerateReply(context.Background(), fmt.Sprintf("evento %d", i), "mesma")
			if !r.Success() {
				t.Errorf("turn %d failed: %q", i, r.Err())
			}
		}(i)
	}
	wg.Wait()

	// Both turns kept, and each human entry is immediately followed
	// by its assistant entry.
	h := store.GetHistory(context.Background(), "mesma").Data()
	if len(h) != 4 {
		t.Fatalf("history length = %d, want 4", len(h))
	}
	for i := 0; i < len(h); i += 2 {
		if h[i].Role != session.RoleHuman || h[i+1].Role != session.RoleAssistant {
			t.Errorf("entries %d/%d not a human/assistant pair: %q %q", i, i+1, h[i].Role, h[i+1].Role)
		}
	}
}
