package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ssplabs/atende/internal/session"
)

func fakeAnthropicServer(t *testing.T, reply string, status int) (*httptest.Server, *map[string]any) {
	t.Helper()
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/messages") {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if status != http.StatusOK {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]any{
				"type":  "error",
				"error": map[string]any{"type": "api_error", "message": "upstream error"},
			})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":    "msg_test",
			"type":  "message",
			"role":  "assistant",
			"model": "claude-3-5-haiku-20241022",
			"content": []map[string]any{
				{"type": "text", "text": reply},
			},
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 1, "output_tokens": 1},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func TestAnthropicGenerate(t *testing.T) {
	srv, captured := fakeAnthropicServer(t, "Olá, tudo bem?", http.StatusOK)
	a := NewAnthropicAdapter("key", srv.URL, "")

	history := []session.Message{{Role: session.RoleHuman, Content: "antes"}}
	r := a.Generate(context.Background(), "Oi", history, Context{SystemPrompt: "Atenda em português."})
	if !r.Success() {
		t.Fatalf("expected success, got %q", r.Err())
	}
	if r.Data() != "Olá, tudo bem?" {
		t.Errorf("reply = %q", r.Data())
	}

	msgs := (*captured)["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("sent %d messages, want 2", len(msgs))
	}
	if (*captured)["system"] == nil {
		t.Error("system prompt not sent")
	}
}

func TestAnthropicGenerateServiceError(t *testing.T) {
	srv, _ := fakeAnthropicServer(t, "", http.StatusInternalServerError)
	a := NewAnthropicAdapter("key", srv.URL, "")

	r := a.Generate(context.Background(), "Oi", nil, Context{})
	if r.Success() {
		t.Fatal("expected failure")
	}
	if !strings.HasPrefix(r.Err(), "Erro ao gerar resposta") {
		t.Errorf("Err = %q", r.Err())
	}
}
