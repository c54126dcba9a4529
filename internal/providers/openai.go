package providers

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ssplabs/atende/internal/result"
	"github.com/ssplabs/atende/internal/session"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIAdapter works with OpenAI and any OpenAI-compatible API.
type OpenAIAdapter struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewOpenAIAdapter creates an adapter. baseURL may be empty for the
// public API; model defaults to gpt-4o-mini.
func NewOpenAIAdapter(apiKey, baseURL, model string, temperature float32) *OpenAIAdapter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIAdapter{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: temperature,
	}
}

// Generate sends system prompt + history + input as a chat completion.
func (a *OpenAIAdapter) Generate(ctx context.Context, input string, history []session.Message, pctx Context) result.Result[string] {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	if sys := systemText(pctx); sys != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: sys,
		})
	}
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == session.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: input,
	})

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    messages,
		Temperature: a.temperature,
	})
	if err != nil {
		return result.Wrap[string]("Erro ao gerar resposta", err)
	}
	if len(resp.Choices) == 0 {
		return result.Fail[string]("Erro ao gerar resposta: resposta vazia do modelo")
	}
	return result.Ok(resp.Choices[0].Message.Content)
}
