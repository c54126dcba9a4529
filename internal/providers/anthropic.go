package providers

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/ssplabs/atende/internal/result"
	"github.com/ssplabs/atende/internal/session"
)

const (
	defaultAnthropicModel = "claude-3-5-haiku-20241022"
	defaultMaxTokens      = 4096
)

// AnthropicAdapter generates replies through the Anthropic Messages API.
type AnthropicAdapter struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicAdapter creates an adapter. baseURL may be empty for the
// public API.
func NewAnthropicAdapter(apiKey, baseURL, model string) *AnthropicAdapter {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(opts...)
	if model == "" {
		model = defaultAnthropicModel
	}
	return &AnthropicAdapter{client: &client, model: model}
}

// Generate sends history + input to the Messages API.
func (a *AnthropicAdapter) Generate(ctx context.Context, input string, history []session.Message, pctx Context) result.Result[string] {
	messages := make([]anthropic.MessageParam, 0, len(history)+1)
	for _, m := range history {
		if m.Role == session.RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		} else {
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(input)))

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: defaultMaxTokens,
		Messages:  messages,
	}
	if sys := systemText(pctx); sys != "" {
		params.System = []anthropic.TextBlockParam{{Text: sys}}
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return result.Wrap[string]("Erro ao gerar resposta", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return result.Fail[string]("Erro ao gerar resposta: resposta vazia do modelo")
	}
	return result.Ok(text)
}
