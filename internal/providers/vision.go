package providers

import (
	"context"
	"encoding/base64"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ssplabs/atende/internal/result"
)

const defaultVisionModel = "gpt-4o-mini"

// defaultVisionPrompt asks for a plain-text description usable as an
// agent utterance.
const defaultVisionPrompt = "Descreva objetivamente o conteúdo desta imagem, " +
	"incluindo qualquer texto legível (placas, documentos, letreiros)."

// VisionInterpreter turns image bytes into a text description through a
// multimodal chat completion.
type VisionInterpreter struct {
	client *openai.Client
	model  string
	prompt string
}

// NewVisionInterpreter creates an interpreter. baseURL may be empty for
// the public API; prompt falls back to a generic description request.
func NewVisionInterpreter(apiKey, baseURL, model, prompt string) *VisionInterpreter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = defaultVisionModel
	}
	if prompt == "" {
		prompt = defaultVisionPrompt
	}
	return &VisionInterpreter{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		prompt: prompt,
	}
}

// Interpret sends the image inline as a data URL and returns the
// model's description. An empty description is a content-absence
// failure, distinct from a service error.
func (v *VisionInterpreter) Interpret(ctx context.Context, image []byte, mimeType string) result.Result[string] {
	if mimeType == "" || !strings.HasPrefix(mimeType, "image/") {
		mimeType = "image/jpeg"
	}
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)

	resp, err := v.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: v.model,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: v.prompt},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL}},
			},
		}},
	})
	if err != nil {
		return result.Wrap[string]("Erro ao interpretar a imagem", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return result.Fail[string]("Nenhum conteúdo detectado na imagem.")
	}
	return result.Ok(resp.Choices[0].Message.Content)
}
