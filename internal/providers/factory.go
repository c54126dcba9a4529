package providers

import "fmt"

// New builds the configured adapter. kind selects the vendor:
// "openai" (or "openai-compatible" with a custom baseURL) and
// "anthropic" are supported.
func New(kind, apiKey, baseURL, model string, temperature float32) (Adapter, error) {
	switch kind {
	case "openai", "openai-compatible", "":
		return NewOpenAIAdapter(apiKey, baseURL, model, temperature), nil
	case "anthropic":
		return NewAnthropicAdapter(apiKey, baseURL, model), nil
	default:
		return nil, fmt.Errorf("unknown provider kind %q", kind)
	}
}
