package factory

import (
	"fmt"
	"strings"

	"ai-butler-be/pkg/llm"
	"ai-butler-be/pkg/llm/anthropic"
	"ai-butler-be/pkg/llm/ollama"
	"ai-butler-be/pkg/llm/openai"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// Keys carries the provider credentials the factory may need.
type Keys struct {
	OpenAI        string
	Groq          string
	Anthropic     string
	OllamaBaseURL string
}

// ParseModelTag splits a provider-qualified model identifier such as
// "groq:llama-3.3-70b-versatile" into its provider and model parts.
func ParseModelTag(tag string) (provider, model string, err error) {
	parts := strings.SplitN(tag, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid model tag %q, expected provider:model", tag)
	}
	return strings.ToLower(parts[0]), parts[1], nil
}

// NewProvider resolves a provider-qualified model tag to a concrete backend.
// This is the only place provider strings are branched on; everything
// downstream sees llm.Provider.
func NewProvider(tag string, keys Keys) (llm.Provider, error) {
	provider, model, err := ParseModelTag(tag)
	if err != nil {
		return nil, err
	}

	switch provider {
	case "ollama":
		baseURL := keys.OllamaBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, model), nil
	case "openai":
		return openai.NewOpenAIProvider("", keys.OpenAI, model), nil
	case "groq":
		// Groq speaks the OpenAI wire format
		return openai.NewOpenAIProvider(groqBaseURL, keys.Groq, model), nil
	case "anthropic":
		return anthropic.NewAnthropicProvider(keys.Anthropic, model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}
