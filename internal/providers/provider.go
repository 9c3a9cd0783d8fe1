package providers

import (
	"context"
	"fmt"
)

// GenerateRequest contains the data sent to an LLM for one pass.
// Every caller requests strict JSON output at temperature zero.
type GenerateRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
}

// GenerateResponse contains the raw response from an LLM.
type GenerateResponse struct {
	Content    string
	TokensUsed int
}

// Generator is the provider abstraction interface.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
	Name() string
}

// New creates a provider by name.
func New(provider, model string) (Generator, error) {
	switch provider {
	case "gemini", "google":
		return NewGemini(model)
	case "openai":
		return NewOpenAI(model)
	case "ollama", "lmstudio":
		return NewOllama(model)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}
