package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const defaultOllamaURL = "http://localhost:11434"

// Ollama implements the Generator interface for local Ollama servers.
// The chat endpoint supports a native JSON output format.
type Ollama struct {
	model   string
	baseURL string
	client  *http.Client
}

// NewOllama creates a new Ollama provider.
func NewOllama(model string) (*Ollama, error) {
	baseURL := os.Getenv("OLLAMA_HOST")
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	return &Ollama{
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 300 * time.Second},
	}, nil
}

func (o *Ollama) Name() string { return "ollama" }

func (o *Ollama) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	zero := 0.0
	body := ollamaRequest{
		Model: o.model,
		Messages: []ollamaMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		Format: "json",
		Stream: false,
		Options: &ollamaOptions{
			Temperature: &zero,
			NumPredict:  req.MaxTokens,
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return GenerateResponse{}, fmt.Errorf("marshaling request: %w", err)
	}

	var resp GenerateResponse
	err = retryWithBackoff(ctx, 3, func() error {
		httpReq, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/api/chat", bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		httpResp, err := o.client.Do(httpReq)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer httpResp.Body.Close()

		respBody, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}

		if httpResp.StatusCode >= 500 {
			return &serverError{statusCode: httpResp.StatusCode, body: string(respBody)}
		}
		if httpResp.StatusCode != 200 {
			return fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, string(respBody))
		}

		var result ollamaResponse
		if err := json.Unmarshal(respBody, &result); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
		if result.Message.Content == "" {
			return fmt.Errorf("empty text content in API response")
		}

		resp = GenerateResponse{
			Content:    result.Message.Content,
			TokensUsed: result.EvalCount + result.PromptEvalCount,
		}
		return nil
	})

	return resp, err
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Format   string          `json:"format,omitempty"`
	Stream   bool            `json:"stream"`
	Options  *ollamaOptions  `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature *float64 `json:"temperature,omitempty"`
	NumPredict  int      `json:"num_predict,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaResponse struct {
	Message         ollamaMessage `json:"message"`
	EvalCount       int           `json:"eval_count"`
	PromptEvalCount int           `json:"prompt_eval_count"`
}
