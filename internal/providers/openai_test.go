package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOpenAI_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Error("missing bearer token")
		}

		var body openaiRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if body.ResponseFormat == nil || body.ResponseFormat.Type != "json_object" {
			t.Error("request does not ask for JSON mode")
		}
		if len(body.Messages) != 2 || body.Messages[0].Role != "system" {
			t.Errorf("messages = %+v", body.Messages)
		}

		resp := openaiResponse{
			Choices: []openaiChoice{
				{Message: openaiMessage{Role: "assistant", Content: `{"errors":[]}`}},
			},
			Usage: openaiUsage{TotalTokens: 42},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	o := &OpenAI{
		apiKey:  "test-key",
		model:   "gpt-4o-mini",
		baseURL: server.URL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}

	resp, err := o.Generate(context.Background(), GenerateRequest{
		SystemPrompt: "sys",
		UserPrompt:   "user",
		MaxTokens:    10,
	})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if resp.Content != `{"errors":[]}` {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.TokensUsed != 42 {
		t.Errorf("TokensUsed = %d, want 42", resp.TokensUsed)
	}
}

func TestOpenAI_ServerErrorRetries(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(openaiResponse{
			Choices: []openaiChoice{{Message: openaiMessage{Content: "[]"}}},
		})
	}))
	defer server.Close()

	o := &OpenAI{
		apiKey:  "test-key",
		model:   "gpt-4o-mini",
		baseURL: server.URL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}

	resp, err := o.Generate(context.Background(), GenerateRequest{UserPrompt: "x"})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if resp.Content != "[]" {
		t.Errorf("Content = %q", resp.Content)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2 (one retry)", calls)
	}
}
