package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGemini_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			t.Error("missing API key in query string")
		}

		var body geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if body.GenerationConfig == nil || body.GenerationConfig.ResponseMimeType != "application/json" {
			t.Error("request does not force JSON responses")
		}
		if body.GenerationConfig.Temperature == nil || *body.GenerationConfig.Temperature != 0 {
			t.Error("request does not pin temperature to zero")
		}

		resp := geminiResponse{
			Candidates: []geminiCandidate{
				{Content: geminiContent{Parts: []geminiPart{{Text: "[]"}}}},
			},
			UsageMetadata: geminiUsage{TotalTokenCount: 75},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	g := &Gemini{
		apiKey: "test-key",
		model:  "gemini-2.0-flash-001",
		client: &http.Client{
			Transport: &rewriteTransport{
				base:    server.Client().Transport,
				baseURL: server.URL,
			},
		},
	}

	resp, err := g.Generate(context.Background(), GenerateRequest{
		SystemPrompt: "test",
		UserPrompt:   "test",
		MaxTokens:    10,
	})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if resp.Content != "[]" {
		t.Errorf("Content = %q, want %q", resp.Content, "[]")
	}
	if resp.TokensUsed != 75 {
		t.Errorf("TokensUsed = %d, want 75", resp.TokensUsed)
	}
}

func TestGemini_AuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"forbidden"}`))
	}))
	defer server.Close()

	g := &Gemini{
		apiKey: "bad-key",
		model:  "gemini-2.0-flash-001",
		client: &http.Client{
			Transport: &rewriteTransport{
				base:    server.Client().Transport,
				baseURL: server.URL,
			},
		},
	}

	_, err := g.Generate(context.Background(), GenerateRequest{UserPrompt: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsAuthError(err) {
		t.Errorf("error = %v, want auth error", err)
	}
}

// rewriteTransport redirects requests to a local test server.
type rewriteTransport struct {
	base    http.RoundTripper
	baseURL string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = t.baseURL[len("http://"):]
	return t.base.RoundTrip(req)
}
