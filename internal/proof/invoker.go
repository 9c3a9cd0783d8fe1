package proof

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redpenlabs/redpen/internal/cache"
	"github.com/redpenlabs/redpen/internal/providers"
	"github.com/redpenlabs/redpen/internal/rawlog"
)

const (
	// DefaultMaxAttempts bounds retries per invocation: malformed
	// output, transport failure, and empty responses all consume one
	// attempt. The same prompt is re-sent; there is no repair loop.
	DefaultMaxAttempts = 5
	// DefaultRetryDelay is the fixed pause between attempts.
	DefaultRetryDelay = 500 * time.Millisecond

	invokeMaxTokens = 8192
)

// Invoker calls the model in structured-output mode. It is used
// identically by the detector and judge passes.
type Invoker struct {
	Provider    providers.Generator
	Model       string
	Cache       *cache.Cache
	Log         *rawlog.Sink
	MaxAttempts int
	RetryDelay  time.Duration
}

// NewInvoker wires an invoker with the default retry policy. Cache and
// log may be nil.
func NewInvoker(p providers.Generator, model string, c *cache.Cache, sink *rawlog.Sink) *Invoker {
	return &Invoker{
		Provider:    p,
		Model:       model,
		Cache:       c,
		Log:         sink,
		MaxAttempts: DefaultMaxAttempts,
		RetryDelay:  DefaultRetryDelay,
	}
}

// Invoke sends one prompt for one chunk and returns parsed records
// tagged with the pass, variant, and chunk index. Exhausting retries
// returns a *ModelUnavailableError; the caller must not let that abort
// sibling chunks.
func (iv *Invoker) Invoke(ctx context.Context, pass Pass, chunk Chunk, variant Variant, system, user string) ([]ErrorRecord, error) {
	key := cache.BuildKey(iv.Provider.Name(), iv.Model, string(pass), user)
	if iv.Cache != nil {
		if content, ok := iv.Cache.Get(key); ok {
			if recs, err := parseRecords(content); err == nil {
				return tagRecords(recs, pass, variant, chunk.Index), nil
			}
		}
	}

	attempts := iv.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := iv.Provider.Generate(ctx, providers.GenerateRequest{
			SystemPrompt: system,
			UserPrompt:   user,
			MaxTokens:    invokeMaxTokens,
		})

		var recs []ErrorRecord
		if err == nil && strings.TrimSpace(resp.Content) == "" {
			err = &SchemaViolationError{Detail: "empty response"}
		}
		if err == nil {
			recs, err = parseRecords(resp.Content)
		}

		logErr := ""
		if err != nil {
			logErr = err.Error()
		}
		iv.Log.Append(rawlog.Record{
			Variant:  string(variant),
			Chunk:    chunk.Index,
			Pass:     string(pass),
			Attempt:  attempt,
			Response: resp.Content,
			Error:    logErr,
		})

		if err == nil {
			if iv.Cache != nil {
				iv.Cache.Put(key, resp.Content)
			}
			return tagRecords(recs, pass, variant, chunk.Index), nil
		}
		lastErr = err

		if attempt < attempts {
			delay := iv.RetryDelay
			if delay <= 0 {
				delay = DefaultRetryDelay
			}
			select {
			case <-ctx.Done():
				return nil, &ModelUnavailableError{Pass: pass, Chunk: chunk.Index, Attempts: attempt, Err: ctx.Err()}
			case <-time.After(delay):
			}
		}
	}

	return nil, &ModelUnavailableError{Pass: pass, Chunk: chunk.Index, Attempts: attempts, Err: lastErr}
}

func tagRecords(recs []ErrorRecord, pass Pass, variant Variant, chunkIndex int) []ErrorRecord {
	out := make([]ErrorRecord, len(recs))
	for i, r := range recs {
		r.Pass = pass
		r.Variant = variant
		r.ChunkIndex = chunkIndex
		out[i] = r
	}
	return out
}

// rawRecord is the JSON structure returned by the model.
type rawRecord struct {
	Quoted      string `json:"quoted"`
	Fix         string `json:"fix"`
	Kind        string `json:"kind"`
	Explanation string `json:"explanation"`
}

// parseRecords decodes model output into records. Accepts a bare JSON
// array or an object wrapping one under a conventional key (OpenAI's
// JSON mode always returns an object). Anything else is a
// *SchemaViolationError.
func parseRecords(content string) ([]ErrorRecord, error) {
	content = strings.TrimSpace(content)

	// Strip markdown code fences if present
	if strings.HasPrefix(content, "```") {
		lines := strings.Split(content, "\n")
		if len(lines) >= 2 {
			start := 1
			end := len(lines)
			if strings.TrimSpace(lines[end-1]) == "```" {
				end--
			}
			content = strings.Join(lines[start:end], "\n")
		}
		content = strings.TrimSpace(content)
	}

	var raw []rawRecord
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		var wrapped map[string]json.RawMessage
		if werr := json.Unmarshal([]byte(content), &wrapped); werr != nil {
			return nil, &SchemaViolationError{Detail: "not a JSON array", Err: err}
		}
		found := false
		for _, k := range []string{"errors", "records", "candidates", "findings"} {
			if v, ok := wrapped[k]; ok {
				if err := json.Unmarshal(v, &raw); err != nil {
					return nil, &SchemaViolationError{Detail: "wrapped value is not a record array", Err: err}
				}
				found = true
				break
			}
		}
		if !found {
			return nil, &SchemaViolationError{Detail: "object response has no record array"}
		}
	}

	recs := make([]ErrorRecord, 0, len(raw))
	for _, r := range raw {
		if r.Quoted == "" {
			return nil, &SchemaViolationError{Detail: "record missing quoted text"}
		}
		recs = append(recs, ErrorRecord{
			Quoted:      r.Quoted,
			Fix:         r.Fix,
			Kind:        NormalizeKind(r.Kind),
			Explanation: r.Explanation,
		})
	}
	return recs, nil
}
