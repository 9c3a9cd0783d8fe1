// Package providers implements LLM provider clients behind the
// Generator interface. All providers request strict JSON output at
// temperature zero and share a retry/backoff layer for rate-limit and
// server errors.
package providers
