// Package cache provides a file-based TTL cache for model responses,
// keyed by provider, model, pass name, and chunk text.
package cache
