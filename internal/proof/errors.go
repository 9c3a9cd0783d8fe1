package proof

import (
	"errors"
	"fmt"
)

// ChunkingError means no safe split boundary existed within tolerance.
// The input is rejected; nothing is sent to the model.
type ChunkingError struct {
	Offset int
	Reason string
}

func (e *ChunkingError) Error() string {
	return fmt.Sprintf("chunking failed at byte %d: %s", e.Offset, e.Reason)
}

// SchemaViolationError means the model returned output that does not
// conform to the record schema. Retryable up to the attempt bound.
type SchemaViolationError struct {
	Detail string
	Err    error
}

func (e *SchemaViolationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("schema violation: %s: %v", e.Detail, e.Err)
	}
	return "schema violation: " + e.Detail
}

func (e *SchemaViolationError) Unwrap() error { return e.Err }

// ModelUnavailableError means retries were exhausted for one chunk.
// Fatal for that chunk only; sibling chunks keep running.
type ModelUnavailableError struct {
	Pass     Pass
	Chunk    int
	Attempts int
	Err      error
}

func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf("%s pass unavailable for chunk %d after %d attempts: %v",
		e.Pass, e.Chunk, e.Attempts, e.Err)
}

func (e *ModelUnavailableError) Unwrap() error { return e.Err }

// FilterInvariantViolation is a bug guard: a filter produced output
// that breaks a report invariant. It should never occur.
type FilterInvariantViolation struct {
	Filter string
	Detail string
}

func (e *FilterInvariantViolation) Error() string {
	return fmt.Sprintf("filter %q violated invariant: %s", e.Filter, e.Detail)
}

// IsModelUnavailable reports whether err is a retry-exhaustion failure.
func IsModelUnavailable(err error) bool {
	var m *ModelUnavailableError
	return errors.As(err, &m)
}

// IsChunkingError reports whether err is an input-rejection failure.
func IsChunkingError(err error) bool {
	var c *ChunkingError
	return errors.As(err, &c)
}
