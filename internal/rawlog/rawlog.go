package rawlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/redpenlabs/redpen/internal/redact"
)

// Record is one model invocation attempt, keyed by chunk index and
// pass name for later inspection.
type Record struct {
	ID       string    `json:"id"`
	Time     time.Time `json:"time"`
	RunID    string    `json:"runId"`
	Variant  string    `json:"variant"`
	Chunk    int       `json:"chunk"`
	Pass     string    `json:"pass"`
	Attempt  int       `json:"attempt"`
	Response string    `json:"response,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Sink is an append-only debug log. Appends are serialized so that
// concurrent chunk workers never interleave partial records; each
// append is one complete JSON line.
type Sink struct {
	mu    sync.Mutex
	f     *os.File
	runID string
}

// Open creates a sink writing to dir/run-<id>.jsonl. A nil *Sink is a
// valid no-op sink.
func Open(dir string) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating raw log directory: %w", err)
	}
	runID := uuid.NewString()
	f, err := os.Create(filepath.Join(dir, "run-"+runID+".jsonl"))
	if err != nil {
		return nil, fmt.Errorf("creating raw log file: %w", err)
	}
	return &Sink{f: f, runID: runID}, nil
}

// RunID returns the identifier embedded in every record.
func (s *Sink) RunID() string {
	if s == nil {
		return ""
	}
	return s.runID
}

// Append writes one record. Response and error text are scrubbed for
// secrets before hitting disk.
func (s *Sink) Append(rec Record) error {
	if s == nil {
		return nil
	}
	rec.ID = uuid.NewString()
	rec.RunID = s.runID
	if rec.Time.IsZero() {
		rec.Time = time.Now()
	}
	rec.Response = redact.Secrets(rec.Response)
	rec.Error = redact.Secrets(rec.Error)

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling raw log record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("appending raw log record: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (s *Sink) Close() error {
	if s == nil {
		return nil
	}
	return s.f.Close()
}
