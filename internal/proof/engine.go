package proof

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// defaultConcurrency limits parallel chunk workers to respect provider
// rate limits.
const defaultConcurrency = 4

// Document is one logical input with up to two textual representations
// of the same content. Either field may be empty.
type Document struct {
	Plain     string
	Formatted string
}

// Options controls a pipeline run.
type Options struct {
	MaxChunkBytes int
	Concurrency   int
	Policy        Policy
}

// ChunkOutcome is the terminal state of one chunk: the judge-confirmed
// records, the raw detector set kept for transparency, or the failure.
type ChunkOutcome struct {
	Variant  Variant       `json:"variant"`
	Chunk    Chunk         `json:"chunk"`
	Status   ChunkStatus   `json:"status"`
	Detected []ErrorRecord `json:"detected,omitempty"`
	Records  []ErrorRecord `json:"records,omitempty"`
	Err      error         `json:"-"`
}

// Timing contains performance metrics.
type Timing struct {
	LLMMs   int64 `json:"llmMs"`
	TotalMs int64 `json:"totalMs"`
}

// Result is the final, immutable artifact of a run.
type Result struct {
	RunID     string         `json:"runId"`
	Report    Report         `json:"report"`
	Plain     Report         `json:"plain"`
	Formatted Report         `json:"formatted"`
	Summary   Summary        `json:"summary"`
	Outcomes  []ChunkOutcome `json:"outcomes,omitempty"`
	// Partial means at least one chunk failed; Failed means none
	// succeeded. A Failed result is never a silently empty success.
	Partial bool   `json:"partial"`
	Failed  bool   `json:"failed"`
	Timing  Timing `json:"timing"`
}

type chunkTask struct {
	variant Variant
	chunk   Chunk
}

// Run executes the two-pass pipeline over a document: chunk each
// variant, run detector then judge per chunk, merge in chunk order,
// apply the filter chain, and split by variant.
//
// Chunk failures are collected, not thrown: the error return is
// reserved for rejected input (*ChunkingError) and filter invariant
// bugs (*FilterInvariantViolation).
func Run(ctx context.Context, doc Document, inv *Invoker, opts Options) (*Result, error) {
	start := time.Now()

	sources := make(map[Variant][]Chunk)
	var tasks []chunkTask
	for _, in := range []struct {
		variant Variant
		text    string
	}{
		{VariantPlain, doc.Plain},
		{VariantFormatted, doc.Formatted},
	} {
		if in.text == "" {
			continue
		}
		chunks, err := Split(in.text, opts.MaxChunkBytes)
		if err != nil {
			return nil, err
		}
		sources[in.variant] = chunks
		for _, c := range chunks {
			tasks = append(tasks, chunkTask{variant: in.variant, chunk: c})
		}
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	outcomes := make([]ChunkOutcome, len(tasks))
	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)
	var totalLLMMs int64
	var mu sync.Mutex

	for i, t := range tasks {
		wg.Add(1)
		go func(i int, t chunkTask) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			llmStart := time.Now()
			outcomes[i] = processChunk(ctx, inv, t)
			elapsed := time.Since(llmStart).Milliseconds()

			mu.Lock()
			totalLLMMs += elapsed
			mu.Unlock()
		}(i, t)
	}
	wg.Wait()

	// Merge in task order: tasks were built per variant in chunk
	// order, so concatenation preserves (variant, chunk index) and
	// completion order is irrelevant.
	merged := Report{Sources: sources}
	succeeded := 0
	for _, o := range outcomes {
		if o.Status == StatusFailed {
			pass := PassDetector
			msg := "unknown failure"
			if m, ok := o.Err.(*ModelUnavailableError); ok {
				pass = m.Pass
				msg = m.Error()
			} else if o.Err != nil {
				msg = o.Err.Error()
			}
			merged.Failures = append(merged.Failures, ChunkFailure{
				Variant:    o.Variant,
				ChunkIndex: o.Chunk.Index,
				Pass:       pass,
				Message:    msg,
			})
			continue
		}
		succeeded++
		merged.Records = append(merged.Records, o.Records...)
	}

	filtered := ApplyFilters(SortRecords(merged), DefaultChain(opts.Policy))
	filtered = SortRecords(filtered)
	if err := Validate(filtered); err != nil {
		return nil, err
	}

	plain, formatted := SplitByVariant(filtered)

	runID := inv.Log.RunID()
	if runID == "" {
		runID = uuid.NewString()
	}

	return &Result{
		RunID:     runID,
		Report:    filtered,
		Plain:     plain,
		Formatted: formatted,
		Summary:   Summarize(filtered),
		Outcomes:  outcomes,
		Partial:   len(merged.Failures) > 0,
		Failed:    len(tasks) > 0 && succeeded == 0,
		Timing: Timing{
			LLMMs:   totalLLMMs,
			TotalMs: time.Since(start).Milliseconds(),
		},
	}, nil
}

// processChunk drives one chunk through the per-chunk state machine:
// Pending -> Detecting -> Judging -> Done, or Failed at either pass.
func processChunk(ctx context.Context, inv *Invoker, t chunkTask) ChunkOutcome {
	out := ChunkOutcome{Variant: t.variant, Chunk: t.chunk, Status: StatusPending}

	out.Status = StatusDetecting
	detected, err := inv.Invoke(ctx, PassDetector, t.chunk, t.variant,
		DetectorSystemPrompt(), BuildDetectorPrompt(t.chunk, t.variant))
	if err != nil {
		out.Status = StatusFailed
		out.Err = err
		return out
	}
	out.Detected = detected

	// Nothing to narrow: the judge never invents candidates, so an
	// empty detector set short-circuits to an empty confirmed set.
	if len(detected) == 0 {
		out.Status = StatusDone
		return out
	}

	out.Status = StatusJudging
	confirmed, err := inv.Invoke(ctx, PassJudge, t.chunk, t.variant,
		JudgeSystemPrompt(), BuildJudgePrompt(t.chunk, t.variant, detected))
	if err != nil {
		out.Status = StatusFailed
		out.Err = err
		return out
	}

	out.Records = confirmed
	out.Status = StatusDone
	return out
}
