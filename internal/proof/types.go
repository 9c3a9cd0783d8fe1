package proof

import (
	"sort"
	"strings"
)

// Kind categorizes an objective error.
type Kind string

const (
	KindTypo        Kind = "typo"
	KindSpacing     Kind = "spacing"
	KindPunctuation Kind = "punctuation"
	KindOther       Kind = "other"
)

// NormalizeKind maps a raw model-supplied kind onto the known set.
func NormalizeKind(s string) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindTypo:
		return KindTypo
	case KindSpacing:
		return KindSpacing
	case KindPunctuation:
		return KindPunctuation
	default:
		return KindOther
	}
}

// Pass identifies which model pass produced or confirmed a record.
type Pass string

const (
	PassDetector Pass = "detector"
	PassJudge    Pass = "judge"
)

// Variant identifies which textual representation a record was found in.
type Variant string

const (
	VariantPlain     Variant = "plain"
	VariantFormatted Variant = "formatted"
)

// ErrorRecord is the canonical unit flowing through the pipeline.
// Quoted is the anchor: after filtering it is guaranteed to be a
// literal substring of the chunk it was found in.
type ErrorRecord struct {
	Quoted      string  `json:"quoted"`
	Fix         string  `json:"fix"`
	Kind        Kind    `json:"kind"`
	Explanation string  `json:"explanation,omitempty"`
	Pass        Pass    `json:"pass"`
	Variant     Variant `json:"variant"`
	ChunkIndex  int     `json:"chunkIndex"`
}

// Chunk is an immutable slice of a longer source text. Start is the
// byte offset of Text within the original input.
type Chunk struct {
	Index int    `json:"index"`
	Start int    `json:"start"`
	Text  string `json:"text"`
}

// ChunkStatus tracks per-chunk processing state.
type ChunkStatus string

const (
	StatusPending   ChunkStatus = "pending"
	StatusDetecting ChunkStatus = "detecting"
	StatusJudging   ChunkStatus = "judging"
	StatusDone      ChunkStatus = "done"
	StatusFailed    ChunkStatus = "failed"
)

// ChunkFailure records a chunk that exhausted retries. Failed chunks
// are reported distinctly from chunks that had zero errors.
type ChunkFailure struct {
	Variant    Variant `json:"variant"`
	ChunkIndex int     `json:"chunkIndex"`
	Pass       Pass    `json:"pass"`
	Message    string  `json:"message"`
}

// Report is an ordered sequence of error records together with the
// source chunks they refer to. Filters treat it as a value: they
// return a new Report and never mutate records in place.
type Report struct {
	Records  []ErrorRecord       `json:"records"`
	Sources  map[Variant][]Chunk `json:"-"`
	Failures []ChunkFailure      `json:"failures,omitempty"`
}

// ChunkText returns the source text for a record's chunk, or "" if the
// chunk is unknown.
func (r Report) ChunkText(v Variant, idx int) string {
	for _, c := range r.Sources[v] {
		if c.Index == idx {
			return c.Text
		}
	}
	return ""
}

// WithRecords returns a copy of the report carrying the given records.
// Sources and Failures are shared: both are append-only by convention.
func (r Report) WithRecords(recs []ErrorRecord) Report {
	return Report{Records: recs, Sources: r.Sources, Failures: r.Failures}
}

// variantRank fixes the relative order of variants in a merged report.
func variantRank(v Variant) int {
	if v == VariantFormatted {
		return 1
	}
	return 0
}

// SortRecords orders records by (chunk index, first-occurrence offset
// within the chunk) ascending. Ordering is a sort key only; chunk-
// relative positions are never renumbered.
func SortRecords(r Report) Report {
	recs := append([]ErrorRecord(nil), r.Records...)
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if va, vb := variantRank(a.Variant), variantRank(b.Variant); va != vb {
			return va < vb
		}
		if a.ChunkIndex != b.ChunkIndex {
			return a.ChunkIndex < b.ChunkIndex
		}
		oa := recordOffset(r, a)
		ob := recordOffset(r, b)
		return oa < ob
	})
	return r.WithRecords(recs)
}

func recordOffset(r Report, rec ErrorRecord) int {
	text := r.ChunkText(rec.Variant, rec.ChunkIndex)
	if text == "" {
		return 0
	}
	off := strings.Index(text, rec.Quoted)
	if off < 0 {
		// Raw model output may not anchor yet; sort fabricated quotes last
		// so the consistency filter sees a stable order.
		return len(text)
	}
	return off
}

// KindCounts holds counts of surviving records by kind.
type KindCounts struct {
	Typo        int `json:"typo"`
	Spacing     int `json:"spacing"`
	Punctuation int `json:"punctuation"`
	Other       int `json:"other"`
}

// Total returns the sum across kinds.
func (k KindCounts) Total() int {
	return k.Typo + k.Spacing + k.Punctuation + k.Other
}

// Summary is the compact overview of a filtered report.
type Summary struct {
	Counts KindCounts `json:"counts"`
	// Score is the 1..5 suspicion score: 1 = clean, 3+ when findings
	// survive, 5 when every chunk failed.
	Score        int `json:"score"`
	FailedChunks int `json:"failedChunks"`
}

// Summarize computes the summary for a filtered report.
func Summarize(r Report) Summary {
	var s Summary
	for _, rec := range r.Records {
		switch rec.Kind {
		case KindTypo:
			s.Counts.Typo++
		case KindSpacing:
			s.Counts.Spacing++
		case KindPunctuation:
			s.Counts.Punctuation++
		default:
			s.Counts.Other++
		}
	}
	s.FailedChunks = len(r.Failures)
	s.Score = suspicionScore(s.Counts.Total(), len(r.Failures), totalChunks(r))
	return s
}

func totalChunks(r Report) int {
	n := 0
	for _, chunks := range r.Sources {
		n += len(chunks)
	}
	return n
}

// suspicionScore maps finding and failure counts onto the 1..5 scale
// the batch queue stores: 1 clean, 3 findings present, 4 many findings,
// 5 nothing succeeded.
func suspicionScore(findings, failed, chunks int) int {
	if chunks > 0 && failed >= chunks {
		return 5
	}
	switch {
	case findings == 0 && failed == 0:
		return 1
	case findings == 0:
		return 2
	case findings > 5 || failed > 0:
		return 4
	default:
		return 3
	}
}
