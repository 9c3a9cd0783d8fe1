package proof

import (
	"fmt"
	"strings"
)

// SplitByVariant separates a filtered report into two disjoint,
// ordered sub-reports. Both are final artifacts: callers receive them
// read-only and the pipeline never touches them again.
func SplitByVariant(r Report) (plain, formatted Report) {
	plain = Report{Sources: map[Variant][]Chunk{VariantPlain: r.Sources[VariantPlain]}}
	formatted = Report{Sources: map[Variant][]Chunk{VariantFormatted: r.Sources[VariantFormatted]}}
	for _, rec := range r.Records {
		if rec.Variant == VariantFormatted {
			formatted.Records = append(formatted.Records, rec)
		} else {
			plain.Records = append(plain.Records, rec)
		}
	}
	for _, f := range r.Failures {
		if f.Variant == VariantFormatted {
			formatted.Failures = append(formatted.Failures, f)
		} else {
			plain.Failures = append(plain.Failures, f)
		}
	}
	return plain, formatted
}

// Span is a marker over the original text for one record.
type Span struct {
	Start  int         `json:"start"`
	End    int         `json:"end"`
	Record ErrorRecord `json:"record"`
}

// Spans locates each record's quoted text in chunk text by literal
// search, starting after the previous record's end offset. Spans never
// overlap and never backtrack, which keeps repeated identical
// corrections anchored to distinct occurrences. Offsets are global:
// chunk-local positions shifted by the chunk's base offset.
func Spans(r Report, v Variant) []Span {
	var spans []Span
	searchFrom := map[int]int{} // chunk index -> next chunk-local offset
	for _, rec := range r.Records {
		if rec.Variant != v {
			continue
		}
		text := r.ChunkText(v, rec.ChunkIndex)
		from := searchFrom[rec.ChunkIndex]
		if from > len(text) {
			continue
		}
		off := strings.Index(text[from:], rec.Quoted)
		if off < 0 {
			// Anchored only modulo whitespace; skip the marker rather
			// than guess a position.
			continue
		}
		start := from + off
		end := start + len(rec.Quoted)
		searchFrom[rec.ChunkIndex] = end

		base := chunkStart(r, v, rec.ChunkIndex)
		spans = append(spans, Span{Start: base + start, End: base + end, Record: rec})
	}
	return spans
}

func chunkStart(r Report, v Variant, idx int) int {
	for _, c := range r.Sources[v] {
		if c.Index == idx {
			return c.Start
		}
	}
	return 0
}

// SourceText reconstructs the full source for a variant. Chunking is
// lossless, so this is exactly the original input.
func SourceText(r Report, v Variant) string {
	var b strings.Builder
	for _, c := range r.Sources[v] {
		b.WriteString(c.Text)
	}
	return b.String()
}

// RenderBullets renders records as the bullet list stored in the batch
// queue's report columns.
func RenderBullets(records []ErrorRecord) string {
	if len(records) == 0 {
		return ""
	}
	var b strings.Builder
	for _, rec := range records {
		fmt.Fprintf(&b, "- %q → %q (%s)", rec.Quoted, rec.Fix, rec.Kind)
		if rec.Explanation != "" {
			fmt.Fprintf(&b, ": %s", rec.Explanation)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
