package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/redpenlabs/redpen/internal/proof"
)

// TextWriter outputs a human-readable proofreading report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, result *proof.Result) error {
	ew := &errWriter{w: w}

	total := result.Summary.Counts.Total()
	ew.printf("Redpen Proofreading Report — run %s\n", result.RunID)
	ew.println(strings.Repeat("─", 60))
	ew.printf("Findings: %d total", total)
	if total > 0 {
		ew.printf(" (%d typo, %d spacing, %d punctuation, %d other)",
			result.Summary.Counts.Typo,
			result.Summary.Counts.Spacing,
			result.Summary.Counts.Punctuation,
			result.Summary.Counts.Other,
		)
	}
	ew.println("")
	ew.printf("Suspicion score: %d/5\n", result.Summary.Score)
	if result.Failed {
		ew.println("Status: FAILED — no chunk completed")
	} else if result.Partial {
		ew.printf("Status: partial — %d chunk(s) failed\n", result.Summary.FailedChunks)
	}
	ew.println(strings.Repeat("─", 60))

	if total == 0 && !result.Partial && !result.Failed {
		ew.println("\nNo issues found. Looks good!")
		ew.printf("\nCompleted in %dms (LLM: %dms)\n",
			result.Timing.TotalMs, result.Timing.LLMMs)
		return ew.err
	}

	for _, sec := range []struct {
		label   string
		variant proof.Variant
		report  proof.Report
	}{
		{"PLAIN TEXT", proof.VariantPlain, result.Plain},
		{"FORMATTED TEXT", proof.VariantFormatted, result.Formatted},
	} {
		if len(sec.report.Sources[sec.variant]) == 0 {
			continue
		}
		if len(sec.report.Records) == 0 && len(sec.report.Failures) == 0 {
			continue
		}

		ew.printf("\n%s\n", sec.label)
		ew.println(strings.Repeat("─", 40))
		writeVariant(ew, sec.report, sec.variant)
	}

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	ew.printf("Completed in %dms (LLM: %dms)\n",
		result.Timing.TotalMs, result.Timing.LLMMs)

	return ew.err
}

// writeVariant prints each record with its line:column position when
// the quoted text can be located literally, and without one otherwise.
func writeVariant(ew *errWriter, report proof.Report, v proof.Variant) {
	source := proof.SourceText(report, v)
	spans := proof.Spans(report, v)

	si := 0
	for _, rec := range report.Records {
		if si < len(spans) && spans[si].Record == rec {
			line, col := lineCol(source, spans[si].Start)
			ew.printf("\n  %d:%d  %q → %q  [%s]\n", line, col, rec.Quoted, rec.Fix, rec.Kind)
			si++
		} else {
			ew.printf("\n  %q → %q  [%s]\n", rec.Quoted, rec.Fix, rec.Kind)
		}
		if rec.Explanation != "" {
			for _, l := range wrapText(rec.Explanation, 70) {
				ew.printf("    %s\n", l)
			}
		}
	}

	for _, f := range report.Failures {
		ew.printf("\n  ✗ chunk %d failed during %s pass: %s\n", f.ChunkIndex, f.Pass, f.Message)
	}
}

func lineCol(text string, offset int) (line, col int) {
	if offset > len(text) {
		offset = len(text)
	}
	line = 1 + strings.Count(text[:offset], "\n")
	if nl := strings.LastIndexByte(text[:offset], '\n'); nl >= 0 {
		col = offset - nl
	} else {
		col = offset + 1
	}
	return line, col
}

// wrapText wraps text at word boundaries to the given width.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	var current strings.Builder
	for _, word := range words {
		if current.Len() > 0 && current.Len()+1+len(word) > width {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
