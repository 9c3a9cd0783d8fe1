package proof

import (
	"encoding/json"
	"fmt"
	"strings"
)

const detectorSystemPrompt = `You are a machine-like Data Verifier. Your ONLY job is to find objective, factual errors in the passage you are given: typos, spacing mistakes, and punctuation mistakes. You are strictly forbidden from judging style, meaning, or making subjective suggestions. Your output MUST be a single valid JSON array.

What counts as an objective error:
1. Typos: clearly misspelled words (e.g. "recieve" -> "receive", "이점들을를" -> "이점들을") and duplicated words (e.g. "the the" -> "the"). In clearly AI-related context the token "Al" (capital A, lowercase L) is a typo for "AI".
2. Spacing: accidental extra or missing spaces, including Korean morpheme splits (e.g. "된 다" -> "된다", "책을읽고" -> "책을 읽고"). A spacing fix changes only whitespace.
3. Punctuation: missing or unbalanced required punctuation. Unpaired quotation marks are always an error.

Rules:
1. Report every candidate you can find. It is acceptable to over-detect; a second verifier narrows your list.
2. GROUND YOUR FINDINGS: "quoted" MUST be copied verbatim from the passage.
3. NO IDENTICAL CORRECTIONS: "fix" must differ from "quoted".
4. ABSOLUTELY NO STYLISTIC FEEDBACK: never suggest alternative wording or comment on what sounds more natural.
5. It is CORRECT for italicized English to appear as 'single quotes' or 《double angle brackets》 in Korean. Not an error.

Respond with ONLY a JSON array. No markdown, no preamble. Each element:
{
  "quoted": "exact text copied from the passage",
  "fix": "corrected text",
  "kind": "typo|spacing|punctuation|other",
  "explanation": "one short sentence"
}

If there are no errors, respond with an empty array: []`

const judgeSystemPrompt = `You are a strict verifier reviewing another verifier's candidate corrections for a passage. Keep ONLY candidates that are objective errors: typos, spacing mistakes, or punctuation mistakes that are verifiably present in the passage. Your output MUST be a single valid JSON array.

Discard a candidate when:
1. Its "quoted" text does not appear verbatim in the passage.
2. It is stylistic, speculative, or a rewording (never keep suggestions about what sounds more natural or more appropriate).
3. Its "fix" equals its "quoted" text.
4. It restates another candidate at the same position (keep one).

You may tighten a kept candidate's "quoted" span to the smallest text that still contains the error, and correct its "kind". Never invent new candidates.

Respond with ONLY a JSON array in the same element format as the input:
{"quoted": "...", "fix": "...", "kind": "typo|spacing|punctuation|other", "explanation": "..."}

If no candidates survive, respond with an empty array: []`

// DetectorSystemPrompt returns the recall-biased first-pass prompt.
func DetectorSystemPrompt() string { return detectorSystemPrompt }

// JudgeSystemPrompt returns the precision-biased second-pass prompt.
func JudgeSystemPrompt() string { return judgeSystemPrompt }

// BuildDetectorPrompt constructs the detector user prompt for a chunk.
func BuildDetectorPrompt(chunk Chunk, variant Variant) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Find objective errors in the following %s passage.\n", variantLabel(variant))
	b.WriteString("\n--- BEGIN PASSAGE ---\n")
	b.WriteString(chunk.Text)
	b.WriteString("\n--- END PASSAGE ---\n")
	return b.String()
}

// BuildJudgePrompt constructs the judge user prompt from the chunk and
// the detector's candidate records.
func BuildJudgePrompt(chunk Chunk, variant Variant, candidates []ErrorRecord) string {
	type wire struct {
		Quoted      string `json:"quoted"`
		Fix         string `json:"fix"`
		Kind        Kind   `json:"kind"`
		Explanation string `json:"explanation,omitempty"`
	}
	ws := make([]wire, 0, len(candidates))
	for _, c := range candidates {
		ws = append(ws, wire{c.Quoted, c.Fix, c.Kind, c.Explanation})
	}
	// Marshaling a slice of plain string fields cannot fail.
	data, _ := json.Marshal(ws)

	var b strings.Builder
	fmt.Fprintf(&b, "Verify candidate corrections for the following %s passage.\n", variantLabel(variant))
	b.WriteString("\n--- BEGIN PASSAGE ---\n")
	b.WriteString(chunk.Text)
	b.WriteString("\n--- END PASSAGE ---\n")
	b.WriteString("\n--- BEGIN CANDIDATES ---\n")
	b.Write(data)
	b.WriteString("\n--- END CANDIDATES ---\n")
	return b.String()
}

func variantLabel(v Variant) string {
	if v == VariantFormatted {
		return "markdown-formatted"
	}
	return "plain-text"
}
