// Redpen is a CLI for proofreading text with LLM providers.
//
// It runs a two-pass pipeline (a recall-oriented detector followed by a
// precision-oriented judge) over safe-boundary chunks, filters the
// surviving records with deterministic heuristics, and reports only
// objective errors: typos, spacing, and punctuation. It can also drain
// a Google Sheets batch queue, writing scores and reports back to each
// requested row.
//
// Usage:
//
//	redpen check article.txt          # proofread a file
//	redpen check < draft.txt          # proofread stdin
//	redpen check a.txt --formatted a.md   # review both representations
//	redpen batch --spreadsheet-id ID --worksheet Sheet1
//
// See https://github.com/redpenlabs/redpen for full documentation.
package main
