package proof

import (
	"strings"
	"testing"
)

func TestSpans_RepeatedQuotes(t *testing.T) {
	r := plainReport("teh cat and teh dog.",
		rec("teh", "the", KindTypo),
		rec("teh", "the", KindTypo),
	)
	spans := Spans(r, VariantPlain)
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	if spans[0].Start != 0 || spans[0].End != 3 {
		t.Errorf("spans[0] = [%d,%d), want [0,3)", spans[0].Start, spans[0].End)
	}
	if spans[1].Start != 12 || spans[1].End != 15 {
		t.Errorf("spans[1] = [%d,%d), want [12,15)", spans[1].Start, spans[1].End)
	}
	if spans[0].End > spans[1].Start {
		t.Error("spans overlap")
	}
}

func TestSpans_GlobalOffsets(t *testing.T) {
	r := Report{
		Sources: map[Variant][]Chunk{
			VariantPlain: {
				{Index: 0, Start: 0, Text: "first chunk. "},
				{Index: 1, Start: 13, Text: "second chunk."},
			},
		},
		Records: []ErrorRecord{
			{Quoted: "second", Fix: "Second", Kind: KindTypo, Variant: VariantPlain, ChunkIndex: 1},
		},
	}
	spans := Spans(r, VariantPlain)
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Start != 13 {
		t.Errorf("Start = %d, want chunk base 13", spans[0].Start)
	}
}

func TestSpans_SkipsUnlocatable(t *testing.T) {
	r := plainReport("alpha beta",
		rec("missing entirely", "x", KindTypo),
		rec("beta", "Beta", KindTypo),
	)
	spans := Spans(r, VariantPlain)
	if len(spans) != 1 || spans[0].Record.Quoted != "beta" {
		t.Errorf("spans = %+v, want only the locatable record", spans)
	}
}

func TestSplitByVariant(t *testing.T) {
	r := Report{
		Sources: map[Variant][]Chunk{
			VariantPlain:     {{Index: 0, Text: "plain"}},
			VariantFormatted: {{Index: 0, Text: "# formatted"}},
		},
		Records: []ErrorRecord{
			{Quoted: "a", Fix: "b", Variant: VariantPlain},
			{Quoted: "c", Fix: "d", Variant: VariantFormatted},
			{Quoted: "e", Fix: "f", Variant: VariantPlain},
		},
		Failures: []ChunkFailure{
			{Variant: VariantFormatted, ChunkIndex: 0},
		},
	}
	plain, formatted := SplitByVariant(r)
	if len(plain.Records) != 2 || len(formatted.Records) != 1 {
		t.Errorf("records split = %d/%d, want 2/1", len(plain.Records), len(formatted.Records))
	}
	if len(plain.Failures) != 0 || len(formatted.Failures) != 1 {
		t.Errorf("failures split = %d/%d, want 0/1", len(plain.Failures), len(formatted.Failures))
	}
	if plain.ChunkText(VariantPlain, 0) != "plain" {
		t.Error("plain report lost its source chunks")
	}
	if formatted.ChunkText(VariantFormatted, 0) != "# formatted" {
		t.Error("formatted report lost its source chunks")
	}
}

func TestSourceText(t *testing.T) {
	text := strings.Repeat("Sentence number one here. ", 100)
	chunks, err := Split(text, 500)
	if err != nil {
		t.Fatalf("Split error: %v", err)
	}
	r := Report{Sources: map[Variant][]Chunk{VariantPlain: chunks}}
	if got := SourceText(r, VariantPlain); got != text {
		t.Error("SourceText does not reproduce the input")
	}
}

func TestRenderBullets(t *testing.T) {
	got := RenderBullets([]ErrorRecord{
		{Quoted: "teh", Fix: "the", Kind: KindTypo, Explanation: "misspelling"},
		{Quoted: "된 다", Fix: "된다", Kind: KindSpacing},
	})
	if !strings.Contains(got, `- "teh" → "the" (typo): misspelling`) {
		t.Errorf("missing first bullet:\n%s", got)
	}
	if !strings.Contains(got, "(spacing)") {
		t.Errorf("missing second bullet:\n%s", got)
	}
	if strings.HasSuffix(got, "\n") {
		t.Error("trailing newline not trimmed")
	}

	if RenderBullets(nil) != "" {
		t.Error("empty records should render empty")
	}
}
