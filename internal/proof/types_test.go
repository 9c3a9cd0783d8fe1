package proof

import (
	"testing"
)

func TestNormalizeKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"typo", KindTypo},
		{"Typo", KindTypo},
		{" SPACING ", KindSpacing},
		{"punctuation", KindPunctuation},
		{"other", KindOther},
		{"grammar", KindOther},
		{"", KindOther},
	}
	for _, tt := range tests {
		if got := NormalizeKind(tt.in); got != tt.want {
			t.Errorf("NormalizeKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSortRecords(t *testing.T) {
	r := Report{
		Sources: map[Variant][]Chunk{
			VariantPlain: {
				{Index: 0, Start: 0, Text: "alpha beta gamma. "},
				{Index: 1, Start: 18, Text: "delta epsilon."},
			},
			VariantFormatted: {
				{Index: 0, Start: 0, Text: "# alpha beta"},
			},
		},
		Records: []ErrorRecord{
			{Quoted: "alpha", Fix: "Alpha", Kind: KindTypo, Variant: VariantFormatted, ChunkIndex: 0},
			{Quoted: "delta", Fix: "Delta", Kind: KindTypo, Variant: VariantPlain, ChunkIndex: 1},
			{Quoted: "gamma", Fix: "Gamma", Kind: KindTypo, Variant: VariantPlain, ChunkIndex: 0},
			{Quoted: "alpha", Fix: "Alpha", Kind: KindTypo, Variant: VariantPlain, ChunkIndex: 0},
		},
	}
	out := SortRecords(r)

	wantOrder := []struct {
		variant Variant
		quoted  string
	}{
		{VariantPlain, "alpha"},
		{VariantPlain, "gamma"},
		{VariantPlain, "delta"},
		{VariantFormatted, "alpha"},
	}
	for i, w := range wantOrder {
		got := out.Records[i]
		if got.Variant != w.variant || got.Quoted != w.quoted {
			t.Errorf("Records[%d] = (%s, %q), want (%s, %q)", i, got.Variant, got.Quoted, w.variant, w.quoted)
		}
	}
}

func TestSortRecords_UnanchoredLast(t *testing.T) {
	r := plainReport("alpha beta",
		rec("missing", "present", KindTypo),
		rec("alpha", "Alpha", KindTypo),
	)
	out := SortRecords(r)
	if out.Records[0].Quoted != "alpha" || out.Records[1].Quoted != "missing" {
		t.Errorf("Records = %+v, want unanchored record sorted last", out.Records)
	}
}

func chunksOf(n int) []Chunk {
	cs := make([]Chunk, n)
	for i := range cs {
		cs[i] = Chunk{Index: i, Text: "x"}
	}
	return cs
}

func TestSummarize(t *testing.T) {
	mkRecs := func(n int) []ErrorRecord {
		recs := make([]ErrorRecord, n)
		for i := range recs {
			recs[i] = rec("a", "b", KindTypo)
		}
		return recs
	}
	mkFails := func(n int) []ChunkFailure {
		fs := make([]ChunkFailure, n)
		for i := range fs {
			fs[i] = ChunkFailure{Variant: VariantPlain, ChunkIndex: i, Pass: PassDetector}
		}
		return fs
	}

	tests := []struct {
		name      string
		records   []ErrorRecord
		failures  []ChunkFailure
		chunks    int
		wantScore int
	}{
		{"clean", nil, nil, 2, 1},
		{"failures only", nil, mkFails(1), 2, 2},
		{"few findings", mkRecs(3), nil, 2, 3},
		{"many findings", mkRecs(6), nil, 2, 4},
		{"findings with failure", mkRecs(1), mkFails(1), 2, 4},
		{"all failed", nil, mkFails(2), 2, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Report{
				Records:  tt.records,
				Failures: tt.failures,
				Sources:  map[Variant][]Chunk{VariantPlain: chunksOf(tt.chunks)},
			}
			s := Summarize(r)
			if s.Score != tt.wantScore {
				t.Errorf("Score = %d, want %d", s.Score, tt.wantScore)
			}
			if s.FailedChunks != len(tt.failures) {
				t.Errorf("FailedChunks = %d, want %d", s.FailedChunks, len(tt.failures))
			}
			if s.Counts.Total() != len(tt.records) {
				t.Errorf("Counts.Total() = %d, want %d", s.Counts.Total(), len(tt.records))
			}
		})
	}
}

func TestSummarize_CountsByKind(t *testing.T) {
	r := plainReport("x",
		rec("a", "b", KindTypo),
		rec("c", "d", KindTypo),
		rec("e", "f", KindSpacing),
		rec("g", "h", KindPunctuation),
		rec("i", "j", KindOther),
	)
	s := Summarize(r)
	if s.Counts.Typo != 2 || s.Counts.Spacing != 1 || s.Counts.Punctuation != 1 || s.Counts.Other != 1 {
		t.Errorf("Counts = %+v", s.Counts)
	}
}
