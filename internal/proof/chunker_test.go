package proof

import (
	"strings"
	"testing"
)

func TestSplit_SingleChunk(t *testing.T) {
	text := "Hello world."
	chunks, err := Split(text, 100)
	if err != nil {
		t.Fatalf("Split error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Text != text || chunks[0].Start != 0 || chunks[0].Index != 0 {
		t.Errorf("chunk = %+v, want full text at offset 0", chunks[0])
	}
}

func TestSplit_RoundTrip(t *testing.T) {
	text := strings.Repeat("All work and no play makes Jack a dull boy. ", 200)
	chunks, err := Split(text, 1000)
	if err != nil {
		t.Fatalf("Split error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want several", len(chunks))
	}

	var rebuilt strings.Builder
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has Index %d", i, c.Index)
		}
		if c.Start != rebuilt.Len() {
			t.Errorf("chunk %d Start = %d, want %d", i, c.Start, rebuilt.Len())
		}
		if len(c.Text) > 1000 {
			t.Errorf("chunk %d is %d bytes, over the limit", i, len(c.Text))
		}
		rebuilt.WriteString(c.Text)
	}
	if rebuilt.String() != text {
		t.Error("concatenated chunks do not reproduce the input")
	}
}

func TestSplit_PrefersSentenceBoundary(t *testing.T) {
	text := strings.Repeat("One two three. ", 40) // 15 bytes per sentence
	chunks, err := Split(text, 100)
	if err != nil {
		t.Fatalf("Split error: %v", err)
	}
	for i, c := range chunks[:len(chunks)-1] {
		if !strings.HasSuffix(c.Text, ". ") {
			t.Errorf("chunk %d ends %q, want a sentence boundary", i, c.Text[len(c.Text)-4:])
		}
	}
}

func TestSplit_NoSafeBoundary(t *testing.T) {
	_, err := Split(strings.Repeat("a", 500), 100)
	if err == nil {
		t.Fatal("expected error for unbreakable input")
	}
	if !IsChunkingError(err) {
		t.Errorf("error = %v, want *ChunkingError", err)
	}
}

func TestSplit_InvalidUTF8(t *testing.T) {
	_, err := Split("aaaaaa\xffbbbbbb", 8)
	if !IsChunkingError(err) {
		t.Errorf("error = %v, want *ChunkingError", err)
	}
}

func TestSplit_QuotedSpacesAreNotBoundaries(t *testing.T) {
	// The only whitespace inside the tolerance window sits inside a
	// quotation, so there is no safe boundary.
	text := strings.Repeat("a", 20) + " “" + "bb bb bb bb bb bb bb bb bb bb" + "” " + strings.Repeat("c", 40)
	_, err := Split(text, 50)
	if !IsChunkingError(err) {
		t.Errorf("error = %v, want *ChunkingError for a cut inside quotes", err)
	}
}

func TestSplit_DefaultLimit(t *testing.T) {
	chunks, err := Split("short text.", 0)
	if err != nil {
		t.Fatalf("Split error: %v", err)
	}
	if len(chunks) != 1 {
		t.Errorf("got %d chunks, want 1", len(chunks))
	}
}
