package proof

import (
	"unicode"
	"unicode/utf8"
)

// DefaultMaxChunkBytes is the block size bound used when the config
// does not set one.
const DefaultMaxChunkBytes = 6000

// Quotation pairs the chunker refuses to split inside. Straight double
// quotes toggle open/closed; the rest open and close explicitly.
var quoteOpens = map[rune]rune{
	'“': '”',
	'《': '》',
	'「': '」',
}

func isTerminalPunct(r rune) bool {
	switch r {
	case '.', '!', '?', '…', '。', '！', '？':
		return true
	}
	return false
}

// Split cuts text into bounded chunks along whitespace and sentence
// boundaries. Concatenating the chunk texts in order reproduces the
// input exactly. Inputs at or below maxBytes yield one chunk. If no
// safe boundary exists within tolerance of the limit, Split fails
// with a *ChunkingError rather than cutting mid-token.
func Split(text string, maxBytes int) ([]Chunk, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxChunkBytes
	}
	tolerance := maxBytes / 4
	if tolerance == 0 {
		tolerance = maxBytes
	}

	var chunks []Chunk
	pos := 0
	idx := 0
	for len(text)-pos > maxBytes {
		cut, err := safeCut(text, pos, maxBytes, tolerance)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, Chunk{Index: idx, Start: pos, Text: text[pos:cut]})
		idx++
		pos = cut
	}
	chunks = append(chunks, Chunk{Index: idx, Start: pos, Text: text[pos:]})
	return chunks, nil
}

// safeCut returns the byte offset to split at: the boundary nearest to
// pos+maxBytes that is at a whitespace rune, outside any open
// quotation, preferring sentence ends. Boundaries are rune-aligned by
// construction.
func safeCut(text string, pos, maxBytes, tolerance int) (int, error) {
	limit := pos + maxBytes
	floor := limit - tolerance

	depth := 0
	var closer rune
	inDouble := false

	sentenceCut := -1
	spaceCut := -1

	prev := rune(0)
	for i := pos; i < limit; {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == utf8.RuneError && size == 1 {
			return 0, &ChunkingError{Offset: i, Reason: "invalid UTF-8"}
		}
		if i+size > limit {
			break
		}

		switch {
		case r == '"':
			inDouble = !inDouble
		case depth == 0:
			if c, ok := quoteOpens[r]; ok {
				depth = 1
				closer = c
			}
		case r == closer:
			depth = 0
		}

		if unicode.IsSpace(r) && depth == 0 && !inDouble {
			after := i + size
			spaceCut = after
			if isTerminalPunct(prev) || r == '\n' {
				sentenceCut = after
			}
		}

		prev = r
		i += size
	}

	if sentenceCut >= floor {
		return sentenceCut, nil
	}
	if spaceCut >= floor {
		return spaceCut, nil
	}
	return 0, &ChunkingError{
		Offset: limit,
		Reason: "no safe boundary within tolerance",
	}
}
