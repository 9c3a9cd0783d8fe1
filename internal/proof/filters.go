package proof

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Policy holds the tunable thresholds for the heuristic filters.
type Policy struct {
	// AllowMixedScript treats legitimate script mixing (e.g. Latin
	// acronyms inside Korean prose) as correct and drops records that
	// flag it.
	AllowMixedScript bool
	// MaxFixRatio and FixSlackRunes bound the suggested fix length:
	// a fix longer than MaxFixRatio*len(quoted)+FixSlackRunes runes is
	// treated as a paraphrase and dropped.
	MaxFixRatio   int
	FixSlackRunes int
	// Language selects terminal-punctuation completion ("ko", "en",
	// or "auto").
	Language string
}

// DefaultPolicy returns the thresholds used when the config sets none.
func DefaultPolicy() Policy {
	return Policy{
		AllowMixedScript: true,
		MaxFixRatio:      3,
		FixSlackRunes:    12,
		Language:         "auto",
	}
}

// Filter is one step of the post-processing chain: a pure
// Report -> Report transform. Every filter except the terminal-
// punctuation completion returns a strict subset of its input records,
// in input order, without mutating any record.
type Filter struct {
	Name  string
	Apply func(Report) Report
}

// DefaultChain returns the ordered filter chain. Order matters: later
// filters assume earlier ones already ran.
func DefaultChain(p Policy) []Filter {
	if p.MaxFixRatio <= 0 {
		p.MaxFixRatio = 3
	}
	if p.FixSlackRunes <= 0 {
		p.FixSlackRunes = 12
	}
	return []Filter{
		consistencyFilter(),
		selfEqualFilter(),
		oversizedFilter(p),
		punctuationClaimFilter(),
		whitespaceClaimFilter(),
		artifactFilter(),
		languageMismatchFilter(p),
		subjectivePhraseFilter(),
		dedupFilter(),
		terminalPunctuationFilter(p),
	}
}

// ApplyFilters folds the chain over the report.
func ApplyFilters(r Report, chain []Filter) Report {
	for _, f := range chain {
		r = f.Apply(r)
	}
	return r
}

// keep builds a subset filter from a per-record predicate.
func keep(name string, pred func(Report, ErrorRecord) bool) Filter {
	return Filter{
		Name: name,
		Apply: func(r Report) Report {
			out := make([]ErrorRecord, 0, len(r.Records))
			for _, rec := range r.Records {
				if pred(r, rec) {
					out = append(out, rec)
				}
			}
			return r.WithRecords(out)
		},
	}
}

var spaceRun = regexp.MustCompile(`\s+`)

func collapseSpaces(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// Anchored reports whether quoted is a verbatim substring of text,
// retrying after NFC normalization and whitespace collapsing so that
// only genuinely fabricated quotes fail.
func Anchored(text, quoted string) bool {
	if quoted == "" {
		return false
	}
	if strings.Contains(text, quoted) {
		return true
	}
	nt, nq := norm.NFC.String(text), norm.NFC.String(quoted)
	if strings.Contains(nt, nq) {
		return true
	}
	return strings.Contains(collapseSpaces(nt), collapseSpaces(nq))
}

// consistencyFilter drops records whose quoted text is not found in
// their source chunk.
func consistencyFilter() Filter {
	return keep("consistency", func(r Report, rec ErrorRecord) bool {
		return Anchored(r.ChunkText(rec.Variant, rec.ChunkIndex), rec.Quoted)
	})
}

// selfEqualFilter drops no-op corrections.
func selfEqualFilter() Filter {
	return keep("self-equal", func(_ Report, rec ErrorRecord) bool {
		return rec.Quoted != rec.Fix
	})
}

// oversizedFilter drops fixes disproportionately larger than the
// quoted span. Objective corrections stay close to the original size;
// a large growth is a paraphrase that slipped past the judge.
func oversizedFilter(p Policy) Filter {
	return keep("oversized-edit", func(_ Report, rec ErrorRecord) bool {
		q := utf8.RuneCountInString(rec.Quoted)
		f := utf8.RuneCountInString(rec.Fix)
		return f <= p.MaxFixRatio*q+p.FixSlackRunes
	})
}

func isPunct(r rune) bool {
	return unicode.IsPunct(r) || isTerminalPunct(r)
}

func stripPunct(s string) string {
	var b strings.Builder
	for _, r := range s {
		if !isPunct(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func punctOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if isPunct(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// punctuationClaimFilter keeps punctuation-kind records only when the
// quoted text and fix differ in punctuation and nowhere else.
func punctuationClaimFilter() Filter {
	return keep("false-punctuation-claim", func(_ Report, rec ErrorRecord) bool {
		if rec.Kind != KindPunctuation {
			return true
		}
		sameContent := collapseSpaces(stripPunct(rec.Quoted)) == collapseSpaces(stripPunct(rec.Fix))
		punctChanged := punctOnly(rec.Quoted) != punctOnly(rec.Fix)
		return sameContent && punctChanged
	})
}

func stripSpaces(s string) string {
	var b strings.Builder
	for _, r := range width.Narrow.String(s) {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// whitespaceClaimFilter keeps spacing-kind records only when quoted
// and fix are identical once all whitespace (full-width included) is
// removed: a real spacing error changes nothing else.
func whitespaceClaimFilter() Filter {
	return keep("false-whitespace-claim", func(_ Report, rec ErrorRecord) bool {
		if rec.Kind != KindSpacing {
			return true
		}
		return stripSpaces(rec.Quoted) == stripSpaces(rec.Fix)
	})
}

// Escape/encoding debris the model sometimes quotes as if it were
// content.
var artifactPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[\s\\]*$`),
	regexp.MustCompile(`\\[ntr]`),
	regexp.MustCompile(`\\u[0-9a-fA-F]{4}`),
	regexp.MustCompile(`&[a-z]+;`),
	regexp.MustCompile(`^\\+["'*_]`),
}

func artifactFilter() Filter {
	return keep("escape-artifact", func(_ Report, rec ErrorRecord) bool {
		for _, pat := range artifactPatterns {
			if pat.MatchString(rec.Quoted) {
				return false
			}
		}
		return true
	})
}

func dominantScript(s string) string {
	var hangul, latin, han int
	for _, r := range s {
		switch {
		case unicode.Is(unicode.Hangul, r):
			hangul++
		case unicode.Is(unicode.Latin, r):
			latin++
		case unicode.Is(unicode.Han, r):
			han++
		}
	}
	switch {
	case hangul >= latin && hangul >= han && hangul > 0:
		return "hangul"
	case latin >= han && latin > 0:
		return "latin"
	case han > 0:
		return "han"
	}
	return ""
}

// languageMismatchFilter drops records that rewrite a span from one
// script into another. When mixing is legitimate (Latin acronyms in
// Korean prose), such a record is a translation, not a correction.
func languageMismatchFilter(p Policy) Filter {
	return keep("language-mismatch", func(_ Report, rec ErrorRecord) bool {
		if !p.AllowMixedScript {
			return true
		}
		qs, fs := dominantScript(rec.Quoted), dominantScript(rec.Fix)
		if qs == "" || fs == "" {
			return true
		}
		return qs == fs
	})
}

// Phrases that mark a stylistic suggestion rather than an objective
// error, and no-error boilerplate the model is told never to emit.
var (
	subjectiveKeywords = []string{
		"문맥상", "부적절", "어색", "더 자연스럽", "더 적절",
		"수정하는 것이 좋", "제안", "바꾸는 것", "의미를 명확히",
		"more natural", "more appropriate", "sounds better", "consider rewording",
	}
	noErrorPhrases = []string{
		"오류 없음", "정상", "문제 없음", "수정할 필요 없음",
		"no issues", "no errors",
	}
)

func subjectivePhraseFilter() Filter {
	return keep("subjective-phrase", func(_ Report, rec ErrorRecord) bool {
		for _, kw := range subjectiveKeywords {
			if strings.Contains(rec.Explanation, kw) {
				return false
			}
		}
		for _, ph := range noErrorPhrases {
			if strings.Contains(rec.Explanation, ph) || strings.Contains(rec.Quoted, ph) {
				return false
			}
		}
		return true
	})
}

// dedupFilter collapses records restating the same correction at the
// same position, keeping the first.
func dedupFilter() Filter {
	type dedupKey struct {
		variant Variant
		chunk   int
		quoted  string
		fix     string
	}
	return Filter{
		Name: "duplicate-collapse",
		Apply: func(r Report) Report {
			seen := make(map[dedupKey]bool, len(r.Records))
			out := make([]ErrorRecord, 0, len(r.Records))
			for _, rec := range r.Records {
				k := dedupKey{rec.Variant, rec.ChunkIndex, rec.Quoted, rec.Fix}
				if seen[k] {
					continue
				}
				seen[k] = true
				out = append(out, rec)
			}
			return r.WithRecords(out)
		},
	}
}

// terminalPunctuationFilter is the one additive step: if a variant's
// text ends in a letter with no closing punctuation and no surviving
// record already flags the final chunk's punctuation, it synthesizes
// one canonical record. Running it again never adds a second.
func terminalPunctuationFilter(p Policy) Filter {
	return Filter{
		Name: "terminal-punctuation",
		Apply: func(r Report) Report {
			if p.Language != "" && p.Language != "auto" && p.Language != "ko" && p.Language != "en" {
				return r
			}
			out := append([]ErrorRecord(nil), r.Records...)
			for _, v := range []Variant{VariantPlain, VariantFormatted} {
				chunks := r.Sources[v]
				if len(chunks) == 0 {
					continue
				}
				last := chunks[len(chunks)-1]
				if rec, ok := synthesizeTerminal(last, v, out); ok {
					out = append(out, rec)
				}
			}
			return r.WithRecords(out)
		},
	}
}

func synthesizeTerminal(last Chunk, v Variant, existing []ErrorRecord) (ErrorRecord, bool) {
	text := strings.TrimRightFunc(last.Text, unicode.IsSpace)
	if text == "" {
		return ErrorRecord{}, false
	}
	final, _ := utf8.DecodeLastRuneInString(text)
	if !unicode.IsLetter(final) {
		return ErrorRecord{}, false
	}
	if !unicode.Is(unicode.Hangul, final) && !unicode.Is(unicode.Latin, final) {
		return ErrorRecord{}, false
	}
	for _, rec := range existing {
		if rec.Variant == v && rec.ChunkIndex == last.Index && rec.Kind == KindPunctuation {
			return ErrorRecord{}, false
		}
	}

	cut := strings.LastIndexFunc(text, unicode.IsSpace)
	lastWord := text
	if cut >= 0 {
		_, size := utf8.DecodeRuneInString(text[cut:])
		lastWord = text[cut+size:]
	}
	if lastWord == "" {
		return ErrorRecord{}, false
	}
	return ErrorRecord{
		Quoted:      lastWord,
		Fix:         lastWord + ".",
		Kind:        KindPunctuation,
		Explanation: "sentence is missing terminal punctuation",
		Pass:        PassJudge,
		Variant:     v,
		ChunkIndex:  last.Index,
	}, true
}

// Validate re-checks the report invariants after the chain has run. A
// failure here is a programming bug, not bad input.
func Validate(r Report) error {
	for _, rec := range r.Records {
		if rec.Quoted == rec.Fix {
			return &FilterInvariantViolation{Filter: "self-equal", Detail: "surviving record has quoted == fix"}
		}
		if !Anchored(r.ChunkText(rec.Variant, rec.ChunkIndex), rec.Quoted) {
			return &FilterInvariantViolation{
				Filter: "consistency",
				Detail: "surviving record quotes text absent from its chunk",
			}
		}
	}
	return nil
}
