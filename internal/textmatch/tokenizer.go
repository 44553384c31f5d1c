// Package textmatch holds the pure scoring primitives shared by the
// similarity engine and the search ranker: tokenization, term-frequency
// cosine similarity, and weighted field matching.
package textmatch

import (
	"strings"
	"unicode"
)

// Small fixed stop-word set. Deliberately tiny so indexing stays cheap and
// deterministic without a language-model dependency.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "a": {}, "an": {}, "of": {}, "in": {}, "on": {},
	"for": {}, "to": {}, "with": {}, "is": {}, "are": {}, "from": {},
}

// MaxTokens caps the token list stored per index entry.
const MaxTokens = 50

// Tokenize normalizes free text into lowercase alphanumeric tokens of
// length >= 2, stop-words removed, deduplicated preserving first-occurrence
// order, capped at MaxTokens. Empty input yields an empty slice.
func Tokenize(text string) []string {
	words := terms(text)
	if len(words) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
		if len(out) == MaxTokens {
			break
		}
	}
	return out
}

// terms splits text into normalized tokens without deduplication or
// truncation. Used for term-frequency vectorization, where repeated terms
// must keep their counts.
func terms(text string) []string {
	if text == "" {
		return nil
	}

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	kept := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) < 2 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		kept = append(kept, w)
	}
	return kept
}
