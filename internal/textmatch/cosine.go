package textmatch

import (
	"math"
)

// Hybrid score blending used by both the related-quests engine and the
// search ranker: 60% structured field agreement, 40% text similarity.
const (
	HybridFieldWeight = 0.60
	HybridTextWeight  = 0.40
)

// TextSimilarity computes the cosine similarity of the term-frequency
// vectors of two free-text strings. The result is symmetric and in [0,1].
//
// Degenerate inputs resolve to fixed scores rather than errors: two strings
// that tokenize to nothing are treated as identical (1.0), while exactly
// one empty side scores 0.0. Punctuation-only text that defeats
// vectorization also scores 0.0.
func TextSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}

	termsA := terms(a)
	termsB := terms(b)

	if len(termsA) == 0 && len(termsB) == 0 {
		return 1.0
	}
	if len(termsA) == 0 || len(termsB) == 0 {
		return 0.0
	}

	freqA := termFrequencies(termsA)
	freqB := termFrequencies(termsB)

	// Vocabulary induced by the two documents only.
	vocab := make(map[string]struct{}, len(freqA)+len(freqB))
	for t := range freqA {
		vocab[t] = struct{}{}
	}
	for t := range freqB {
		vocab[t] = struct{}{}
	}
	if len(vocab) == 0 {
		return 0.0
	}

	var dot, normA, normB float64
	for t := range vocab {
		fa := float64(freqA[t])
		fb := float64(freqB[t])
		dot += fa * fb
		normA += fa * fa
		normB += fb * fb
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))

	// Guard against float drift pushing the score out of range.
	if sim > 1.0 {
		return 1.0
	}
	if sim < 0.0 {
		return 0.0
	}
	return sim
}

func termFrequencies(tokens []string) map[string]int {
	freq := make(map[string]int, len(tokens))
	for _, t := range tokens {
		freq[t]++
	}
	return freq
}
