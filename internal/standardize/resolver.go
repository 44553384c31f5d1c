// Package standardize resolves free-text game system names against the
// canonical reference set and applies the resulting standardization policy
// to quest cards.
package standardize

import (
	"sort"
	"strings"
	"unicode"

	"github.com/parchmentlabs/questmatch/internal/models"
)

// Confidence values per match type, from strongest to weakest.
const (
	confidenceExact           = 1.0
	confidenceCaseInsensitive = 0.99
	confidenceAlias           = 0.98
	confidenceAcronym         = 0.90
	confidenceSubstring       = 0.85
)

// Resolve maps a free-text system name onto a canonical system record from
// the given snapshot, or returns nil when nothing matches. Evaluation
// order: exact name, case-insensitive name, alias, then the best of
// acronym/substring across the whole snapshot. Empty input never matches.
//
// Equal-confidence acronym/substring candidates are broken lexicographically
// by system id. The snapshot is sorted up front so resolution does not
// depend on the caller's iteration order.
func Resolve(name string, systems []models.GameSystem) *models.MatchResult {
	normalized := normalizeName(name)
	if normalized == "" {
		return nil
	}

	ordered := make([]models.GameSystem, len(systems))
	copy(ordered, systems)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	for _, sys := range ordered {
		if sys.StandardName == name {
			return &models.MatchResult{
				SystemID:     sys.ID,
				StandardName: sys.StandardName,
				MatchType:    models.MatchTypeExact,
				Confidence:   confidenceExact,
			}
		}
	}

	for _, sys := range ordered {
		if normalizeName(sys.StandardName) == normalized {
			return &models.MatchResult{
				SystemID:     sys.ID,
				StandardName: sys.StandardName,
				MatchType:    models.MatchTypeCaseInsensitive,
				Confidence:   confidenceCaseInsensitive,
			}
		}
	}

	for _, sys := range ordered {
		for _, alias := range sys.Aliases {
			if normalizeName(alias) == normalized {
				return &models.MatchResult{
					SystemID:     sys.ID,
					StandardName: sys.StandardName,
					MatchType:    models.MatchTypeAlias,
					Confidence:   confidenceAlias,
				}
			}
		}
	}

	// Weak matches: keep the single best candidate across the snapshot.
	var best *models.MatchResult
	for _, sys := range ordered {
		normalizedStandard := normalizeName(sys.StandardName)
		if normalizedStandard == "" {
			continue
		}

		if acronymOf(normalizedStandard) == normalized {
			best = better(best, &models.MatchResult{
				SystemID:     sys.ID,
				StandardName: sys.StandardName,
				MatchType:    models.MatchTypeAcronym,
				Confidence:   confidenceAcronym,
			})
			continue
		}

		if strings.Contains(normalizedStandard, normalized) ||
			strings.Contains(normalized, normalizedStandard) {
			best = better(best, &models.MatchResult{
				SystemID:     sys.ID,
				StandardName: sys.StandardName,
				MatchType:    models.MatchTypeSubstring,
				Confidence:   confidenceSubstring,
			})
		}
	}

	return best
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// acronymOf builds an acronym from a normalized name by splitting on
// whitespace and '&' and joining each word's first rune, so "dungeons &
// dragons" yields "dd".
func acronymOf(normalized string) string {
	words := strings.FieldsFunc(normalized, func(r rune) bool {
		return unicode.IsSpace(r) || r == '&'
	})

	var sb strings.Builder
	for _, w := range words {
		for _, r := range w {
			sb.WriteRune(r)
			break
		}
	}
	return sb.String()
}

// better keeps the higher-confidence candidate; ties keep the earlier one,
// which is the lower system id given the pre-sorted snapshot.
func better(current, candidate *models.MatchResult) *models.MatchResult {
	if current == nil || candidate.Confidence > current.Confidence {
		return candidate
	}
	return current
}
