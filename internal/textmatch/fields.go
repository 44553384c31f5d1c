package textmatch

import (
	"strconv"

	"github.com/parchmentlabs/questmatch/internal/models"
)

// Weighted attribute names recognized by the field scorers.
const (
	FieldGameSystem     = "gameSystem"
	FieldLevel          = "level"
	FieldPlayers        = "players"
	FieldDuration       = "duration"
	FieldTags           = "tags"
	FieldEnvironment    = "environment"
	FieldCommonMonsters = "commonMonsters"
)

// CanonicalFieldWeights is the single weight table used by both the
// similarity engine and the search ranker. Weights sum to 1.0.
func CanonicalFieldWeights() map[string]float64 {
	return map[string]float64{
		FieldGameSystem:     0.25,
		FieldLevel:          0.15,
		FieldPlayers:        0.10,
		FieldDuration:       0.05,
		FieldTags:           0.15,
		FieldEnvironment:    0.15,
		FieldCommonMonsters: 0.15,
	}
}

// FieldSet is a partial attribute view of a quest (or of a synthetic
// search target built from filters). Absent attributes simply have no key.
type FieldSet struct {
	Scalars map[string]string
	Sets    map[string][]string
}

// QuestFields projects a quest onto the attributes the field scorers
// understand. The standardized game system is preferred over the raw one
// when present.
func QuestFields(q *models.Quest) FieldSet {
	fs := FieldSet{
		Scalars: make(map[string]string, 4),
		Sets:    make(map[string][]string, 3),
	}

	system := q.StandardizedGameSystem
	if system == "" {
		system = q.GameSystem
	}
	if system != "" {
		fs.Scalars[FieldGameSystem] = system
	}
	if q.Level > 0 {
		fs.Scalars[FieldLevel] = strconv.Itoa(q.Level)
	}
	if q.Players > 0 {
		fs.Scalars[FieldPlayers] = strconv.Itoa(q.Players)
	}
	if q.Duration != "" {
		fs.Scalars[FieldDuration] = q.Duration
	}
	if len(q.Tags) > 0 {
		fs.Sets[FieldTags] = q.Tags
	}
	if len(q.Environment) > 0 {
		fs.Sets[FieldEnvironment] = q.Environment
	}
	if len(q.CommonMonsters) > 0 {
		fs.Sets[FieldCommonMonsters] = q.CommonMonsters
	}
	return fs
}

// FieldMatchEquality scores two field sets by adding each attribute's full
// weight when it agrees: scalars must be present on both sides and equal,
// set-valued attributes just need any overlap. The sum is not normalized.
// Used where many pairwise comparisons favor a crude, stable bonus over a
// graded one.
func FieldMatchEquality(a, b FieldSet, weights map[string]float64) float64 {
	score := 0.0
	for field, weight := range weights {
		if weight <= 0 {
			continue
		}
		if va, ok := a.Scalars[field]; ok {
			if vb, ok := b.Scalars[field]; ok && va == vb {
				score += weight
			}
			continue
		}
		sa, sb := a.Sets[field], b.Sets[field]
		if len(sa) > 0 && len(sb) > 0 && intersectionSize(sa, sb) > 0 {
			score += weight
		}
	}
	return score
}

// FieldMatchGraded scores two field sets into [0,1]: scalar agreement earns
// the attribute's full weight, set-valued attributes earn weight scaled by
// Jaccard similarity, and the total is divided by the weight sum. A zero
// weight sum yields 0.0.
func FieldMatchGraded(a, b FieldSet, weights map[string]float64) float64 {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return 0.0
	}

	score := 0.0
	for field, weight := range weights {
		if weight <= 0 {
			continue
		}
		if va, ok := a.Scalars[field]; ok {
			if vb, ok := b.Scalars[field]; ok && va == vb {
				score += weight
			}
			continue
		}
		sa, sb := a.Sets[field], b.Sets[field]
		if len(sa) > 0 && len(sb) > 0 {
			score += weight * jaccard(sa, sb)
		}
	}
	return score / total
}

func intersectionSize(a, b []string) int {
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	n := 0
	seen := make(map[string]struct{}, len(b))
	for _, v := range b {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		if _, ok := set[v]; ok {
			n++
		}
	}
	return n
}

func jaccard(a, b []string) float64 {
	union := make(map[string]struct{}, len(a)+len(b))
	for _, v := range a {
		union[v] = struct{}{}
	}
	for _, v := range b {
		union[v] = struct{}{}
	}
	if len(union) == 0 {
		return 0.0
	}
	return float64(intersectionSize(a, b)) / float64(len(union))
}
