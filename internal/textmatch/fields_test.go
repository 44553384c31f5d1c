package textmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parchmentlabs/questmatch/internal/models"
)

func TestCanonicalFieldWeights_SumToOne(t *testing.T) {
	sum := 0.0
	for _, w := range CanonicalFieldWeights() {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestQuestFields_PrefersStandardizedSystem(t *testing.T) {
	q := &models.Quest{
		GameSystem:             "dnd 5e",
		StandardizedGameSystem: "Dungeons & Dragons 5th Edition",
	}

	fs := QuestFields(q)

	assert.Equal(t, "Dungeons & Dragons 5th Edition", fs.Scalars[FieldGameSystem])
}

func TestQuestFields_OmitsAbsentAttributes(t *testing.T) {
	fs := QuestFields(&models.Quest{Title: "Bare quest"})

	assert.Empty(t, fs.Scalars)
	assert.Empty(t, fs.Sets)
}

func TestQuestFields_RendersNumericAttributes(t *testing.T) {
	fs := QuestFields(&models.Quest{Level: 5, Players: 4, Duration: "long"})

	assert.Equal(t, "5", fs.Scalars[FieldLevel])
	assert.Equal(t, "4", fs.Scalars[FieldPlayers])
	assert.Equal(t, "long", fs.Scalars[FieldDuration])
}

func TestFieldMatchGraded_IdenticalQuests(t *testing.T) {
	q := &models.Quest{
		GameSystem:     "Pathfinder",
		Level:          3,
		Players:        4,
		Duration:       "medium",
		Tags:           []string{"mystery", "urban"},
		Environment:    []string{"city"},
		CommonMonsters: []string{"cultist"},
	}

	score := FieldMatchGraded(QuestFields(q), QuestFields(q), CanonicalFieldWeights())

	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestFieldMatchGraded_NoSharedAttributes(t *testing.T) {
	a := QuestFields(&models.Quest{GameSystem: "Pathfinder", Level: 3})
	b := QuestFields(&models.Quest{GameSystem: "Shadowrun", Level: 9})

	score := FieldMatchGraded(a, b, CanonicalFieldWeights())

	assert.Equal(t, 0.0, score)
}

func TestFieldMatchGraded_PartialSetOverlapUsesJaccard(t *testing.T) {
	weights := map[string]float64{FieldTags: 1.0}
	a := FieldSet{Sets: map[string][]string{FieldTags: {"mystery", "urban"}}}
	b := FieldSet{Sets: map[string][]string{FieldTags: {"urban", "heist"}}}

	// Intersection 1, union 3.
	score := FieldMatchGraded(a, b, weights)

	assert.InDelta(t, 1.0/3.0, score, 1e-9)
}

func TestFieldMatchGraded_NormalizedByWeightSum(t *testing.T) {
	weights := map[string]float64{
		FieldGameSystem: 0.5,
		FieldLevel:      0.5,
	}
	a := FieldSet{Scalars: map[string]string{FieldGameSystem: "Pathfinder", FieldLevel: "3"}}
	b := FieldSet{Scalars: map[string]string{FieldGameSystem: "Pathfinder", FieldLevel: "7"}}

	score := FieldMatchGraded(a, b, weights)

	assert.InDelta(t, 0.5, score, 1e-9)
}

func TestFieldMatchGraded_ZeroWeightSum(t *testing.T) {
	a := FieldSet{Scalars: map[string]string{FieldGameSystem: "Pathfinder"}}

	assert.Equal(t, 0.0, FieldMatchGraded(a, a, map[string]float64{}))
}

func TestFieldMatchEquality_FullWeightOnAnyOverlap(t *testing.T) {
	weights := map[string]float64{
		FieldGameSystem: 0.4,
		FieldTags:       0.6,
	}
	a := FieldSet{
		Scalars: map[string]string{FieldGameSystem: "Pathfinder"},
		Sets:    map[string][]string{FieldTags: {"mystery", "urban"}},
	}
	b := FieldSet{
		Scalars: map[string]string{FieldGameSystem: "Pathfinder"},
		Sets:    map[string][]string{FieldTags: {"urban", "heist", "night"}},
	}

	// Equality scoring is unnormalized and ignores overlap size.
	assert.InDelta(t, 1.0, FieldMatchEquality(a, b, weights), 1e-9)
}

func TestFieldMatchEquality_MissingSideScoresNothing(t *testing.T) {
	weights := map[string]float64{FieldGameSystem: 1.0}
	a := FieldSet{Scalars: map[string]string{FieldGameSystem: "Pathfinder"}}
	b := FieldSet{Scalars: map[string]string{}}

	assert.Equal(t, 0.0, FieldMatchEquality(a, b, weights))
}
