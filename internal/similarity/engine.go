// Package similarity computes hybrid content similarity between quests and
// maintains each quest's persisted top-N related list.
package similarity

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/parchmentlabs/questmatch/internal/metrics"
	"github.com/parchmentlabs/questmatch/internal/models"
	"github.com/parchmentlabs/questmatch/internal/textmatch"
)

// TopN is the bounded size of each quest's related list.
const TopN = 10

// QuestSource reads the quest catalog. GetQuest returns (nil, nil) when the
// quest is absent.
type QuestSource interface {
	GetQuest(ctx context.Context, id string) (*models.Quest, error)
	ListQuests(ctx context.Context) ([]models.Quest, error)
}

// RelatedStore persists related lists. ReplaceRelatedQuests must apply the
// delete-all + write-all as one atomic unit; readers never observe a
// partially rewritten list.
type RelatedStore interface {
	ReplaceRelatedQuests(ctx context.Context, questID string, entries []models.RelatedQuest) error
}

// Engine scores a target quest against the full catalog and persists the
// top-N most similar quests.
type Engine struct {
	quests  QuestSource
	related RelatedStore
	weights map[string]float64
}

func NewEngine(quests QuestSource, related RelatedStore) *Engine {
	return &Engine{
		quests:  quests,
		related: related,
		weights: textmatch.CanonicalFieldWeights(),
	}
}

// ComputeRelated recomputes and persists the related list for one quest.
//
// An absent target yields (nil, nil) with no write. An existing target with
// no peers persists an empty list, clearing any prior one. The whole
// operation is idempotent; rerunning it is the retry mechanism after a
// persistence failure.
func (e *Engine) ComputeRelated(ctx context.Context, questID string) ([]models.RelatedQuest, error) {
	target, err := e.quests.GetQuest(ctx, questID)
	if err != nil {
		metrics.SimilarityComputations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to load quest %s: %w", questID, err)
	}
	if target == nil {
		log.Warn().Str("questId", questID).Msg("Quest not found, skipping related-list computation")
		metrics.SimilarityComputations.WithLabelValues("not_found").Inc()
		return nil, nil
	}

	all, err := e.quests.ListQuests(ctx)
	if err != nil {
		metrics.SimilarityComputations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to list quests: %w", err)
	}

	type scored struct {
		id    string
		score float64
	}
	targetFields := textmatch.QuestFields(target)
	pairs := make([]scored, 0, len(all))
	for i := range all {
		other := &all[i]
		if other.ID == questID {
			continue
		}
		pairs = append(pairs, scored{
			id:    other.ID,
			score: e.hybridScore(target, targetFields, other),
		})
	}

	// Descending by score; equal scores break lexicographically by quest
	// id so recomputation over the same catalog is reproducible.
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].score != pairs[j].score {
			return pairs[i].score > pairs[j].score
		}
		return pairs[i].id < pairs[j].id
	})

	if len(pairs) > TopN {
		pairs = pairs[:TopN]
	}

	now := time.Now()
	entries := make([]models.RelatedQuest, 0, len(pairs))
	for rank, p := range pairs {
		entries = append(entries, models.RelatedQuest{
			QuestID:      questID,
			RelatedID:    p.id,
			Score:        p.score,
			Rank:         rank + 1,
			CalculatedAt: now,
		})
	}

	if err := e.related.ReplaceRelatedQuests(ctx, questID, entries); err != nil {
		metrics.SimilarityComputations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to replace related quests for %s: %w", questID, err)
	}

	metrics.SimilarityComputations.WithLabelValues("completed").Inc()
	log.Debug().
		Str("questId", questID).
		Int("related", len(entries)).
		Msg("Related list recomputed")

	return entries, nil
}

// hybridScore blends graded field agreement with title/summary text
// similarity: 0.6*field + 0.4*text.
func (e *Engine) hybridScore(target *models.Quest, targetFields textmatch.FieldSet, other *models.Quest) float64 {
	fieldScore := textmatch.FieldMatchGraded(targetFields, textmatch.QuestFields(other), e.weights)

	titleSim := textmatch.TextSimilarity(target.Title, other.Title)
	summarySim := textmatch.TextSimilarity(target.Summary, other.Summary)
	textScore := (titleSim + summarySim) / 2

	return textmatch.HybridFieldWeight*fieldScore + textmatch.HybridTextWeight*textScore
}
