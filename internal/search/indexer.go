// Package search maintains the token index used for candidate retrieval
// and ranks candidates for free-text queries with the shared hybrid score.
package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/parchmentlabs/questmatch/internal/models"
	"github.com/parchmentlabs/questmatch/internal/textmatch"
)

// IndexStore persists index entries. Entries are derived state: fully
// rebuilt on every quest change and reconstructible from the catalog.
type IndexStore interface {
	UpsertIndexEntry(ctx context.Context, entry *models.IndexEntry) error
	DeleteIndexEntry(ctx context.Context, questID string) error
}

// QuestLister reads the quest catalog for backfills.
type QuestLister interface {
	ListQuests(ctx context.Context) ([]models.Quest, error)
}

// Indexer rebuilds index entries from quest content.
type Indexer struct {
	quests QuestLister
	index  IndexStore
}

func NewIndexer(quests QuestLister, index IndexStore) *Indexer {
	return &Indexer{quests: quests, index: index}
}

// BuildIndexEntry derives the index document for a quest: tokens over the
// concatenation of title, summary, tags, environment and the numeric
// attributes rendered as text.
func BuildIndexEntry(q *models.Quest) *models.IndexEntry {
	parts := []string{strings.TrimSpace(q.Title), strings.TrimSpace(q.Summary)}
	parts = append(parts, q.Tags...)
	parts = append(parts, q.Environment...)
	if q.Level > 0 {
		parts = append(parts, strconv.Itoa(q.Level))
	}
	if q.Players > 0 {
		parts = append(parts, strconv.Itoa(q.Players))
	}
	combined := strings.Join(parts, " ")

	return &models.IndexEntry{
		QuestID:    q.ID,
		Title:      strings.TrimSpace(q.Title),
		Summary:    strings.TrimSpace(q.Summary),
		SearchText: combined,
		Tokens:     textmatch.Tokenize(combined),
		IndexedAt:  time.Now(),
	}
}

// IndexQuest replaces the quest's index entry.
func (ix *Indexer) IndexQuest(ctx context.Context, q *models.Quest) error {
	entry := BuildIndexEntry(q)
	if err := ix.index.UpsertIndexEntry(ctx, entry); err != nil {
		return fmt.Errorf("failed to upsert index entry for %s: %w", q.ID, err)
	}
	return nil
}

// DeleteQuest removes the quest's index entry.
func (ix *Indexer) DeleteQuest(ctx context.Context, questID string) error {
	if err := ix.index.DeleteIndexEntry(ctx, questID); err != nil {
		return fmt.Errorf("failed to delete index entry for %s: %w", questID, err)
	}
	return nil
}

// BackfillAll reindexes every quest in the catalog. Returns the number of
// quests processed.
func (ix *Indexer) BackfillAll(ctx context.Context) (int, error) {
	quests, err := ix.quests.ListQuests(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list quests for backfill: %w", err)
	}

	processed := 0
	for i := range quests {
		if err := ix.IndexQuest(ctx, &quests[i]); err != nil {
			log.Error().Err(err).Str("questId", quests[i].ID).Msg("Backfill indexing failed")
			continue
		}
		processed++
	}

	log.Info().Int("processed", processed).Int("total", len(quests)).Msg("Index backfill completed")
	return processed, nil
}
