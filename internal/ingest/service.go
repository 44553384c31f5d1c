// Package ingest applies quest lifecycle events to the derived stores: the
// search index, standardization fields and related lists.
package ingest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/parchmentlabs/questmatch/internal/metrics"
	"github.com/parchmentlabs/questmatch/internal/models"
	"github.com/parchmentlabs/questmatch/internal/search"
	"github.com/parchmentlabs/questmatch/internal/similarity"
	"github.com/parchmentlabs/questmatch/internal/standardize"
)

// QuestReader loads quest cards for event processing.
type QuestReader interface {
	GetQuest(ctx context.Context, id string) (*models.Quest, error)
}

// RelatedCleaner clears derived related lists when a quest disappears.
type RelatedCleaner interface {
	ReplaceRelatedQuests(ctx context.Context, questID string, entries []models.RelatedQuest) error
}

// Service reacts to quest events. Each handler is idempotent: reprocessing a
// delivered-twice event converges on the same derived state.
type Service struct {
	quests      QuestReader
	related     RelatedCleaner
	indexer     *search.Indexer
	standardize *standardize.Service
	engine      *similarity.Engine
}

func NewService(quests QuestReader, related RelatedCleaner, indexer *search.Indexer, std *standardize.Service, engine *similarity.Engine) *Service {
	return &Service{
		quests:      quests,
		related:     related,
		indexer:     indexer,
		standardize: std,
		engine:      engine,
	}
}

// ProcessEvent dispatches one quest event. Unknown event types are logged
// and dropped rather than retried.
func (s *Service) ProcessEvent(ctx context.Context, ev models.QuestEvent) error {
	var err error
	switch ev.Type {
	case models.EventQuestDeleted:
		err = s.handleDeleted(ctx, ev)
	case models.EventQuestCreated, models.EventQuestUpdated:
		err = s.handleUpserted(ctx, ev)
	default:
		log.Warn().Str("event", ev.Type).Str("questId", ev.QuestID).Msg("Unknown quest event type, dropping")
		metrics.EventsProcessed.WithLabelValues(ev.Type, "dropped").Inc()
		return nil
	}

	if err != nil {
		metrics.EventsProcessed.WithLabelValues(ev.Type, "error").Inc()
		return err
	}
	metrics.EventsProcessed.WithLabelValues(ev.Type, "completed").Inc()
	return nil
}

func (s *Service) handleDeleted(ctx context.Context, ev models.QuestEvent) error {
	if err := s.indexer.DeleteQuest(ctx, ev.QuestID); err != nil {
		return fmt.Errorf("failed to remove index entry: %w", err)
	}
	if err := s.related.ReplaceRelatedQuests(ctx, ev.QuestID, nil); err != nil {
		return fmt.Errorf("failed to clear related list: %w", err)
	}

	log.Info().Str("questId", ev.QuestID).Msg("Quest removed from derived stores")
	return nil
}

func (s *Service) handleUpserted(ctx context.Context, ev models.QuestEvent) error {
	quest, err := s.quests.GetQuest(ctx, ev.QuestID)
	if err != nil {
		return fmt.Errorf("failed to load quest %s: %w", ev.QuestID, err)
	}
	if quest == nil {
		// Event raced a deletion. Converge on the deleted state.
		log.Warn().Str("questId", ev.QuestID).Msg("Quest vanished before event processing, removing derived state")
		return s.handleDeleted(ctx, ev)
	}

	if err := s.indexer.IndexQuest(ctx, quest); err != nil {
		return fmt.Errorf("failed to index quest: %w", err)
	}

	// Standardize on creation, or when the free-text system field changed.
	if ev.Type == models.EventQuestCreated || ev.PreviousGameSystem != quest.GameSystem {
		if _, err := s.standardize.StandardizeQuest(ctx, quest, ""); err != nil {
			// Standardization failures do not block indexing or
			// similarity; the cleanup batch retries them.
			log.Error().Err(err).Str("questId", ev.QuestID).Msg("Standardization failed during event processing")
		}
	}

	if _, err := s.engine.ComputeRelated(ctx, ev.QuestID); err != nil {
		return fmt.Errorf("failed to recompute related list: %w", err)
	}

	log.Debug().Str("questId", ev.QuestID).Str("event", ev.Type).Msg("Quest event processed")
	return nil
}
