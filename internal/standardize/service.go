package standardize

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/parchmentlabs/questmatch/internal/metrics"
	"github.com/parchmentlabs/questmatch/internal/models"
)

// Caller-side confidence policy: matches at or above AutoAcceptThreshold
// are applied directly, matches at or above ReviewThreshold are suggested
// for human review, anything weaker is recorded as no_match.
const (
	AutoAcceptThreshold = 0.85
	ReviewThreshold     = 0.60
)

// SystemsStore is the canonical system reference data access the service
// needs.
type SystemsStore interface {
	ListGameSystems(ctx context.Context) ([]models.GameSystem, error)
	GetByStandardName(ctx context.Context, name string) (*models.GameSystem, error)
	AppendAliasIfAbsent(ctx context.Context, systemID, alias string) error
}

// QuestStore is the quest catalog access the service needs: reads plus the
// standardization fields it writes back.
type QuestStore interface {
	GetQuest(ctx context.Context, id string) (*models.Quest, error)
	UpdateStandardization(ctx context.Context, questID string, upd models.StandardizationUpdate) error
	ListQuestsForCleanup(ctx context.Context, limit int) ([]models.Quest, error)
	CountByMigrationStatus(ctx context.Context, status string) (int, error)
	CountQuests(ctx context.Context) (int, error)
}

// FeedbackStore persists user mapping feedback and migration run logs.
type FeedbackStore interface {
	InsertFeedback(ctx context.Context, fb *models.MappingFeedback) (string, error)
	UpdateFeedbackStatus(ctx context.Context, id, status, note string) error
	InsertMigrationLog(ctx context.Context, ml *models.MigrationLog) error
	UpdateMigrationLog(ctx context.Context, ml *models.MigrationLog) error
}

// Service applies the standardization policy: it resolves names against a
// fresh snapshot of the reference set, writes the outcome onto quest
// cards, and learns verified aliases from user feedback.
type Service struct {
	systems  SystemsStore
	quests   QuestStore
	feedback FeedbackStore
}

func NewService(systems SystemsStore, quests QuestStore, feedback FeedbackStore) *Service {
	return &Service{
		systems:  systems,
		quests:   quests,
		feedback: feedback,
	}
}

// ResolveName resolves a free-text name against a snapshot of the
// canonical systems, without writing anything. Used by the dry-run
// endpoint and internally by StandardizeQuest.
func (s *Service) ResolveName(ctx context.Context, name string) (*models.MatchResult, error) {
	systems, err := s.systems.ListGameSystems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list game systems: %w", err)
	}
	return Resolve(name, systems), nil
}

// StandardizeQuest resolves the quest's game system and writes the outcome
// back. Quests without a game system, or already standardized ones, are
// skipped. Returns the migration status that was written ("" if skipped).
func (s *Service) StandardizeQuest(ctx context.Context, quest *models.Quest, migrationID string) (string, error) {
	if quest.GameSystem == "" {
		return "", nil
	}

	match, err := s.ResolveName(ctx, quest.GameSystem)
	if err != nil {
		return "", err
	}

	upd := models.StandardizationUpdate{MigrationID: migrationID}
	switch {
	case match != nil && match.Confidence >= AutoAcceptThreshold:
		upd.StandardizedGameSystem = match.StandardName
		upd.Status = models.MigrationStatusCompleted
		upd.Confidence = match.Confidence
		upd.MatchType = match.MatchType
	case match != nil && match.Confidence >= ReviewThreshold:
		upd.SuggestedSystem = match.StandardName
		upd.Status = models.MigrationStatusNeedsReview
		upd.Confidence = match.Confidence
	default:
		upd.Status = models.MigrationStatusNoMatch
	}

	if err := s.quests.UpdateStandardization(ctx, quest.ID, upd); err != nil {
		return "", fmt.Errorf("failed to update quest standardization: %w", err)
	}

	matchType := "none"
	if match != nil {
		matchType = match.MatchType
	}
	metrics.StandardizationMatches.WithLabelValues(matchType, upd.Status).Inc()

	log.Debug().
		Str("questId", quest.ID).
		Str("gameSystem", quest.GameSystem).
		Str("status", upd.Status).
		Msg("Quest standardization applied")

	return upd.Status, nil
}

// RunCleanup standardizes quests whose migration status is pending, failed
// or missing, recording progress in a migration log. This is the batch
// analogue of the per-quest trigger and is safe to rerun.
func (s *Service) RunCleanup(ctx context.Context, batchSize int) (*models.MigrationLog, error) {
	ml := &models.MigrationLog{
		ID:        fmt.Sprintf("cleanup-%s", uuid.New().String()[:8]),
		Type:      "scheduled",
		Status:    "in_progress",
		StartedAt: time.Now(),
	}
	if err := s.feedback.InsertMigrationLog(ctx, ml); err != nil {
		return nil, fmt.Errorf("failed to create migration log: %w", err)
	}

	quests, err := s.quests.ListQuestsForCleanup(ctx, batchSize)
	if err != nil {
		ml.Status = "error"
		ml.Error = err.Error()
		ml.CompletedAt = time.Now()
		if uerr := s.feedback.UpdateMigrationLog(ctx, ml); uerr != nil {
			log.Error().Err(uerr).Str("migrationId", ml.ID).Msg("Failed to update migration log")
		}
		return ml, fmt.Errorf("failed to list quests for cleanup: %w", err)
	}

	for i := range quests {
		quest := &quests[i]
		if quest.GameSystem == "" {
			continue
		}
		ml.Processed++

		status, err := s.StandardizeQuest(ctx, quest, ml.ID)
		if err != nil {
			log.Error().Err(err).Str("questId", quest.ID).Msg("Cleanup standardization failed")
			continue
		}
		switch status {
		case models.MigrationStatusCompleted:
			ml.Successful++
		case models.MigrationStatusNeedsReview:
			ml.NeedsReview++
		case models.MigrationStatusNoMatch:
			ml.NoMatch++
		}
	}

	ml.Status = "completed"
	ml.CompletedAt = time.Now()
	if err := s.feedback.UpdateMigrationLog(ctx, ml); err != nil {
		log.Error().Err(err).Str("migrationId", ml.ID).Msg("Failed to update migration log")
	}

	log.Info().
		Str("migrationId", ml.ID).
		Int("processed", ml.Processed).
		Int("successful", ml.Successful).
		Int("needsReview", ml.NeedsReview).
		Msg("Standardization cleanup completed")

	return ml, nil
}

// Stats aggregates migration status counts across the catalog.
func (s *Service) Stats(ctx context.Context) (*models.StandardizationStats, error) {
	stats := &models.StandardizationStats{}

	counts := []struct {
		status string
		dest   *int
	}{
		{models.MigrationStatusCompleted, &stats.Standardized},
		{models.MigrationStatusPending, &stats.Pending},
		{models.MigrationStatusFailed, &stats.Failed},
		{models.MigrationStatusNeedsReview, &stats.NeedsReview},
		{models.MigrationStatusNoMatch, &stats.NoMatch},
		{models.MigrationStatusFlagged, &stats.Flagged},
	}
	for _, c := range counts {
		n, err := s.quests.CountByMigrationStatus(ctx, c.status)
		if err != nil {
			return nil, fmt.Errorf("failed to count status %s: %w", c.status, err)
		}
		*c.dest = n
	}

	total, err := s.quests.CountQuests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count quests: %w", err)
	}
	stats.Total = total
	processed := stats.Standardized + stats.Pending + stats.Failed +
		stats.NeedsReview + stats.NoMatch + stats.Flagged
	stats.Unprocessed = total - processed
	if total > 0 {
		stats.Coverage = float64(stats.Standardized) / float64(total)
	}

	return stats, nil
}

// ReportIncorrectMapping records user feedback that a mapping is wrong and
// flags the quest for review.
func (s *Service) ReportIncorrectMapping(ctx context.Context, req models.FeedbackRequest) (string, error) {
	userID := req.UserID
	if userID == "" {
		userID = "anonymous"
	}

	fb := &models.MappingFeedback{
		QuestID:         req.QuestID,
		OriginalSystem:  req.OriginalSystem,
		SuggestedSystem: req.SuggestedSystem,
		UserID:          userID,
		Status:          "pending",
		CreatedAt:       time.Now(),
	}
	id, err := s.feedback.InsertFeedback(ctx, fb)
	if err != nil {
		return "", fmt.Errorf("failed to record feedback: %w", err)
	}
	fb.ID = id

	upd := models.StandardizationUpdate{
		Status:          models.MigrationStatusFlagged,
		SuggestedSystem: req.SuggestedSystem,
	}
	if err := s.quests.UpdateStandardization(ctx, req.QuestID, upd); err != nil {
		log.Warn().Err(err).Str("questId", req.QuestID).Msg("Failed to flag quest after feedback")
	}

	if err := s.ProcessFeedback(ctx, fb); err != nil {
		log.Error().Err(err).Str("feedbackId", id).Msg("Failed to process feedback")
	}

	return id, nil
}

// ProcessFeedback verifies the suggested system exists and appends the
// original free-text name to its alias set if absent. The alias append is
// idempotent, so reprocessing the same feedback is harmless.
func (s *Service) ProcessFeedback(ctx context.Context, fb *models.MappingFeedback) error {
	if fb.OriginalSystem == "" || fb.SuggestedSystem == "" {
		return s.feedback.UpdateFeedbackStatus(ctx, fb.ID, "needs_admin_review",
			"Missing original or suggested system")
	}

	system, err := s.systems.GetByStandardName(ctx, fb.SuggestedSystem)
	if err != nil {
		return fmt.Errorf("failed to look up suggested system: %w", err)
	}
	if system == nil {
		return s.feedback.UpdateFeedbackStatus(ctx, fb.ID, "needs_admin_review",
			"Suggested system does not exist in standard systems")
	}

	for _, alias := range system.Aliases {
		if alias == fb.OriginalSystem {
			return s.feedback.UpdateFeedbackStatus(ctx, fb.ID, "processed",
				"Original system already in aliases")
		}
	}

	if err := s.systems.AppendAliasIfAbsent(ctx, system.ID, fb.OriginalSystem); err != nil {
		return fmt.Errorf("failed to append alias: %w", err)
	}

	log.Info().
		Str("systemId", system.ID).
		Str("alias", fb.OriginalSystem).
		Msg("Learned new game system alias from feedback")

	return s.feedback.UpdateFeedbackStatus(ctx, fb.ID, "processed",
		"Added original system to aliases")
}
