package standardize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parchmentlabs/questmatch/internal/models"
)

type fakeSystemsStore struct {
	systems       []models.GameSystem
	appendedID    string
	appendedAlias string
}

func (f *fakeSystemsStore) ListGameSystems(ctx context.Context) ([]models.GameSystem, error) {
	return f.systems, nil
}

func (f *fakeSystemsStore) GetByStandardName(ctx context.Context, name string) (*models.GameSystem, error) {
	for i := range f.systems {
		if f.systems[i].StandardName == name {
			return &f.systems[i], nil
		}
	}
	return nil, nil
}

func (f *fakeSystemsStore) AppendAliasIfAbsent(ctx context.Context, systemID, alias string) error {
	f.appendedID = systemID
	f.appendedAlias = alias
	for i := range f.systems {
		if f.systems[i].ID == systemID {
			f.systems[i].Aliases = append(f.systems[i].Aliases, alias)
		}
	}
	return nil
}

type fakeQuestStore struct {
	quests  map[string]*models.Quest
	updates map[string]models.StandardizationUpdate
}

func newFakeQuestStore(quests ...*models.Quest) *fakeQuestStore {
	f := &fakeQuestStore{
		quests:  make(map[string]*models.Quest),
		updates: make(map[string]models.StandardizationUpdate),
	}
	for _, q := range quests {
		f.quests[q.ID] = q
	}
	return f
}

func (f *fakeQuestStore) GetQuest(ctx context.Context, id string) (*models.Quest, error) {
	return f.quests[id], nil
}

func (f *fakeQuestStore) UpdateStandardization(ctx context.Context, questID string, upd models.StandardizationUpdate) error {
	f.updates[questID] = upd
	return nil
}

func (f *fakeQuestStore) ListQuestsForCleanup(ctx context.Context, limit int) ([]models.Quest, error) {
	var out []models.Quest
	for _, q := range f.quests {
		if q.MigrationStatus == "" || q.MigrationStatus == models.MigrationStatusPending ||
			q.MigrationStatus == models.MigrationStatusFailed {
			out = append(out, *q)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeQuestStore) CountByMigrationStatus(ctx context.Context, status string) (int, error) {
	n := 0
	for _, q := range f.quests {
		if q.MigrationStatus == status {
			n++
		}
	}
	return n, nil
}

func (f *fakeQuestStore) CountQuests(ctx context.Context) (int, error) {
	return len(f.quests), nil
}

type fakeFeedbackStore struct {
	inserted      []*models.MappingFeedback
	statuses      map[string]string
	notes         map[string]string
	migrationLogs map[string]*models.MigrationLog
}

func newFakeFeedbackStore() *fakeFeedbackStore {
	return &fakeFeedbackStore{
		statuses:      make(map[string]string),
		notes:         make(map[string]string),
		migrationLogs: make(map[string]*models.MigrationLog),
	}
}

func (f *fakeFeedbackStore) InsertFeedback(ctx context.Context, fb *models.MappingFeedback) (string, error) {
	if fb.ID == "" {
		fb.ID = "fb-1"
	}
	f.inserted = append(f.inserted, fb)
	return fb.ID, nil
}

func (f *fakeFeedbackStore) UpdateFeedbackStatus(ctx context.Context, id, status, note string) error {
	f.statuses[id] = status
	f.notes[id] = note
	return nil
}

func (f *fakeFeedbackStore) InsertMigrationLog(ctx context.Context, ml *models.MigrationLog) error {
	f.migrationLogs[ml.ID] = ml
	return nil
}

func (f *fakeFeedbackStore) UpdateMigrationLog(ctx context.Context, ml *models.MigrationLog) error {
	f.migrationLogs[ml.ID] = ml
	return nil
}

func testService(quests ...*models.Quest) (*Service, *fakeSystemsStore, *fakeQuestStore, *fakeFeedbackStore) {
	systems := &fakeSystemsStore{systems: referenceSystems()}
	questStore := newFakeQuestStore(quests...)
	feedback := newFakeFeedbackStore()
	return NewService(systems, questStore, feedback), systems, questStore, feedback
}

func TestStandardizeQuest_HighConfidenceCompletes(t *testing.T) {
	quest := &models.Quest{ID: "q1", GameSystem: "dnd 5e"}
	svc, _, questStore, _ := testService(quest)

	status, err := svc.StandardizeQuest(context.Background(), quest, "")

	require.NoError(t, err)
	assert.Equal(t, models.MigrationStatusCompleted, status)

	upd := questStore.updates["q1"]
	assert.Equal(t, "Dungeons & Dragons 5th Edition", upd.StandardizedGameSystem)
	assert.Equal(t, models.MatchTypeAlias, upd.MatchType)
	assert.Equal(t, 0.98, upd.Confidence)
}

func TestStandardizeQuest_SubstringSuggestsCompletion(t *testing.T) {
	// Substring confidence 0.85 sits exactly at the auto-accept threshold.
	quest := &models.Quest{ID: "q1", GameSystem: "cthulhu"}
	svc, _, questStore, _ := testService(quest)

	status, err := svc.StandardizeQuest(context.Background(), quest, "")

	require.NoError(t, err)
	assert.Equal(t, models.MigrationStatusCompleted, status)
	assert.Equal(t, "Call of Cthulhu", questStore.updates["q1"].StandardizedGameSystem)
}

func TestStandardizeQuest_NoMatchRecorded(t *testing.T) {
	quest := &models.Quest{ID: "q1", GameSystem: "Totally Unknown System"}
	svc, _, questStore, _ := testService(quest)

	status, err := svc.StandardizeQuest(context.Background(), quest, "")

	require.NoError(t, err)
	assert.Equal(t, models.MigrationStatusNoMatch, status)
	assert.Empty(t, questStore.updates["q1"].StandardizedGameSystem)
}

func TestStandardizeQuest_SkipsQuestWithoutSystem(t *testing.T) {
	quest := &models.Quest{ID: "q1"}
	svc, _, questStore, _ := testService(quest)

	status, err := svc.StandardizeQuest(context.Background(), quest, "")

	require.NoError(t, err)
	assert.Empty(t, status)
	assert.Empty(t, questStore.updates)
}

func TestRunCleanup_ProcessesPendingQuests(t *testing.T) {
	q1 := &models.Quest{ID: "q1", GameSystem: "dnd 5e"}
	q2 := &models.Quest{ID: "q2", GameSystem: "Unknown Homebrew"}
	q3 := &models.Quest{ID: "q3"} // no system, skipped
	svc, _, questStore, feedback := testService(q1, q2, q3)

	ml, err := svc.RunCleanup(context.Background(), 100)

	require.NoError(t, err)
	assert.Equal(t, 2, ml.Processed)
	assert.Equal(t, 1, ml.Successful)
	assert.Equal(t, 1, ml.NoMatch)
	assert.Equal(t, "completed", ml.Status)
	assert.Len(t, questStore.updates, 2)

	stored := feedback.migrationLogs[ml.ID]
	require.NotNil(t, stored)
	assert.Equal(t, "completed", stored.Status)
}

func TestStats_AggregatesCoverage(t *testing.T) {
	q1 := &models.Quest{ID: "q1", MigrationStatus: models.MigrationStatusCompleted}
	q2 := &models.Quest{ID: "q2", MigrationStatus: models.MigrationStatusCompleted}
	q3 := &models.Quest{ID: "q3", MigrationStatus: models.MigrationStatusNoMatch}
	q4 := &models.Quest{ID: "q4"}
	svc, _, _, _ := testService(q1, q2, q3, q4)

	stats, err := svc.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, stats.Standardized)
	assert.Equal(t, 1, stats.NoMatch)
	assert.Equal(t, 1, stats.Unprocessed)
	assert.Equal(t, 4, stats.Total)
	assert.InDelta(t, 0.5, stats.Coverage, 1e-9)
}

func TestReportIncorrectMapping_LearnsAlias(t *testing.T) {
	quest := &models.Quest{ID: "q1", GameSystem: "my weird spelling"}
	svc, systems, questStore, feedback := testService(quest)

	id, err := svc.ReportIncorrectMapping(context.Background(), models.FeedbackRequest{
		QuestID:         "q1",
		OriginalSystem:  "my weird spelling",
		SuggestedSystem: "Pathfinder 2nd Edition",
	})

	require.NoError(t, err)
	require.NotEmpty(t, id)

	assert.Equal(t, "sys-pf2", systems.appendedID)
	assert.Equal(t, "my weird spelling", systems.appendedAlias)
	assert.Equal(t, "processed", feedback.statuses[id])
	assert.Equal(t, models.MigrationStatusFlagged, questStore.updates["q1"].Status)
}

func TestReportIncorrectMapping_UnknownSuggestionNeedsAdmin(t *testing.T) {
	quest := &models.Quest{ID: "q1", GameSystem: "whatever"}
	svc, systems, _, feedback := testService(quest)

	id, err := svc.ReportIncorrectMapping(context.Background(), models.FeedbackRequest{
		QuestID:         "q1",
		OriginalSystem:  "whatever",
		SuggestedSystem: "Not A Real System",
	})

	require.NoError(t, err)
	assert.Empty(t, systems.appendedID)
	assert.Equal(t, "needs_admin_review", feedback.statuses[id])
}

func TestProcessFeedback_AlreadyKnownAliasIsIdempotent(t *testing.T) {
	quest := &models.Quest{ID: "q1", GameSystem: "pf2e"}
	svc, systems, _, feedback := testService(quest)

	err := svc.ProcessFeedback(context.Background(), &models.MappingFeedback{
		ID:              "fb-9",
		OriginalSystem:  "pf2e",
		SuggestedSystem: "Pathfinder 2nd Edition",
	})

	require.NoError(t, err)
	assert.Empty(t, systems.appendedID)
	assert.Equal(t, "processed", feedback.statuses["fb-9"])
}
