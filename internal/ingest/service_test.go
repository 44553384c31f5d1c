package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parchmentlabs/questmatch/internal/models"
	"github.com/parchmentlabs/questmatch/internal/search"
	"github.com/parchmentlabs/questmatch/internal/similarity"
	"github.com/parchmentlabs/questmatch/internal/standardize"
)

// fakeCatalog backs every store the ingest pipeline touches.
type fakeCatalog struct {
	quests  map[string]*models.Quest
	index   map[string]*models.IndexEntry
	related map[string][]models.RelatedQuest
	updates map[string]models.StandardizationUpdate
	systems []models.GameSystem
}

func newFakeCatalog(quests ...*models.Quest) *fakeCatalog {
	f := &fakeCatalog{
		quests:  make(map[string]*models.Quest),
		index:   make(map[string]*models.IndexEntry),
		related: make(map[string][]models.RelatedQuest),
		updates: make(map[string]models.StandardizationUpdate),
		systems: []models.GameSystem{
			{ID: "sys-pf2", StandardName: "Pathfinder 2nd Edition", Aliases: []string{"pf2e"}},
		},
	}
	for _, q := range quests {
		f.quests[q.ID] = q
	}
	return f
}

func (f *fakeCatalog) GetQuest(ctx context.Context, id string) (*models.Quest, error) {
	return f.quests[id], nil
}

func (f *fakeCatalog) ListQuests(ctx context.Context) ([]models.Quest, error) {
	out := make([]models.Quest, 0, len(f.quests))
	for _, q := range f.quests {
		out = append(out, *q)
	}
	return out, nil
}

func (f *fakeCatalog) UpsertIndexEntry(ctx context.Context, entry *models.IndexEntry) error {
	f.index[entry.QuestID] = entry
	return nil
}

func (f *fakeCatalog) DeleteIndexEntry(ctx context.Context, questID string) error {
	delete(f.index, questID)
	return nil
}

func (f *fakeCatalog) ReplaceRelatedQuests(ctx context.Context, questID string, entries []models.RelatedQuest) error {
	f.related[questID] = entries
	return nil
}

func (f *fakeCatalog) UpdateStandardization(ctx context.Context, questID string, upd models.StandardizationUpdate) error {
	f.updates[questID] = upd
	if q, ok := f.quests[questID]; ok {
		q.MigrationStatus = upd.Status
		if upd.StandardizedGameSystem != "" {
			q.StandardizedGameSystem = upd.StandardizedGameSystem
		}
	}
	return nil
}

func (f *fakeCatalog) ListQuestsForCleanup(ctx context.Context, limit int) ([]models.Quest, error) {
	return nil, nil
}

func (f *fakeCatalog) CountByMigrationStatus(ctx context.Context, status string) (int, error) {
	return 0, nil
}

func (f *fakeCatalog) CountQuests(ctx context.Context) (int, error) {
	return len(f.quests), nil
}

func (f *fakeCatalog) ListGameSystems(ctx context.Context) ([]models.GameSystem, error) {
	return f.systems, nil
}

func (f *fakeCatalog) GetByStandardName(ctx context.Context, name string) (*models.GameSystem, error) {
	for i := range f.systems {
		if f.systems[i].StandardName == name {
			return &f.systems[i], nil
		}
	}
	return nil, nil
}

func (f *fakeCatalog) AppendAliasIfAbsent(ctx context.Context, systemID, alias string) error {
	return nil
}

func (f *fakeCatalog) InsertFeedback(ctx context.Context, fb *models.MappingFeedback) (string, error) {
	return "fb-1", nil
}

func (f *fakeCatalog) UpdateFeedbackStatus(ctx context.Context, id, status, note string) error {
	return nil
}

func (f *fakeCatalog) InsertMigrationLog(ctx context.Context, ml *models.MigrationLog) error {
	return nil
}

func (f *fakeCatalog) UpdateMigrationLog(ctx context.Context, ml *models.MigrationLog) error {
	return nil
}

func newTestService(catalog *fakeCatalog) *Service {
	stdSvc := standardize.NewService(catalog, catalog, catalog)
	engine := similarity.NewEngine(catalog, catalog)
	indexer := search.NewIndexer(catalog, catalog)
	return NewService(catalog, catalog, indexer, stdSvc, engine)
}

func TestProcessEvent_CreatedIndexesStandardizesAndRelates(t *testing.T) {
	catalog := newFakeCatalog(
		&models.Quest{ID: "q1", Title: "Goblin ambush", GameSystem: "pf2e"},
		&models.Quest{ID: "q2", Title: "Goblin raid"},
	)
	svc := newTestService(catalog)

	err := svc.ProcessEvent(context.Background(), models.QuestEvent{
		Type:    models.EventQuestCreated,
		QuestID: "q1",
	})

	require.NoError(t, err)
	assert.Contains(t, catalog.index, "q1")
	assert.Equal(t, models.MigrationStatusCompleted, catalog.updates["q1"].Status)
	assert.Equal(t, "Pathfinder 2nd Edition", catalog.updates["q1"].StandardizedGameSystem)

	related := catalog.related["q1"]
	require.Len(t, related, 1)
	assert.Equal(t, "q2", related[0].RelatedID)
}

func TestProcessEvent_UpdateWithSameSystemSkipsStandardization(t *testing.T) {
	catalog := newFakeCatalog(
		&models.Quest{ID: "q1", Title: "Goblin ambush", GameSystem: "pf2e"},
	)
	svc := newTestService(catalog)

	err := svc.ProcessEvent(context.Background(), models.QuestEvent{
		Type:               models.EventQuestUpdated,
		QuestID:            "q1",
		PreviousGameSystem: "pf2e",
	})

	require.NoError(t, err)
	assert.Contains(t, catalog.index, "q1")
	assert.NotContains(t, catalog.updates, "q1")
}

func TestProcessEvent_UpdateWithChangedSystemRestandardizes(t *testing.T) {
	catalog := newFakeCatalog(
		&models.Quest{ID: "q1", Title: "Goblin ambush", GameSystem: "pf2e"},
	)
	svc := newTestService(catalog)

	err := svc.ProcessEvent(context.Background(), models.QuestEvent{
		Type:               models.EventQuestUpdated,
		QuestID:            "q1",
		PreviousGameSystem: "dnd 5e",
	})

	require.NoError(t, err)
	assert.Equal(t, models.MigrationStatusCompleted, catalog.updates["q1"].Status)
}

func TestProcessEvent_DeletedClearsDerivedState(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.index["q1"] = &models.IndexEntry{QuestID: "q1"}
	catalog.related["q1"] = []models.RelatedQuest{{QuestID: "q1", RelatedID: "q2"}}
	svc := newTestService(catalog)

	err := svc.ProcessEvent(context.Background(), models.QuestEvent{
		Type:    models.EventQuestDeleted,
		QuestID: "q1",
	})

	require.NoError(t, err)
	assert.NotContains(t, catalog.index, "q1")
	assert.Empty(t, catalog.related["q1"])
}

func TestProcessEvent_UpsertForVanishedQuestConverges(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.index["q1"] = &models.IndexEntry{QuestID: "q1"}
	svc := newTestService(catalog)

	err := svc.ProcessEvent(context.Background(), models.QuestEvent{
		Type:    models.EventQuestUpdated,
		QuestID: "q1",
	})

	require.NoError(t, err)
	assert.NotContains(t, catalog.index, "q1")
}

func TestProcessEvent_UnknownTypeDropped(t *testing.T) {
	catalog := newFakeCatalog(&models.Quest{ID: "q1"})
	svc := newTestService(catalog)

	err := svc.ProcessEvent(context.Background(), models.QuestEvent{
		Type:    "quest_archived",
		QuestID: "q1",
	})

	require.NoError(t, err)
	assert.Empty(t, catalog.index)
}
