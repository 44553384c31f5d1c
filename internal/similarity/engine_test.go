package similarity

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parchmentlabs/questmatch/internal/models"
)

type fakeQuestSource struct {
	quests []models.Quest
}

func (f *fakeQuestSource) GetQuest(ctx context.Context, id string) (*models.Quest, error) {
	for i := range f.quests {
		if f.quests[i].ID == id {
			return &f.quests[i], nil
		}
	}
	return nil, nil
}

func (f *fakeQuestSource) ListQuests(ctx context.Context) ([]models.Quest, error) {
	return f.quests, nil
}

type fakeRelatedStore struct {
	replaced map[string][]models.RelatedQuest
	calls    int
}

func newFakeRelatedStore() *fakeRelatedStore {
	return &fakeRelatedStore{replaced: make(map[string][]models.RelatedQuest)}
}

func (f *fakeRelatedStore) ReplaceRelatedQuests(ctx context.Context, questID string, entries []models.RelatedQuest) error {
	f.calls++
	f.replaced[questID] = entries
	return nil
}

func TestComputeRelated_OrdersByHybridScore(t *testing.T) {
	quests := []models.Quest{
		{
			ID: "qa", Title: "Goblin ambush in the forest", Summary: "Goblins raid a caravan",
			GameSystem: "Pathfinder", Level: 3, Tags: []string{"combat", "forest"},
		},
		{
			ID: "qb", Title: "Courtly intrigue", Summary: "Nobles scheme over succession",
			GameSystem: "Shadowrun", Level: 9, Tags: []string{"social"},
		},
		{
			ID: "qc", Title: "Goblin ambush in the hills", Summary: "Goblins raid a caravan",
			GameSystem: "Pathfinder", Level: 3, Tags: []string{"combat", "hills"},
		},
	}
	store := newFakeRelatedStore()
	engine := NewEngine(&fakeQuestSource{quests: quests}, store)

	entries, err := engine.ComputeRelated(context.Background(), "qa")

	require.NoError(t, err)
	require.Len(t, entries, 2)

	// qc shares system, level, a tag and nearly all text with qa; qb shares
	// nothing.
	assert.Equal(t, "qc", entries[0].RelatedID)
	assert.Equal(t, "qb", entries[1].RelatedID)
	assert.Greater(t, entries[0].Score, entries[1].Score)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, entries, store.replaced["qa"])
}

func TestComputeRelated_AbsentQuestWritesNothing(t *testing.T) {
	store := newFakeRelatedStore()
	engine := NewEngine(&fakeQuestSource{quests: []models.Quest{{ID: "qa"}}}, store)

	entries, err := engine.ComputeRelated(context.Background(), "missing")

	require.NoError(t, err)
	assert.Nil(t, entries)
	assert.Zero(t, store.calls)
}

func TestComputeRelated_LonelyQuestClearsList(t *testing.T) {
	store := newFakeRelatedStore()
	store.replaced["qa"] = []models.RelatedQuest{{QuestID: "qa", RelatedID: "stale"}}
	engine := NewEngine(&fakeQuestSource{quests: []models.Quest{{ID: "qa", Title: "Solo"}}}, store)

	entries, err := engine.ComputeRelated(context.Background(), "qa")

	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, 1, store.calls)
	assert.Empty(t, store.replaced["qa"])
}

func TestComputeRelated_CapsAtTopN(t *testing.T) {
	quests := []models.Quest{{ID: "target", Title: "Shared words everywhere"}}
	for i := 0; i < TopN+5; i++ {
		quests = append(quests, models.Quest{
			ID:    fmt.Sprintf("peer-%02d", i),
			Title: "Shared words everywhere",
		})
	}
	store := newFakeRelatedStore()
	engine := NewEngine(&fakeQuestSource{quests: quests}, store)

	entries, err := engine.ComputeRelated(context.Background(), "target")

	require.NoError(t, err)
	assert.Len(t, entries, TopN)
}

func TestComputeRelated_EqualScoresTieBreakByID(t *testing.T) {
	quests := []models.Quest{
		{ID: "target", Title: "Identical text"},
		{ID: "peer-b", Title: "Identical text"},
		{ID: "peer-a", Title: "Identical text"},
	}
	store := newFakeRelatedStore()
	engine := NewEngine(&fakeQuestSource{quests: quests}, store)

	entries, err := engine.ComputeRelated(context.Background(), "target")

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "peer-a", entries[0].RelatedID)
	assert.Equal(t, "peer-b", entries[1].RelatedID)
}

func TestComputeRelated_Idempotent(t *testing.T) {
	quests := []models.Quest{
		{ID: "qa", Title: "Goblin ambush", GameSystem: "Pathfinder"},
		{ID: "qb", Title: "Goblin raid", GameSystem: "Pathfinder"},
		{ID: "qc", Title: "Court intrigue", GameSystem: "Shadowrun"},
	}
	store := newFakeRelatedStore()
	engine := NewEngine(&fakeQuestSource{quests: quests}, store)

	first, err := engine.ComputeRelated(context.Background(), "qa")
	require.NoError(t, err)
	second, err := engine.ComputeRelated(context.Background(), "qa")
	require.NoError(t, err)

	require.Len(t, first, len(second))
	for i := range first {
		assert.Equal(t, first[i].RelatedID, second[i].RelatedID)
		assert.Equal(t, first[i].Score, second[i].Score)
		assert.Equal(t, first[i].Rank, second[i].Rank)
	}
}
