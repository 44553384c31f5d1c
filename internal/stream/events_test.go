package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parchmentlabs/questmatch/internal/models"
)

func TestParseQuestEvent_Created(t *testing.T) {
	ev, err := ParseQuestEvent(&StreamMessage{
		ID: "1-0",
		Fields: map[string]string{
			"event":   models.EventQuestCreated,
			"questId": "q1",
		},
	})

	require.NoError(t, err)
	assert.Equal(t, models.EventQuestCreated, ev.Type)
	assert.Equal(t, "q1", ev.QuestID)
	assert.Empty(t, ev.PreviousGameSystem)
}

func TestParseQuestEvent_UpdatedCarriesPreviousSystem(t *testing.T) {
	ev, err := ParseQuestEvent(&StreamMessage{
		ID: "2-0",
		Fields: map[string]string{
			"event":              models.EventQuestUpdated,
			"questId":            "q1",
			"previousGameSystem": "dnd 5e",
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "dnd 5e", ev.PreviousGameSystem)
}

func TestParseQuestEvent_MissingEventField(t *testing.T) {
	_, err := ParseQuestEvent(&StreamMessage{
		ID:     "3-0",
		Fields: map[string]string{"questId": "q1"},
	})

	assert.Error(t, err)
}

func TestParseQuestEvent_UnknownEventType(t *testing.T) {
	_, err := ParseQuestEvent(&StreamMessage{
		ID: "4-0",
		Fields: map[string]string{
			"event":   "quest_archived",
			"questId": "q1",
		},
	})

	assert.Error(t, err)
}

func TestParseQuestEvent_MissingQuestID(t *testing.T) {
	_, err := ParseQuestEvent(&StreamMessage{
		ID:     "5-0",
		Fields: map[string]string{"event": models.EventQuestDeleted},
	})

	assert.Error(t, err)
}
