package stream

import (
	"fmt"

	"github.com/parchmentlabs/questmatch/internal/models"
)

// StreamMessage is one raw entry read from the quest event stream.
type StreamMessage struct {
	ID     string
	Fields map[string]string
}

// ParseQuestEvent validates and decodes a stream entry into a quest event.
// Producers write flat string fields: event, questId and, for updates,
// previousGameSystem.
func ParseQuestEvent(msg *StreamMessage) (*models.QuestEvent, error) {
	eventType := msg.Fields["event"]
	switch eventType {
	case models.EventQuestCreated, models.EventQuestUpdated, models.EventQuestDeleted:
	case "":
		return nil, fmt.Errorf("message %s missing event field", msg.ID)
	default:
		return nil, fmt.Errorf("message %s has unknown event type %q", msg.ID, eventType)
	}

	questID := msg.Fields["questId"]
	if questID == "" {
		return nil, fmt.Errorf("message %s missing questId field", msg.ID)
	}

	return &models.QuestEvent{
		Type:               eventType,
		QuestID:            questID,
		PreviousGameSystem: msg.Fields["previousGameSystem"],
	}, nil
}
