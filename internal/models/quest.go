package models

import (
	"time"
)

// Migration statuses written back onto quest cards by the standardization
// service. The client application reads these to drive its review UI.
const (
	MigrationStatusPending     = "pending"
	MigrationStatusCompleted   = "completed"
	MigrationStatusFailed      = "failed"
	MigrationStatusNeedsReview = "needs_review"
	MigrationStatusNoMatch     = "no_match"
	MigrationStatusFlagged     = "flagged"
)

// Quest represents a quest card in the catalog. Quests are created, edited
// and deleted by the client application; this service only reads them and
// writes derived artifacts (related lists, index entries, standardization
// fields).
type Quest struct {
	ID                     string   `bson:"_id" json:"id"`
	Title                  string   `bson:"title" json:"title"`
	Summary                string   `bson:"summary" json:"summary"`
	Level                  int      `bson:"level,omitempty" json:"level,omitempty"`
	Players                int      `bson:"players,omitempty" json:"players,omitempty"`
	Duration               string   `bson:"duration,omitempty" json:"duration,omitempty"`
	Tags                   []string `bson:"tags,omitempty" json:"tags,omitempty"`
	Environment            []string `bson:"environment,omitempty" json:"environment,omitempty"`
	CommonMonsters         []string `bson:"commonMonsters,omitempty" json:"commonMonsters,omitempty"`
	GameSystem             string   `bson:"gameSystem,omitempty" json:"gameSystem,omitempty"`
	StandardizedGameSystem string   `bson:"standardizedGameSystem,omitempty" json:"standardizedGameSystem,omitempty"`
	Visible                bool     `bson:"visible" json:"visible"`

	MigrationStatus     string    `bson:"systemMigrationStatus,omitempty" json:"systemMigrationStatus,omitempty"`
	MigrationConfidence float64   `bson:"systemMigrationConfidence,omitempty" json:"systemMigrationConfidence,omitempty"`
	MigrationMatchType  string    `bson:"systemMigrationMatchType,omitempty" json:"systemMigrationMatchType,omitempty"`
	MigrationTimestamp  time.Time `bson:"systemMigrationTimestamp,omitempty" json:"systemMigrationTimestamp,omitempty"`
	SuggestedSystem     string    `bson:"suggestedSystem,omitempty" json:"suggestedSystem,omitempty"`

	CreatedAt time.Time `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// RelatedQuest is one entry of a quest's persisted top-N related list.
// The whole list for a quest is rewritten atomically on every recomputation.
type RelatedQuest struct {
	QuestID      string    `bson:"questId" json:"questId"`
	RelatedID    string    `bson:"relatedId" json:"relatedId"`
	Score        float64   `bson:"score" json:"score"`
	Rank         int       `bson:"rank" json:"rank"`
	CalculatedAt time.Time `bson:"calculatedAt" json:"calculatedAt"`
}

// IndexEntry is the derived token document used for search candidate
// retrieval. It is fully rebuilt whenever the source quest changes and
// deleted when the quest is deleted.
type IndexEntry struct {
	QuestID    string    `bson:"_id" json:"questId"`
	Title      string    `bson:"title" json:"title"`
	Summary    string    `bson:"summary" json:"summary"`
	SearchText string    `bson:"searchText" json:"searchText"`
	Tokens     []string  `bson:"tokens" json:"tokens"`
	IndexedAt  time.Time `bson:"indexedAt" json:"indexedAt"`
}

// StandardizationUpdate carries the fields the standardization service
// writes back onto a quest card.
type StandardizationUpdate struct {
	StandardizedGameSystem string
	SuggestedSystem        string
	Status                 string
	Confidence             float64
	MatchType              string
	MigrationID            string
}
