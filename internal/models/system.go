package models

import (
	"time"
)

// Match types produced by the game system name resolver, ordered from most
// to least confident.
const (
	MatchTypeExact           = "exact"
	MatchTypeCaseInsensitive = "case_insensitive"
	MatchTypeAlias           = "alias"
	MatchTypeAcronym         = "acronym"
	MatchTypeSubstring       = "substring"
)

// GameSystem is a canonical game system record: the authoritative name plus
// the set of known alias spellings. Managed externally; the resolver may
// append verified aliases.
type GameSystem struct {
	ID           string    `bson:"_id" json:"id"`
	StandardName string    `bson:"standardName" json:"standardName"`
	Aliases      []string  `bson:"aliases,omitempty" json:"aliases,omitempty"`
	UpdatedAt    time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// MatchResult is the outcome of resolving a free-text system name against
// the canonical reference set. Absence of a match is a nil *MatchResult,
// not an error.
type MatchResult struct {
	SystemID     string  `json:"systemId"`
	StandardName string  `json:"standardName"`
	MatchType    string  `json:"matchType"`
	Confidence   float64 `json:"confidence"`
}

// MappingFeedback is a user report that a quest's standardized system is
// wrong, together with the system the user believes is correct.
type MappingFeedback struct {
	ID              string    `bson:"_id,omitempty" json:"id,omitempty"`
	QuestID         string    `bson:"questId" json:"questId"`
	OriginalSystem  string    `bson:"originalSystem" json:"originalSystem"`
	SuggestedSystem string    `bson:"suggestedSystem" json:"suggestedSystem"`
	UserID          string    `bson:"userId" json:"userId"`
	Status          string    `bson:"status" json:"status"` // pending, processed, needs_admin_review, error
	Note            string    `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	ProcessedAt     time.Time `bson:"processedAt,omitempty" json:"processedAt,omitempty"`
}

// MigrationLog tracks one batch standardization run.
type MigrationLog struct {
	ID          string    `bson:"_id" json:"id"`
	Type        string    `bson:"type" json:"type"` // scheduled, manual
	Status      string    `bson:"status" json:"status"`
	Processed   int       `bson:"processed" json:"processed"`
	Successful  int       `bson:"successful" json:"successful"`
	NeedsReview int       `bson:"needsReview" json:"needsReview"`
	NoMatch     int       `bson:"noMatch" json:"noMatch"`
	StartedAt   time.Time `bson:"startedAt" json:"startedAt"`
	CompletedAt time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	Error       string    `bson:"error,omitempty" json:"error,omitempty"`
}

// StandardizationStats summarizes migration coverage across the catalog.
type StandardizationStats struct {
	Standardized int     `json:"standardized"`
	Pending      int     `json:"pending"`
	Failed       int     `json:"failed"`
	NeedsReview  int     `json:"needsReview"`
	NoMatch      int     `json:"noMatch"`
	Flagged      int     `json:"flagged"`
	Unprocessed  int     `json:"unprocessed"`
	Total        int     `json:"total"`
	Coverage     float64 `json:"coverage"`
}
