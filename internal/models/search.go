package models

// SearchRequest is a search call: free text plus structured equality
// filters (a filter value may be a scalar or a list of acceptable values).
type SearchRequest struct {
	Query    string                 `json:"query"`
	Filters  map[string]interface{} `json:"filters"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"pageSize"`
}

// SearchHit is one ranked search result.
type SearchHit struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// SearchResult is a page of ranked hits.
type SearchResult struct {
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
	Hits     []SearchHit `json:"hits"`
}

// Quest change event types consumed from the Redis stream.
const (
	EventQuestCreated = "quest_created"
	EventQuestUpdated = "quest_updated"
	EventQuestDeleted = "quest_deleted"
)

// QuestEvent is a catalog change notification published by the client
// application. PreviousGameSystem is set on updates so the consumer can
// tell whether re-standardization is needed.
type QuestEvent struct {
	Type               string `json:"event"`
	QuestID            string `json:"questId"`
	PreviousGameSystem string `json:"previousGameSystem,omitempty"`
}

// ResolveRequest asks for a dry-run resolution of a free-text system name.
type ResolveRequest struct {
	GameSystem string `json:"gameSystem" binding:"required"`
}

// FeedbackRequest reports an incorrect game system mapping.
type FeedbackRequest struct {
	QuestID         string `json:"questId" binding:"required"`
	OriginalSystem  string `json:"originalSystem" binding:"required"`
	SuggestedSystem string `json:"suggestedSystem" binding:"required"`
	UserID          string `json:"userId"`
}

// RebuildResponse acknowledges an accepted admin rebuild run.
type RebuildResponse struct {
	RunID  string `json:"runId"`
	Status string `json:"status"`
}
