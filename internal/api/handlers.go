package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/parchmentlabs/questmatch/internal/config"
	"github.com/parchmentlabs/questmatch/internal/infra/redis"
	"github.com/parchmentlabs/questmatch/internal/models"
	"github.com/parchmentlabs/questmatch/internal/search"
	"github.com/parchmentlabs/questmatch/internal/similarity"
	"github.com/parchmentlabs/questmatch/internal/standardize"
)

// RelatedReader serves persisted related lists.
type RelatedReader interface {
	GetRelatedQuests(ctx context.Context, questID string) ([]models.RelatedQuest, error)
}

// Handler holds dependencies for handlers
type Handler struct {
	cfg            *config.Config
	ranker         *search.Ranker
	indexer        *search.Indexer
	engine         *similarity.Engine
	workerPool     *similarity.WorkerPool
	related        RelatedReader
	standardizeSvc *standardize.Service
	redisClient    *redis.Client
	rebuildSem     chan struct{} // Semaphore for bounded concurrency
	rebuildTimeout time.Duration
}

// NewHandler creates a new handler
func NewHandler(
	cfg *config.Config,
	ranker *search.Ranker,
	indexer *search.Indexer,
	engine *similarity.Engine,
	workerPool *similarity.WorkerPool,
	related RelatedReader,
	standardizeSvc *standardize.Service,
	redisClient *redis.Client,
) *Handler {
	sem := make(chan struct{}, cfg.MaxConcurrentRebuild)

	return &Handler{
		cfg:            cfg,
		ranker:         ranker,
		indexer:        indexer,
		engine:         engine,
		workerPool:     workerPool,
		related:        related,
		standardizeSvc: standardizeSvc,
		redisClient:    redisClient,
		rebuildSem:     sem,
		rebuildTimeout: cfg.RebuildTimeout,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}

// Search ranks the catalog for a free-text query plus filters.
func (h *Handler) Search(c *gin.Context) {
	var req models.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	result, err := h.ranker.Search(c.Request.Context(), req)
	if err != nil {
		log.Error().Err(err).Str("query", req.Query).Msg("Search failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Search failed",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRelated returns the persisted related list for a quest.
func (h *Handler) GetRelated(c *gin.Context) {
	questID := c.Param("id")
	if questID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Quest id is required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	related, err := h.related.GetRelatedQuests(c.Request.Context(), questID)
	if err != nil {
		log.Error().Err(err).Str("questId", questID).Msg("Failed to load related quests")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to load related quests",
			Code:  "INTERNAL_ERROR",
		})
		return
	}
	if related == nil {
		related = []models.RelatedQuest{}
	}

	c.JSON(http.StatusOK, gin.H{
		"questId": questID,
		"related": related,
	})
}

// RecomputeRelated recomputes one quest's related list synchronously.
func (h *Handler) RecomputeRelated(c *gin.Context) {
	questID := c.Param("id")
	if questID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Quest id is required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	entries, err := h.engine.ComputeRelated(c.Request.Context(), questID)
	if err != nil {
		log.Error().Err(err).Str("questId", questID).Msg("Related recomputation failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to recompute related quests",
			Code:  "INTERNAL_ERROR",
		})
		return
	}
	if entries == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "Quest not found",
			Code:  "QUEST_NOT_FOUND",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"questId": questID,
		"related": entries,
	})
}

// RebuildRelated kicks off a full-catalog related-list rebuild. Returns 202
// immediately; clients poll the run status.
func (h *Handler) RebuildRelated(c *gin.Context) {
	ctx := c.Request.Context()

	// Acquire semaphore (bounded concurrency)
	select {
	case h.rebuildSem <- struct{}{}:
	case <-ctx.Done():
		c.JSON(http.StatusRequestTimeout, ErrorResponse{
			Error: "Request cancelled",
			Code:  "REQUEST_TIMEOUT",
		})
		return
	}

	runID := uuid.New().String()

	if err := similarity.UpdateRebuildStatus(ctx, h.redisClient, runID, similarity.StepStarted); err != nil {
		log.Warn().Err(err).Str("runId", runID).Msg("Failed to update started status")
	}

	// Return 202 Accepted immediately
	c.JSON(http.StatusAccepted, models.RebuildResponse{
		RunID:  runID,
		Status: string(similarity.StepStarted),
	})

	// Process asynchronously
	go h.processRebuild(runID)
}

// processRebuild runs the rebuild asynchronously
func (h *Handler) processRebuild(runID string) {
	defer func() { <-h.rebuildSem }() // Release semaphore

	ctx, cancel := context.WithTimeout(context.Background(), h.rebuildTimeout)
	defer cancel()

	result, err := similarity.RebuildAll(ctx, h.engine, h.workerPool)
	if err != nil {
		log.Error().Err(err).Str("runId", runID).Msg("Catalog rebuild failed")
		if serr := similarity.UpdateRebuildStatus(ctx, h.redisClient, runID, similarity.StepFailed); serr != nil {
			log.Warn().Err(serr).Str("runId", runID).Msg("Failed to update failed status")
		}
		return
	}

	if err := similarity.UpdateRebuildStatus(ctx, h.redisClient, runID, similarity.StepCompleted); err != nil {
		log.Warn().Err(err).Str("runId", runID).Msg("Failed to update completed status")
	}

	log.Info().
		Str("runId", runID).
		Int("total", result.Total).
		Int("failed", result.Failed).
		Msg("Catalog rebuild finished")
}

// RebuildStatus reports the recorded step of a rebuild run.
func (h *Handler) RebuildStatus(c *gin.Context) {
	runID := c.Param("runId")

	step, err := similarity.GetRebuildStatus(c.Request.Context(), h.redisClient, runID)
	if err != nil {
		log.Error().Err(err).Str("runId", runID).Msg("Failed to read rebuild status")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to read rebuild status",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, models.RebuildResponse{
		RunID:  runID,
		Status: string(step),
	})
}

// BackfillIndex reindexes the whole catalog.
func (h *Handler) BackfillIndex(c *gin.Context) {
	processed, err := h.indexer.BackfillAll(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Index backfill failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Index backfill failed",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"processed": processed,
	})
}

// StandardizeCleanup runs a batch standardization pass over unprocessed
// quests.
func (h *Handler) StandardizeCleanup(c *gin.Context) {
	ml, err := h.standardizeSvc.RunCleanup(c.Request.Context(), h.cfg.CleanupBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("Standardization cleanup failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Standardization cleanup failed",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, ml)
}

// ResolveSystem dry-runs name resolution against the canonical systems.
func (h *Handler) ResolveSystem(c *gin.Context) {
	var req models.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "gameSystem is required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	match, err := h.standardizeSvc.ResolveName(c.Request.Context(), req.GameSystem)
	if err != nil {
		log.Error().Err(err).Str("gameSystem", req.GameSystem).Msg("Name resolution failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Name resolution failed",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"gameSystem": req.GameSystem,
		"match":      match,
	})
}

// SystemFeedback records an incorrect-mapping report and triggers alias
// learning.
func (h *Handler) SystemFeedback(c *gin.Context) {
	var req models.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "questId, originalSystem and suggestedSystem are required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	id, err := h.standardizeSvc.ReportIncorrectMapping(c.Request.Context(), req)
	if err != nil {
		log.Error().Err(err).Str("questId", req.QuestID).Msg("Failed to record feedback")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to record feedback",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"feedbackId": id,
		"status":     "pending",
	})
}

// StandardizationStats summarizes migration coverage.
func (h *Handler) StandardizationStats(c *gin.Context) {
	stats, err := h.standardizeSvc.Stats(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute standardization stats")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to compute standardization stats",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}
