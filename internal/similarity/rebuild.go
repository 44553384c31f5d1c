package similarity

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// RebuildResult summarizes a full-catalog rebuild run.
type RebuildResult struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// rebuildJob recomputes one quest's related list.
type rebuildJob struct {
	engine  *Engine
	questID string
	errs    chan<- error
}

func (j *rebuildJob) Execute(ctx context.Context) error {
	_, err := j.engine.ComputeRelated(ctx, j.questID)
	select {
	case j.errs <- err:
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}

// RebuildAll recomputes the related list of every quest in the catalog.
// Each quest is an independent invocation of the same per-quest routine;
// there is no ordering between quests, so they fan out over the pool.
func RebuildAll(ctx context.Context, engine *Engine, pool *WorkerPool) (*RebuildResult, error) {
	quests, err := engine.quests.ListQuests(ctx)
	if err != nil {
		return nil, err
	}

	result := &RebuildResult{Total: len(quests)}
	if len(quests) == 0 {
		return result, nil
	}

	errs := make(chan error, len(quests))
	var submitted int
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range quests {
			job := &rebuildJob{engine: engine, questID: quests[i].ID, errs: errs}
			if err := pool.Submit(job); err != nil {
				log.Error().Err(err).Str("questId", quests[i].ID).Msg("Failed to submit rebuild job")
				errs <- err
			}
		}
	}()

	for submitted < len(quests) {
		select {
		case <-ctx.Done():
			wg.Wait()
			return result, ctx.Err()
		case err := <-errs:
			submitted++
			if err != nil {
				result.Failed++
			} else {
				result.Succeeded++
			}
		}
	}
	wg.Wait()

	log.Info().
		Int("total", result.Total).
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Msg("Full catalog rebuild completed")

	return result, nil
}
