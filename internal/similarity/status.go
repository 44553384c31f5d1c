package similarity

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/parchmentlabs/questmatch/internal/infra/redis"
)

// Rebuild run steps surfaced to clients polling an admin rebuild.
type Step string

const (
	StepIdle      Step = "idle"
	StepStarted   Step = "started"
	StepCompleted Step = "completed"
	StepFailed    Step = "failed"
)

// UpdateRebuildStatus records the current step of a rebuild run in Redis
// so clients can poll progress without hitting MongoDB.
func UpdateRebuildStatus(ctx context.Context, redisClient *redis.Client, runID string, step Step) error {
	validSteps := map[Step]bool{
		StepIdle:      true,
		StepStarted:   true,
		StepCompleted: true,
		StepFailed:    true,
	}
	if !validSteps[step] {
		return fmt.Errorf("unknown step: %s", step)
	}

	rkey := "related_rebuild_status:" + runID

	err := redisClient.Set(ctx, rkey, string(step), 12*time.Hour).Err()
	if err != nil {
		log.Error().Err(err).
			Str("step", string(step)).
			Str("runId", runID).
			Msg("Failed to update rebuild status in Redis")
		return fmt.Errorf("failed to update rebuild status in Redis: %w", err)
	}

	return nil
}

// GetRebuildStatus returns the last recorded step for a run, or StepIdle
// when nothing is recorded.
func GetRebuildStatus(ctx context.Context, redisClient *redis.Client, runID string) (Step, error) {
	rkey := "related_rebuild_status:" + runID
	val, err := redisClient.Get(ctx, rkey).Result()
	if err != nil {
		if redisClient.IsNil(err) {
			return StepIdle, nil
		}
		return "", fmt.Errorf("failed to read rebuild status: %w", err)
	}
	return Step(val), nil
}
