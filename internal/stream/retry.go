package stream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	maxRetries     = 3
	initialBackoff = 500 * time.Millisecond
)

// RetryHandler retries failing message handlers with exponential backoff and
// parks messages that keep failing on a dead-letter list for manual
// inspection.
type RetryHandler struct {
	client        *redis.Client
	deadLetterKey string
}

func NewRetryHandler(client *redis.Client, deadLetterKey string) *RetryHandler {
	return &RetryHandler{
		client:        client,
		deadLetterKey: deadLetterKey,
	}
}

// RetryWithBackoff runs fn up to maxRetries+1 times. When every attempt
// fails the message is pushed to the dead-letter list and the last error is
// returned.
func (r *RetryHandler) RetryWithBackoff(ctx context.Context, fn func() error, messageID string, fields map[string]interface{}) error {
	backoff := initialBackoff

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			log.Warn().
				Str("message_id", messageID).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Err(lastErr).
				Msg("Retrying message after failure")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
	}

	if err := r.sendToDeadLetter(ctx, messageID, fields, lastErr); err != nil {
		log.Error().Err(err).Str("message_id", messageID).Msg("Failed to park message on dead-letter list")
	}
	return lastErr
}

func (r *RetryHandler) sendToDeadLetter(ctx context.Context, messageID string, fields map[string]interface{}, cause error) error {
	entry := map[string]interface{}{
		"messageId": messageID,
		"fields":    fields,
		"error":     cause.Error(),
		"failedAt":  time.Now().Format(time.RFC3339),
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	if err := r.client.LPush(ctx, r.deadLetterKey, payload).Err(); err != nil {
		return err
	}

	log.Error().
		Str("message_id", messageID).
		Str("dead_letter_key", r.deadLetterKey).
		Msg("Message exhausted retries, parked on dead-letter list")
	return nil
}
