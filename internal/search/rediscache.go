package search

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/parchmentlabs/questmatch/internal/infra/redis"
	"github.com/parchmentlabs/questmatch/internal/models"
)

const redisCachePrefix = "search_results:"

// RedisCache shares ranked hit lists across instances via Redis. Failures
// degrade to cache misses; the cache is never a correctness dependency.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(key string) ([]models.SearchHit, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	raw, err := c.client.Get(ctx, redisCachePrefix+key).Result()
	if err != nil {
		if !c.client.IsNil(err) {
			log.Debug().Err(err).Msg("Redis cache read failed")
		}
		return nil, false
	}

	var hits []models.SearchHit
	if err := json.Unmarshal([]byte(raw), &hits); err != nil {
		log.Debug().Err(err).Msg("Redis cache entry undecodable, treating as miss")
		return nil, false
	}
	return hits, true
}

func (c *RedisCache) Set(key string, hits []models.SearchHit) {
	raw, err := json.Marshal(hits)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to encode hits for cache")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.client.Set(ctx, redisCachePrefix+key, raw, c.ttl).Err(); err != nil {
		log.Debug().Err(err).Msg("Redis cache write failed")
	}
}
