package config

import (
	"fmt"
	"time"

	"github.com/parchmentlabs/questmatch/internal/configs/env"
)

// Config holds all configuration for the application
type Config struct {
	// MongoDB
	MongoURI    string
	MongoDBName string

	// Redis
	RedisHost               string
	RedisPassword           string
	RedisStreamKey          string
	RedisConsumerGroup      string
	RedisDeadLetterKey      string
	StreamRetentionDuration time.Duration

	// JWT
	JWTSecret string
	JWTIssuer string

	// Rate Limiting
	RateLimitRPS float64

	// Concurrency
	MaxConcurrentRebuild int

	// Rebuild
	RebuildTimeout time.Duration

	// Standardization
	CleanupBatchSize int

	// Search
	SearchCacheTTL       time.Duration
	SearchCandidateLimit int

	// Logging
	LogLevel string

	// Server
	ServerPort string
}

func Load() (*Config, error) {
	cfg := &Config{}

	// MongoDB
	cfg.MongoURI = env.GetEnv("MONGO_URI", "")
	cfg.MongoDBName = env.GetEnv("MONGO_DB_NAME", "")

	// Redis
	cfg.RedisHost = env.GetEnv("REDIS_HOST", "localhost:6379")
	cfg.RedisPassword = env.GetEnv("REDIS_PASSWORD", "")
	cfg.RedisStreamKey = env.GetEnv("REDIS_STREAM_KEY", "quests:events")
	cfg.RedisConsumerGroup = env.GetEnv("REDIS_CONSUMER_GROUP", "quests:group")
	cfg.RedisDeadLetterKey = env.GetEnv("REDIS_DEAD_LETTER_KEY", "quests:dlq")
	retentionHours := env.GetEnvInt("STREAM_RETENTION_DURATION", 24)
	cfg.StreamRetentionDuration = time.Duration(retentionHours) * time.Hour

	// JWT
	cfg.JWTSecret = env.GetEnv("JWT_SECRET", "")
	cfg.JWTIssuer = env.GetEnv("JWT_ISSUER", "questmatch")

	// Rate Limiting
	cfg.RateLimitRPS = env.GetEnvFloat("RATE_LIMIT_RPS", 10.0)

	// Concurrency
	cfg.MaxConcurrentRebuild = env.GetEnvInt("MAX_CONCURRENT_REBUILD", 2)

	// Rebuild
	timeoutMinutes := env.GetEnvInt("REBUILD_TIMEOUT_MINUTES", 30)
	cfg.RebuildTimeout = time.Duration(timeoutMinutes) * time.Minute

	// Standardization
	cfg.CleanupBatchSize = env.GetEnvInt("CLEANUP_BATCH_SIZE", 100)

	// Search
	cacheTTLSeconds := env.GetEnvInt("SEARCH_CACHE_TTL_SECONDS", 30)
	cfg.SearchCacheTTL = time.Duration(cacheTTLSeconds) * time.Second
	cfg.SearchCandidateLimit = env.GetEnvInt("SEARCH_CANDIDATE_LIMIT", 200)

	// Logging
	cfg.LogLevel = env.GetEnv("LOG_LEVEL", "info")

	// Server
	cfg.ServerPort = env.GetEnv("SERVER_PORT", "8080")

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.MongoDBName == "" {
		return fmt.Errorf("MONGO_DB_NAME is required")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.MaxConcurrentRebuild <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_REBUILD must be greater than 0")
	}
	if c.CleanupBatchSize <= 0 {
		return fmt.Errorf("CLEANUP_BATCH_SIZE must be greater than 0")
	}
	if c.SearchCandidateLimit <= 0 {
		return fmt.Errorf("SEARCH_CANDIDATE_LIMIT must be greater than 0")
	}
	if c.StreamRetentionDuration <= 0 {
		return fmt.Errorf("STREAM_RETENTION_DURATION must be greater than 0")
	}
	return nil
}
