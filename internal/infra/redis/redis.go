package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Client wraps the go-redis client so callers depend on one import.
type Client struct {
	*redis.Client
}

func NewClient(ctx context.Context, addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info().Str("addr", addr).Msg("Connected to Redis")
	return &Client{Client: rdb}, nil
}

// IsNil reports whether err is the redis nil-reply sentinel.
func (c *Client) IsNil(err error) bool {
	return err == redis.Nil
}

func (c *Client) Close() error {
	return c.Client.Close()
}
