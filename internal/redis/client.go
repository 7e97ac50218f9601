// Package redis wraps the go-redis client with the operations the
// relay router needs: active-rule caching and sliding-window rate
// limit counters. Redis is optional; callers must tolerate a nil
// client.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"relay-router/internal/models"
)

type Client struct {
	rdb    *redis.Client
	config *Config
}

type Config struct {
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	PoolSize int    `json:"pool_size"`
}

func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("redis config is required")
	}

	if config.Address == "" {
		config.Address = "localhost:6379"
	}
	if config.PoolSize == 0 {
		config.PoolSize = 10
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     config.Address,
		Password: config.Password,
		DB:       config.DB,
		PoolSize: config.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{
		rdb:    rdb,
		config: config,
	}, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

func (c *Client) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.rdb.Ping(ctx).Err()
}

func ruleCacheKey(userID string) string {
	return fmt.Sprintf("rule:active:%s", userID)
}

// cachedRule distinguishes "no active rule" (cached absence) from a
// cache miss.
type cachedRule struct {
	Rule   *models.Rule `json:"rule,omitempty"`
	Absent bool         `json:"absent,omitempty"`
}

// GetActiveRule returns the cached active rule for a user. The second
// return value reports whether the cache held an answer at all; a
// (nil, true, nil) result means "no active rule" was cached.
func (c *Client) GetActiveRule(ctx context.Context, userID string) (*models.Rule, bool, error) {
	data, err := c.rdb.Get(ctx, ruleCacheKey(userID)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read rule cache: %w", err)
	}

	var entry cachedRule
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached rule: %w", err)
	}
	if entry.Absent {
		return nil, true, nil
	}
	return entry.Rule, true, nil
}

// SetActiveRule caches the active rule (or, with a nil rule, its
// absence) for a user with the given TTL.
func (c *Client) SetActiveRule(ctx context.Context, userID string, rule *models.Rule, ttl time.Duration) error {
	entry := cachedRule{Rule: rule, Absent: rule == nil}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode rule for cache: %w", err)
	}
	return c.rdb.Set(ctx, ruleCacheKey(userID), data, ttl).Err()
}

// InvalidateActiveRule drops the cached entry for a user. Called after
// any rule mutation so self-healed deactivations are not served stale.
func (c *Client) InvalidateActiveRule(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, ruleCacheKey(userID)).Err()
}

// CheckRateLimit implements a sliding window counter over a sorted set.
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, int, error) {
	pipe := c.rdb.TxPipeline()

	now := time.Now().UnixNano()
	windowStart := now - window.Nanoseconds()

	// Remove old entries
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart))

	// Count current entries
	countCmd := pipe.ZCard(ctx, key)

	// Add current request
	pipe.ZAdd(ctx, key, &redis.Z{Score: float64(now), Member: now})

	// Keep data a bit longer than the window
	pipe.Expire(ctx, key, window*2)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return false, 0, fmt.Errorf("failed to check rate limit: %w", err)
	}

	count := int(countCmd.Val())
	allowed := count < limit

	return allowed, count, nil
}
