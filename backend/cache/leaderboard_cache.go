// Package cache keeps the ranked global leaderboard window in Redis.
//
// Layout: the hash "leaderboard:global" maps a window size (field) to the
// JSON-encoded entries of that window. The whole hash expires after the
// configured TTL and is dropped whenever any user's XP changes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"lumina/backend/leaderboard"
)

const keyGlobal = "leaderboard:global"

// LeaderboardCache is safe to use as a nil pointer; every method then behaves
// as a cache miss or a no-op.
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLeaderboardCache(client *redis.Client, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{client: client, ttl: ttl}
}

// Connect parses a redis:// URL, pings the server and wraps the client.
func Connect(ctx context.Context, rawURL string, ttl time.Duration) (*LeaderboardCache, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("leaderboard_cache: parse url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("leaderboard_cache: ping: %w", err)
	}
	return NewLeaderboardCache(client, ttl), nil
}

// Get returns the cached window for limit. ok is false on a miss.
func (c *LeaderboardCache) Get(ctx context.Context, limit int) (entries []leaderboard.Entry, ok bool, err error) {
	if c == nil {
		return nil, false, nil
	}
	data, err := c.client.HGet(ctx, keyGlobal, strconv.Itoa(limit)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("leaderboard_cache: get: %w", err)
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false, fmt.Errorf("leaderboard_cache: decode: %w", err)
	}
	return entries, true, nil
}

// Set stores the window for limit and refreshes the hash TTL.
func (c *LeaderboardCache) Set(ctx context.Context, limit int, entries []leaderboard.Entry) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("leaderboard_cache: encode: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, keyGlobal, strconv.Itoa(limit), data)
	pipe.Expire(ctx, keyGlobal, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("leaderboard_cache: set: %w", err)
	}
	return nil
}

// Invalidate drops every cached window.
func (c *LeaderboardCache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.client.Del(ctx, keyGlobal).Err(); err != nil {
		return fmt.Errorf("leaderboard_cache: invalidate: %w", err)
	}
	return nil
}

func (c *LeaderboardCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
