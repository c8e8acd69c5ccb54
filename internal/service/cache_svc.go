package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/greencycle/greencycle-go/internal/metrics"
	"github.com/greencycle/greencycle-go/internal/model"
)

// DefaultLeaderboardCacheTTL bounds staleness if an invalidation is lost.
const DefaultLeaderboardCacheTTL = 30 * time.Second

const leaderboardKey = "leaderboard:all"

// CacheService provides a Redis cache-aside layer for the leaderboard.
// A CacheService with a nil client is valid and turns every call into a no-op.
type CacheService struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

// NewCacheService connects to Redis. If redisURL is empty or the connection
// fails, caching is disabled rather than failing startup.
func NewCacheService(redisURL string, ttl time.Duration, log zerolog.Logger) *CacheService {
	if ttl <= 0 {
		ttl = DefaultLeaderboardCacheTTL
	}
	disabled := &CacheService{ttl: ttl, log: log}

	if redisURL == "" {
		log.Info().Msg("redis: no URL configured, caching disabled")
		return disabled
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis: invalid URL, caching disabled")
		return disabled
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis: connection failed, caching disabled")
		_ = rdb.Close()
		return disabled
	}

	log.Info().Dur("ttl", ttl).Msg("redis: connected, leaderboard caching enabled")
	return &CacheService{rdb: rdb, ttl: ttl, log: log}
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (c *CacheService) Client() *redis.Client {
	if c == nil {
		return nil
	}
	return c.rdb
}

// GetLeaderboard returns the cached leaderboard, or ok=false on a miss.
func (c *CacheService) GetLeaderboard(ctx context.Context) (entries []model.LeaderboardEntry, ok bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}

	data, err := c.rdb.Get(ctx, leaderboardKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Msg("cache: get leaderboard failed")
		}
		metrics.CacheMisses.Inc()
		return nil, false
	}

	if err := json.Unmarshal(data, &entries); err != nil {
		c.log.Warn().Err(err).Msg("cache: corrupt leaderboard entry")
		metrics.CacheMisses.Inc()
		return nil, false
	}

	metrics.CacheHits.Inc()
	return entries, true
}

// SetLeaderboard stores the leaderboard for the configured TTL.
func (c *CacheService) SetLeaderboard(ctx context.Context, entries []model.LeaderboardEntry) {
	if c == nil || c.rdb == nil {
		return
	}
	b, err := json.Marshal(entries)
	if err != nil {
		c.log.Warn().Err(err).Msg("cache: marshal leaderboard failed")
		return
	}
	if err := c.rdb.Set(ctx, leaderboardKey, b, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Msg("cache: set leaderboard failed")
	}
}

// InvalidateLeaderboard drops the cached leaderboard (called after any score
// or membership change).
func (c *CacheService) InvalidateLeaderboard(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, leaderboardKey).Err(); err != nil {
		c.log.Warn().Err(err).Msg("cache: invalidate leaderboard failed")
	}
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
