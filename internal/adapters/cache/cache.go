// Package cache provides a redis-backed cache for leaderboard reads.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/abelbejiga/cradle/internal/domain/model"
	"github.com/abelbejiga/cradle/pkg/metrics"
)

const defaultTTL = 30 * time.Second

// ErrMiss reports that no cached board exists for the requested key.
var ErrMiss = errors.New("leaderboard cache miss")

// Client is the subset of the redis client the cache needs. Narrowed
// for testability.
type Client interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Option applies a configuration option to the Board cache.
type Option func(*Board)

// WithTTL sets how long a cached board stays fresh.
func WithTTL(ttl time.Duration) Option {
	return func(b *Board) {
		if ttl > 0 {
			b.ttl = ttl
		}
	}
}

// Board caches rendered leaderboards keyed by their minimum-score
// filter. Awards invalidate the whole keyspace via Invalidate.
type Board struct {
	rds Client
	ttl time.Duration

	mu sync.Mutex
	// keys tracks every key written so Invalidate can drop them all
	// without a SCAN round-trip.
	keys map[string]struct{}
}

// NewBoard creates a leaderboard cache on top of a redis client.
func NewBoard(rds Client, opts ...Option) *Board {
	b := &Board{
		rds:  rds,
		ttl:  defaultTTL,
		keys: make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Get returns the cached board for minScore, or ErrMiss.
func (b *Board) Get(ctx context.Context, minScore int) ([]model.LeaderboardEntry, error) {
	raw, err := b.rds.Get(ctx, key(minScore)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheMiss()
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("get cached leaderboard: %w", err)
	}

	var entries []model.LeaderboardEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		// A corrupt payload is as good as a miss.
		metrics.RecordCacheMiss()
		return nil, ErrMiss
	}
	metrics.RecordCacheHit()
	return entries, nil
}

// Put stores a rendered board for minScore.
func (b *Board) Put(ctx context.Context, minScore int, entries []model.LeaderboardEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal leaderboard: %w", err)
	}

	k := key(minScore)
	if err := b.rds.Set(ctx, k, raw, b.ttl).Err(); err != nil {
		return fmt.Errorf("cache leaderboard: %w", err)
	}
	b.mu.Lock()
	b.keys[k] = struct{}{}
	b.mu.Unlock()
	return nil
}

// Invalidate drops every cached board. Called after each award so stale
// rankings never outlive the TTL plus one write.
func (b *Board) Invalidate(ctx context.Context) error {
	b.mu.Lock()
	keys := make([]string, 0, len(b.keys))
	for k := range b.keys {
		keys = append(keys, k)
	}
	b.keys = make(map[string]struct{})
	b.mu.Unlock()

	if len(keys) == 0 {
		return nil
	}
	if err := b.rds.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate leaderboard cache: %w", err)
	}
	return nil
}

func key(minScore int) string {
	return fmt.Sprintf("cradle:leaderboard:%d", minScore)
}
