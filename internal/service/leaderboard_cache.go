package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"mirrorbrain/internal/domain"
)

// LeaderboardCache cachea el resultado del leaderboard por limite pedido.
type LeaderboardCache interface {
	Get(ctx context.Context, limit int) ([]domain.Brain, bool)
	Set(ctx context.Context, limit int, brains []domain.Brain)
	Invalidate(ctx context.Context)
}

type memoryLeaderboardCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[int]memoryLeaderboardEntry
}

type memoryLeaderboardEntry struct {
	brains    []domain.Brain
	expiresAt time.Time
}

// NewMemoryLeaderboardCache crea un cache en memoria con TTL.
func NewMemoryLeaderboardCache(ttl time.Duration) LeaderboardCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &memoryLeaderboardCache{
		ttl:     ttl,
		entries: make(map[int]memoryLeaderboardEntry),
	}
}

func (c *memoryLeaderboardCache) Get(_ context.Context, limit int) ([]domain.Brain, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[limit]
	if !ok {
		return nil, false
	}
	if time.Now().UTC().After(entry.expiresAt) {
		delete(c.entries, limit)
		return nil, false
	}
	brains := make([]domain.Brain, len(entry.brains))
	copy(brains, entry.brains)
	return brains, true
}

func (c *memoryLeaderboardCache) Set(_ context.Context, limit int, brains []domain.Brain) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored := make([]domain.Brain, len(brains))
	copy(stored, brains)
	c.entries[limit] = memoryLeaderboardEntry{
		brains:    stored,
		expiresAt: time.Now().UTC().Add(c.ttl),
	}
}

func (c *memoryLeaderboardCache) Invalidate(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[int]memoryLeaderboardEntry)
}

type redisLeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisLeaderboardCache crea un cache respaldado por redis.
func NewRedisLeaderboardCache(client *redis.Client, ttl time.Duration) LeaderboardCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &redisLeaderboardCache{
		client: client,
		ttl:    ttl,
		prefix: "brains:leaderboard:",
	}
}

func (c *redisLeaderboardCache) key(limit int) string {
	return fmt.Sprintf("%s%d", c.prefix, limit)
}

func (c *redisLeaderboardCache) Get(ctx context.Context, limit int) ([]domain.Brain, bool) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	payload, err := c.client.Get(ctx, c.key(limit)).Bytes()
	if err != nil {
		return nil, false
	}
	var brains []domain.Brain
	if err := json.Unmarshal(payload, &brains); err != nil {
		return nil, false
	}
	return brains, true
}

func (c *redisLeaderboardCache) Set(ctx context.Context, limit int, brains []domain.Brain) {
	payload, err := json.Marshal(brains)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	// Cache caido no es error fatal; se ignora.
	_ = c.client.Set(ctx, c.key(limit), payload, c.ttl).Err()
}

func (c *redisLeaderboardCache) Invalidate(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		_ = c.client.Del(ctx, iter.Val()).Err()
	}
}
