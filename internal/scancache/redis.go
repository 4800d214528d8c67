package scancache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"zombie-scanner/internal/domain"
)

// KeyPrefix namespaces scan cache keys.
const KeyPrefix = "zombie:scan"

// Redis is a shared cache tier backed by Redis. Expiry is delegated to Redis
// (EX = TTL); entries are still validated on read.
type Redis struct {
	client *redis.Client
	cfg    Config

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// NewRedisClient parses url and verifies connectivity.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewRedis creates a Redis-backed cache.
func NewRedis(client *redis.Client, cfg Config) *Redis {
	return &Redis{client: client, cfg: cfg.withDefaults()}
}

// Key returns the Redis key for address on the cache's network.
func (r *Redis) Key(address string) string {
	return fmt.Sprintf("%s:%s:%s", KeyPrefix, r.cfg.Network, address)
}

// Get returns cached assets for address. Undecodable or mismatched entries are deleted.
func (r *Redis) Get(ctx context.Context, address string) ([]domain.Asset, bool, error) {
	key := r.Key(address)

	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		r.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil || !entry.valid(r.cfg.Network, r.cfg.TTL, r.cfg.Now()) {
		r.misses.Add(1)
		r.evictions.Add(1)
		if delErr := r.client.Del(ctx, key).Err(); delErr != nil {
			return nil, false, fmt.Errorf("redis del %s: %w", key, delErr)
		}
		return nil, false, nil
	}

	r.hits.Add(1)
	return cloneAssets(entry.Assets), true, nil
}

// Put stores assets for address with EX = TTL.
func (r *Redis) Put(ctx context.Context, address string, assets []domain.Asset) error {
	entry := Entry{
		Assets:     cloneAssets(assets),
		CapturedAt: r.cfg.Now().UnixMilli(),
		Network:    r.cfg.Network,
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	key := r.Key(address)
	if err := r.client.Set(ctx, key, raw, r.cfg.TTL).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes the entry for address.
func (r *Redis) Delete(ctx context.Context, address string) error {
	key := r.Key(address)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Sweep is a no-op: Redis expires keys itself.
func (r *Redis) Sweep(context.Context) (int, error) {
	return 0, nil
}

// Stats returns counters observed by this process.
func (r *Redis) Stats() Stats {
	return Stats{
		Hits:      r.hits.Load(),
		Misses:    r.misses.Load(),
		Evictions: r.evictions.Load(),
	}
}

var _ Cache = (*Redis)(nil)
