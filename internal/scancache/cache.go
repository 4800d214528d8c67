// Package scancache memoizes scan results per wallet address.
//
// An entry is served only while its network matches the cache's network and
// its age does not exceed the TTL. Stale or mismatched entries are evicted on
// read. Entries are written only after successful scans.
package scancache

import (
	"context"
	"time"

	"zombie-scanner/internal/domain"
)

// Default cache settings.
const (
	DefaultTTL      = 5 * time.Minute
	DefaultCapacity = 10_000
)

// Cache is an address-keyed scan result cache.
type Cache interface {
	// Get returns cached assets if the entry is present, fresh and on the
	// configured network. Stale entries are evicted and reported as absent.
	Get(ctx context.Context, address string) ([]domain.Asset, bool, error)

	// Put overwrites the entry with capturedAt = now and the configured network.
	Put(ctx context.Context, address string, assets []domain.Asset) error

	// Delete removes the entry, if any.
	Delete(ctx context.Context, address string) error

	// Sweep removes expired entries and returns how many were removed.
	Sweep(ctx context.Context) (int, error)

	// Stats returns cumulative counters.
	Stats() Stats
}

// Config configures a cache.
type Config struct {
	Network  domain.Network
	TTL      time.Duration
	Capacity int // memory only; <= 0 uses DefaultCapacity

	// Now overrides the clock, for tests.
	Now func() time.Time
}

func (c Config) withDefaults() Config {
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
	if c.Capacity <= 0 {
		c.Capacity = DefaultCapacity
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Entry is one cached scan result.
type Entry struct {
	Assets     []domain.Asset `json:"assets"`
	CapturedAt int64          `json:"captured_at"` // Unix ms
	Network    domain.Network `json:"network"`
}

// valid reports whether e may be served on network at now.
func (e *Entry) valid(network domain.Network, ttl time.Duration, now time.Time) bool {
	if e.Network != network {
		return false
	}
	return now.UnixMilli()-e.CapturedAt <= ttl.Milliseconds()
}

// Stats are cumulative cache counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
}

func cloneAssets(assets []domain.Asset) []domain.Asset {
	return domain.CloneAssets(assets)
}
