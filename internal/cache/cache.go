// Package cache provides an in-memory TTL + LRU cache for compiled
// chapters. The recency ordering and capacity eviction are delegated
// to hashicorp's simplelru; this package layers per-entry access
// metadata, lazy TTL expiry, and a periodic sweep on top.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/jackzampolin/lectern/internal/types"
)

const (
	DefaultTTL           = 24 * time.Hour
	DefaultMaxEntries    = 256
	DefaultSweepInterval = time.Hour
)

// entry is the stored value plus its access metadata.
type entry struct {
	payload        *types.ComprehensiveChapter
	createdAt      time.Time
	lastAccessedAt time.Time
	expiresAt      time.Time
	accessCount    int64
	sizeBytes      int
}

// ChapterCache maps a normalized request fingerprint to a compiled
// chapter. Operations never fail the caller: a miss or an eviction is
// a normal path.
type ChapterCache struct {
	mu     sync.Mutex
	lru    *simplelru.LRU[string, *entry]
	ttl    time.Duration
	sweep  time.Duration
	logger *slog.Logger

	// now is swappable for tests.
	now func() time.Time

	hits      int64
	misses    int64
	evictions int64
}

// Config configures a new ChapterCache.
type Config struct {
	TTL           time.Duration
	MaxEntries    int
	SweepInterval time.Duration
	Logger        *slog.Logger
}

// New creates a new ChapterCache.
func New(cfg Config) *ChapterCache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &ChapterCache{
		ttl:    cfg.TTL,
		sweep:  cfg.SweepInterval,
		logger: logger.With("component", "cache"),
		now:    time.Now,
	}

	lru, err := simplelru.NewLRU[string, *entry](cfg.MaxEntries, nil)
	if err != nil {
		// Only possible with a non-positive size, which is guarded above.
		panic(err)
	}
	c.lru = lru
	return c
}

// Get returns the cached chapter for the request, or nil if absent.
// An expired entry is removed as a side effect and reported as a miss.
// On a hit the entry's access metadata is refreshed.
func (c *ChapterCache) Get(req types.Request) *types.ComprehensiveChapter {
	key := req.CacheKey()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(key)
	if !ok {
		c.misses++
		return nil
	}

	now := c.now()
	if now.After(e.expiresAt) {
		c.lru.Remove(key)
		c.misses++
		c.logger.Debug("entry expired on read", "key", key)
		return nil
	}

	e.lastAccessedAt = now
	e.accessCount++
	c.hits++
	return e.payload
}

// Set stores the chapter under the request's key. If the cache is at
// capacity and the key is new, the least recently accessed entry is
// evicted first (handled by the underlying LRU).
func (c *ChapterCache) Set(req types.Request, payload *types.ComprehensiveChapter) {
	key := req.CacheKey()
	now := c.now()

	size := 0
	if b, err := json.Marshal(payload); err == nil {
		size = len(b)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := c.lru.Add(key, &entry{
		payload:        payload,
		createdAt:      now,
		lastAccessedAt: now,
		expiresAt:      now.Add(c.ttl),
		sizeBytes:      size,
	})
	if evicted {
		c.evictions++
		c.logger.Debug("oldest entry evicted at capacity", "inserted", key)
	}
}

// Remove deletes the entry for the request. Returns true if an entry
// was present.
func (c *ChapterCache) Remove(req types.Request) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Remove(req.CacheKey())
}

// Clear removes all entries.
func (c *ChapterCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

// Len returns the current entry count.
func (c *ChapterCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats reports cache contents and hit/miss counters.
type Stats struct {
	Count           int    `json:"count"`
	ApproxSizeBytes int    `json:"approx_size_bytes"`
	OldestKey       string `json:"oldest_key,omitempty"`
	NewestKey       string `json:"newest_key,omitempty"`
	MostAccessedKey string `json:"most_accessed_key,omitempty"`
	Hits            int64  `json:"hits"`
	Misses          int64  `json:"misses"`
	// Evictions counts capacity-triggered removals only; explicit
	// removes and TTL expiries are not included.
	Evictions int64 `json:"evictions"`
}

// Stats returns a snapshot of the cache state.
func (c *ChapterCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Stats{
		Count:     c.lru.Len(),
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}

	// Keys() is ordered oldest to newest by recency.
	keys := c.lru.Keys()
	if len(keys) > 0 {
		st.OldestKey = keys[0]
		st.NewestKey = keys[len(keys)-1]
	}

	var maxAccess int64 = -1
	for _, k := range keys {
		e, ok := c.lru.Peek(k)
		if !ok {
			continue
		}
		st.ApproxSizeBytes += e.sizeBytes
		if e.accessCount > maxAccess {
			maxAccess = e.accessCount
			st.MostAccessedKey = k
		}
	}
	return st
}

// Run sweeps expired entries on a ticker until the context is
// cancelled. Call in a goroutine.
func (c *ChapterCache) Run(ctx context.Context) {
	ticker := time.NewTicker(c.sweep)
	defer ticker.Stop()

	c.logger.Info("cache sweep started", "interval", c.sweep)
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("cache sweep stopping")
			return
		case <-ticker.C:
			removed := c.RemoveExpired()
			if removed > 0 {
				c.logger.Info("cache sweep removed expired entries", "count", removed)
			}
		}
	}
}

// RemoveExpired removes every entry whose expiry has passed,
// independent of reads. Returns the number removed.
func (c *ChapterCache) RemoveExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for _, k := range c.lru.Keys() {
		e, ok := c.lru.Peek(k)
		if !ok {
			continue
		}
		if now.After(e.expiresAt) {
			c.lru.Remove(k)
			removed++
		}
	}
	return removed
}
