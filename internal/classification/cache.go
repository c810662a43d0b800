package classification

import (
	"context"
	"errors"
	"sync"
	"time"

	"docanalysis-backend/internal/shared/metrics"
	"docanalysis-backend/internal/shared/telemetry"
	"docanalysis-backend/internal/shared/util"
)

const (
	DefaultCacheTTL = 24 * time.Hour
	cacheKeyPrefix  = "classification:"
	// memorySweepInterval bounds how often Set scans for expired entries.
	memorySweepInterval = 10 * time.Minute
)

// ErrCacheMiss is returned by Cache.Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores classification results by key.
type Cache interface {
	Get(ctx context.Context, key string) (Result, error)
	Set(ctx context.Context, key string, res Result, ttl time.Duration) error
}

// CacheKey derives the cache key of a document from its content hash, or from
// its text when no hash is known.
func CacheKey(in Input) string {
	hash := in.ContentHash
	if hash == "" {
		hash = util.ContentHash([]byte(in.Text))
	}
	return cacheKeyPrefix + hash
}

// CachedClassifier memoizes another classifier. Cache failures are logged and
// bypassed.
type CachedClassifier struct {
	Next  Classifier
	Cache Cache
	TTL   time.Duration
}

func NewCachedClassifier(next Classifier, cache Cache, ttl time.Duration) *CachedClassifier {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedClassifier{Next: next, Cache: cache, TTL: ttl}
}

func (c *CachedClassifier) Classify(ctx context.Context, in Input) (Result, error) {
	key := CacheKey(in)

	cached, err := c.Cache.Get(ctx, key)
	switch {
	case err == nil:
		metrics.ObserveCache("hit")
		cached.Source = SourceCache
		return cached, nil
	case errors.Is(err, ErrCacheMiss):
		metrics.ObserveCache("miss")
	default:
		metrics.ObserveCache("error")
		telemetry.Warn("classification.cache_read_failed", map[string]any{"key": key, "error": err.Error()})
	}

	res, err := c.Next.Classify(ctx, in)
	if err != nil {
		return Result{}, err
	}
	if err := c.Cache.Set(ctx, key, res, c.TTL); err != nil {
		telemetry.Warn("classification.cache_write_failed", map[string]any{"key": key, "error": err.Error()})
	}
	return res, nil
}

var _ Classifier = (*CachedClassifier)(nil)

type memoryEntry struct {
	result  Result
	expires time.Time
}

// MemoryCache is an in-process Cache with per-entry expiry.
type MemoryCache struct {
	mu        sync.RWMutex
	entries   map[string]memoryEntry
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *MemoryCache) Get(ctx context.Context, key string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return Result{}, ErrCacheMiss
	}
	if !entry.expires.IsZero() && !m.now().Before(entry.expires) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return Result{}, ErrCacheMiss
	}
	return entry.result, nil
}

func (m *MemoryCache) Set(ctx context.Context, key string, res Result, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := m.now()
	entry := memoryEntry{result: res}
	if ttl > 0 {
		entry.expires = now.Add(ttl)
	}
	m.mu.Lock()
	m.sweep(now)
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, expired ones included until the
// next sweep.
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// sweep drops expired entries at most once per memorySweepInterval. Callers
// hold m.mu.
func (m *MemoryCache) sweep(now time.Time) {
	if now.Sub(m.lastSweep) < memorySweepInterval {
		return
	}
	m.lastSweep = now
	for key, entry := range m.entries {
		if !entry.expires.IsZero() && !now.Before(entry.expires) {
			delete(m.entries, key)
		}
	}
}

var _ Cache = (*MemoryCache)(nil)
