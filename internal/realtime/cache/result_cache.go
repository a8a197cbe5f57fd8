package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/wonny/trendscore/pkg/logger"
)

type entry struct {
	data     []byte
	storedAt time.Time
	expires  time.Time
}

// MemoryCache is an in-process TTL cache of JSON-encoded values.
// It backs the result cache when Redis is disabled and mirrors its Get/Set/Clear contract.
// ⭐ SSOT: 인메모리 결과 캐싱은 이 구조체에서만
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	logger  *logger.Logger
	now     func() time.Time
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(log *logger.Logger) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
		logger:  log,
		now:     time.Now,
	}
}

// Get decodes the value at key into dest. Expired entries are misses.
func (c *MemoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.RLock()
	e, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists || !c.now().Before(e.expires) {
		return false, nil
	}
	if err := json.Unmarshal(e.data, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores value at key for ttl
func (c *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	now := c.now()
	c.mu.Lock()
	c.entries[key] = entry{data: data, storedAt: now, expires: now.Add(ttl)}
	c.mu.Unlock()

	c.logger.WithFields(map[string]interface{}{
		"key":   key,
		"bytes": len(data),
		"ttl":   ttl.String(),
	}).Debug("Stored cache entry")
	return nil
}

// Delete removes a key
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// Clear removes every entry and returns how many were dropped
func (c *MemoryCache) Clear(_ context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.entries)
	c.entries = make(map[string]entry)
	c.logger.WithField("count", n).Info("Cleared memory cache")
	return n, nil
}

// Len returns the number of entries, expired ones included
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// CleanStale removes expired entries
func (c *MemoryCache) CleanStale() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	count := 0
	for key, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, key)
			count++
		}
	}

	if count > 0 {
		c.logger.WithField("count", count).Info("Cleaned stale cache entries")
	}
	return count
}

// Stats returns cache statistics; prefix groups keys by their first segment ("run", "universe")
func (c *MemoryCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := CacheStats{
		TotalCount: len(c.entries),
		ByPrefix:   make(map[string]int),
	}

	now := c.now()
	for key, e := range c.entries {
		if !now.Before(e.expires) {
			stats.StaleCount++
		}
		stats.Bytes += len(e.data)
		prefix, _, _ := strings.Cut(key, ":")
		stats.ByPrefix[prefix]++
	}
	stats.FreshCount = stats.TotalCount - stats.StaleCount
	return stats
}

// CacheStats represents cache statistics
type CacheStats struct {
	TotalCount int            `json:"total_count"`
	FreshCount int            `json:"fresh_count"`
	StaleCount int            `json:"stale_count"`
	Bytes      int            `json:"bytes"`
	ByPrefix   map[string]int `json:"by_prefix"`
}
