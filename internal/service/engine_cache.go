package service

import (
	"strings"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/sports-edge/internal/metrics"
	"github.com/yourusername/sports-edge/internal/rating"
)

// EngineCache keeps one fully built rating engine per league. Cached engines
// are only read from; a refresh stores a new instance.
type EngineCache struct {
	cache *cache.Cache
	ttl   time.Duration

	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewEngineCache creates a cache whose entries expire after ttl
func NewEngineCache(ttl, cleanup time.Duration) *EngineCache {
	if cleanup <= 0 {
		cleanup = ttl * 2
	}
	return &EngineCache{
		cache: cache.New(ttl, cleanup),
		ttl:   ttl,
	}
}

func cacheKey(league string) string {
	return strings.ToUpper(league)
}

// Get returns the cached engine for a league
func (c *EngineCache) Get(league string) (*rating.Engine, bool) {
	var engine *rating.Engine
	if v, found := c.cache.Get(cacheKey(league)); found {
		engine, _ = v.(*rating.Engine)
	}

	c.mu.Lock()
	if engine != nil {
		c.hitCount++
	} else {
		c.missCount++
	}
	c.mu.Unlock()

	metrics.RecordEngineCache(engine != nil)
	return engine, engine != nil
}

// Set stores an engine for a league, replacing any previous one
func (c *EngineCache) Set(league string, engine *rating.Engine) {
	c.cache.Set(cacheKey(league), engine, cache.DefaultExpiration)
}

// Invalidate drops the cached engine for a league
func (c *EngineCache) Invalidate(league string) {
	c.cache.Delete(cacheKey(league))
}

// Stats returns hit and miss counts
func (c *EngineCache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hitCount, c.missCount
}
