package memcache

import (
	"sync"
	"time"
)

// FacetDistribution maps facet field -> value -> document count.
type FacetDistribution map[string]map[string]int

type FacetCache interface {
	Get(key string) (FacetDistribution, bool)
	Set(key string, dist FacetDistribution, ttl time.Duration)
}

type facetEntry struct {
	dist      FacetDistribution
	expiresAt time.Time
}

type facetCache struct {
	mu   sync.RWMutex
	data map[string]facetEntry
}

func NewFacetCache() FacetCache {
	return &facetCache{
		data: make(map[string]facetEntry),
	}
}

func (c *facetCache) Get(key string) (FacetDistribution, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.data[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.dist, true
}

func (c *facetCache) Set(key string, dist FacetDistribution, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = facetEntry{dist: dist, expiresAt: time.Now().Add(ttl)}

	// Opportunistic cleanup so the map does not grow without bound.
	if len(c.data) > 1000 {
		now := time.Now()
		for k, e := range c.data {
			if now.After(e.expiresAt) {
				delete(c.data, k)
			}
		}
	}
}
