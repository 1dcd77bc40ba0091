// Package tokencache caches share-token resolutions so public gallery
// traffic does not hit the token index on every request. Only the
// token-to-folder mapping is cached; folder content is always read
// fresh, and revocations purge their token synchronously.
package tokencache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "galeria_share_cache_hits_total",
		Help: "Share-token resolutions answered from the cache.",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "galeria_share_cache_misses_total",
		Help: "Share-token resolutions that had to query the store.",
	})
)

// Cache is an expiring LRU from share token to folder ID. Entries age
// out after the TTL so a stale mapping can never outlive a revocation
// by more than the purge that revocation performs.
type Cache struct {
	lru *expirable.LRU[string, string]
}

// New creates a cache holding at most size entries for at most ttl.
func New(size int, ttl time.Duration) *Cache {
	return &Cache{
		lru: expirable.NewLRU[string, string](size, nil, ttl),
	}
}

// Get returns the folder ID cached for token, if present.
func (c *Cache) Get(token string) (string, bool) {
	folderID, ok := c.lru.Get(token)
	if ok {
		cacheHits.Inc()
	} else {
		cacheMisses.Inc()
	}
	return folderID, ok
}

// Add caches a resolved token.
func (c *Cache) Add(token, folderID string) {
	c.lru.Add(token, folderID)
}

// Remove drops a token, typically on unpublish, rotation or folder
// deletion.
func (c *Cache) Remove(token string) {
	c.lru.Remove(token)
}

// Purge empties the cache.
func (c *Cache) Purge() {
	c.lru.Purge()
}

// Len reports how many tokens are currently cached.
func (c *Cache) Len() int {
	return c.lru.Len()
}
