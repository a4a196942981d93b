package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// Cache guarda valores por chave com TTL deslizante: cada GetOrCreate
// estende a expiração, então uma chave em uso nunca expira.
// Hoje guarda os limiters por cliente do rate limit de leads.
type Cache struct {
	mu       sync.RWMutex
	items    map[string]*cacheItem
	ttl      time.Duration
	stopChan chan struct{}
	stopOnce sync.Once

	hits   int64
	misses int64
}

type cacheItem struct {
	value      interface{}
	expiration time.Time
}

// NewCache creates a new cache with the specified TTL
func NewCache(ttl time.Duration) *Cache {
	c := &Cache{
		items:    make(map[string]*cacheItem),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}

	go c.cleanup(cleanupInterval(ttl))

	return c
}

// GetOrCreate returns the live value for key, creating it with create when
// missing or expired. The expiration is pushed forward on every call.
func (c *Cache) GetOrCreate(key string, create func() interface{}) interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	item, exists := c.items[key]
	if exists && now.Before(item.expiration) {
		atomic.AddInt64(&c.hits, 1)
		item.expiration = now.Add(c.ttl)
		return item.value
	}

	atomic.AddInt64(&c.misses, 1)
	item = &cacheItem{
		value:      create(),
		expiration: now.Add(c.ttl),
	}
	c.items[key] = item
	return item.value
}

// Stats returns cache statistics
type Stats struct {
	ItemCount int   `json:"item_count"`
	HitCount  int64 `json:"hit_count"`
	MissCount int64 `json:"miss_count"`
}

// Stats returns a snapshot of the cache counters
func (c *Cache) Stats() Stats {
	return Stats{
		ItemCount: c.Size(),
		HitCount:  atomic.LoadInt64(&c.hits),
		MissCount: atomic.LoadInt64(&c.misses),
	}
}

func cleanupInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 || ttl >= time.Minute {
		return time.Minute
	}
	return ttl
}

// cleanup periodically removes expired items
func (c *Cache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stopChan:
			return
		}
	}
}

// removeExpired removes all expired items
func (c *Cache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, item := range c.items {
		if now.After(item.expiration) {
			delete(c.items, key)
		}
	}
}

// Stop stops the cleanup goroutine. Safe to call more than once.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
}

// Size returns the number of items in the cache
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
