package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"modelpicker/internal/core"
)

// LRUCache is a thread-safe LRU cache whose entries also expire.
type LRUCache struct {
	capacity int
	items    map[string]*entry
	mu       sync.Mutex
	head     *entry
	tail     *entry
	ctx      context.Context
	cancel   context.CancelFunc
}

type entry struct {
	key       string
	value     any
	expiresAt int64
	prev      *entry
	next      *entry
}

// NewCache creates an LRU cache holding at most capacity entries and starts
// its expiry sweeper. Call Stop to release the sweeper.
func NewCache(capacity int) *LRUCache {
	if capacity <= 0 {
		capacity = core.CacheDefaultCapacity
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &LRUCache{
		capacity: capacity,
		items:    make(map[string]*entry),
		head:     &entry{},
		tail:     &entry{},
		ctx:      ctx,
		cancel:   cancel,
	}
	c.head.next = c.tail
	c.tail.prev = c.head

	go c.sweep(core.CacheCleanupInterval)
	return c
}

func (c *LRUCache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.ctx.Done():
			return
		}
	}
}

// Stop terminates the sweeper goroutine.
func (c *LRUCache) Stop() {
	c.cancel()
}

// Set stores a value for ttl. Entries with a non-positive ttl are already
// expired and will never be returned.
func (c *LRUCache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Now().Add(ttl).UnixNano()
	if e, ok := c.items[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.unlink(e)
		c.pushFront(e)
		return
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt}
	c.pushFront(e)
	c.items[key] = e

	if len(c.items) > c.capacity {
		c.evictOldest()
	}
}

// Get returns the value for key unless it is missing or expired.
func (c *LRUCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if time.Now().UnixNano() > e.expiresAt {
		c.unlink(e)
		delete(c.items, key)
		return nil, false
	}

	c.unlink(e)
	c.pushFront(e)
	return e.value, true
}

// Delete removes key if present.
func (c *LRUCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		c.unlink(e)
		delete(c.items, key)
	}
}

// Len returns the number of stored entries, expired ones included until
// they are swept or read.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear drops every entry.
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.head.next = c.tail
	c.tail.prev = c.head
	c.items = make(map[string]*entry)
}

func (c *LRUCache) pushFront(e *entry) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *LRUCache) unlink(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
}

func (c *LRUCache) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	c.unlink(oldest)
	delete(c.items, oldest.key)
}

func (c *LRUCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UnixNano()
	for key, e := range c.items {
		if now > e.expiresAt {
			c.unlink(e)
			delete(c.items, key)
		}
	}
}

// CacheService groups the caches the server uses.
type CacheService struct {
	selections *LRUCache
	general    *LRUCache
	metrics    core.MetricsCollector
}

// NewCacheService creates the selection payload cache and a general cache.
// A nil metrics collector disables hit/miss accounting.
func NewCacheService(metrics core.MetricsCollector) *CacheService {
	if metrics == nil {
		metrics = &core.NopMetrics{}
	}
	return &CacheService{
		selections: NewCache(core.CacheDefaultCapacity),
		general:    NewCache(core.CacheDefaultCapacity),
		metrics:    metrics,
	}
}

// SelectionCacheKey builds the key for an encoded selection. Keys use the
// resolved date so "latest" shares entries with its concrete snapshot.
func SelectionCacheKey(resolvedDate string, category core.Category) string {
	return fmt.Sprintf("%s:%s:%s:%s", core.SelectionCachePrefix, core.CacheKeyVersion, resolvedDate, category)
}

// GetSelection returns a previously encoded selection payload.
func (cs *CacheService) GetSelection(key string) ([]byte, bool) {
	cached, found := cs.selections.Get(key)
	if !found {
		cs.metrics.RecordCacheMiss()
		return nil, false
	}
	payload, ok := cached.([]byte)
	if !ok {
		cs.metrics.RecordCacheMiss()
		return nil, false
	}
	cs.metrics.RecordCacheHit()
	return payload, true
}

// SetSelection stores an encoded selection payload.
func (cs *CacheService) SetSelection(key string, payload []byte, ttl time.Duration) {
	cs.selections.Set(key, payload, ttl)
}

var _ core.Cache = (*CacheService)(nil)

// Get reads from the general cache, which holds the models.dev catalog.
func (cs *CacheService) Get(key string) (any, bool) {
	return cs.general.Get(key)
}

// Set writes to the general cache.
func (cs *CacheService) Set(key string, value any, ttl time.Duration) {
	cs.general.Set(key, value, ttl)
}

// Stop terminates both sweepers.
func (cs *CacheService) Stop() {
	cs.selections.Stop()
	cs.general.Stop()
}

// Close stops the cache service and releases resources.
func (cs *CacheService) Close() error {
	cs.Stop()
	return nil
}
