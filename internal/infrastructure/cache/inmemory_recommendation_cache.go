package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	stylingapp "github.com/lookbook/backend/internal/application/styling"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// InMemoryRecommendationCache implements RecommendationCache with a local map.
// Entries are not shared between processes; use it for single-instance
// deployments and tests.
type InMemoryRecommendationCache struct {
	mu        sync.RWMutex
	entries   map[string]entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryRecommendationCache creates a cache and starts its sweeper
func NewInMemoryRecommendationCache(sweepInterval time.Duration) *InMemoryRecommendationCache {
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}
	c := &InMemoryRecommendationCache{
		entries:  make(map[string]entry),
		stopChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.sweepLoop(sweepInterval)

	return c
}

// Get returns the cached payload and whether it was found
func (c *InMemoryRecommendationCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || e.expired(time.Now()) {
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

// Set stores a payload; a non-positive TTL keeps it until invalidated
func (c *InMemoryRecommendationCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

// DeleteByPrefix removes every key starting with prefix
func (c *InMemoryRecommendationCache) DeleteByPrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

// Ping always succeeds
func (c *InMemoryRecommendationCache) Ping(context.Context) error {
	return nil
}

// Close stops the sweeper. Safe to call multiple times.
func (c *InMemoryRecommendationCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

// Size returns the number of stored entries, expired ones included
func (c *InMemoryRecommendationCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *InMemoryRecommendationCache) sweepLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *InMemoryRecommendationCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
		}
	}
}

// Ensure InMemoryRecommendationCache implements RecommendationCache
var _ stylingapp.RecommendationCache = (*InMemoryRecommendationCache)(nil)
