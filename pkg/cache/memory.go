package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryClient is a lightweight in-process Client used when no Redis
// address is configured (development, tests).
type MemoryClient struct {
	items map[string]*item
	mu    sync.RWMutex
	stop  chan struct{}
}

type item struct {
	value      string
	expiration time.Time
}

// NewMemoryClient creates an in-memory cache client.
func NewMemoryClient() *MemoryClient {
	c := &MemoryClient{
		items: make(map[string]*item),
		stop:  make(chan struct{}),
	}

	go c.cleanup()

	return c
}

// Get retrieves a value from the cache.
func (c *MemoryClient) Get(ctx context.Context, key string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	itm, exists := c.items[key]
	if !exists || time.Now().After(itm.expiration) {
		return "", ErrMiss
	}

	return itm.value, nil
}

// Set stores a value in the cache.
func (c *MemoryClient) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &item{
		value:      value,
		expiration: time.Now().Add(expiration),
	}
	return nil
}

// Delete removes values from the cache.
func (c *MemoryClient) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		delete(c.items, key)
	}
	return nil
}

// Close stops the background cleanup goroutine.
func (c *MemoryClient) Close() error {
	close(c.stop)
	return nil
}

func (c *MemoryClient) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, itm := range c.items {
				if now.After(itm.expiration) {
					delete(c.items, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
