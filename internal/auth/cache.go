package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/loganlanou/campusconnect/internal/api"
)

// Store caches resolved users by session key. A nil user with ok=true is a
// cached "logged out" answer.
type Store interface {
	Get(ctx context.Context, key string) (user *api.User, ok bool, err error)
	Set(ctx context.Context, key string, user *api.User) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// CacheKey derives the cache key for a session token. The raw token never
// leaves the process.
func CacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "user:" + hex.EncodeToString(sum[:])
}

// memoryStore is an in-process TTL cache for resolved users
type memoryStore struct {
	mu      sync.RWMutex
	data    map[string]*cacheEntry
	ttl     time.Duration
	cleanup *time.Ticker
	done    chan bool
	stopped bool
}

type cacheEntry struct {
	user      *api.User
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	cache := &memoryStore{
		data:    make(map[string]*cacheEntry),
		ttl:     ttl,
		cleanup: time.NewTicker(ttl),
		done:    make(chan bool),
	}

	go cache.cleanupExpired()

	return cache
}

func (c *memoryStore) Get(_ context.Context, key string) (*api.User, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.data[key]
	if !exists {
		return nil, false, nil
	}

	if time.Now().After(entry.expiresAt) {
		return nil, false, nil
	}

	return entry.user, true, nil
}

func (c *memoryStore) Set(_ context.Context, key string, user *api.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = &cacheEntry{
		user:      user,
		expiresAt: time.Now().Add(c.ttl),
	}
	return nil
}

func (c *memoryStore) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data, key)
	return nil
}

func (c *memoryStore) cleanupExpired() {
	for {
		select {
		case <-c.cleanup.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.data {
				if now.After(entry.expiresAt) {
					delete(c.data, key)
				}
			}
			c.mu.Unlock()
		case <-c.done:
			return
		}
	}
}

// Close stops the janitor goroutine. It is safe to call more than once.
func (c *memoryStore) Close() error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return nil
	}
	c.stopped = true
	c.mu.Unlock()

	c.cleanup.Stop()
	c.done <- true
	return nil
}
