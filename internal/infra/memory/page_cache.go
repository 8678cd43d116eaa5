package memory

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// PageCache caches serialized backend list responses with a TTL to avoid
// repeated backend hits. Each collection carries a generation; Invalidate bumps
// it so entries and in-flight loads of the previous generation are ignored.
type PageCache struct {
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group

	mu          sync.RWMutex
	rnd         *rand.Rand
	generations map[string]uint64
	entries     map[string]cachedPage
}

type cachedPage struct {
	data      []byte
	expiresAt time.Time
}

// NewPageCache returns a cache; a ttl of zero disables caching.
func NewPageCache(ttl time.Duration) *PageCache {
	return &PageCache{
		ttl:         ttl,
		clock:       time.Now,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
		generations: make(map[string]uint64),
		entries:     make(map[string]cachedPage),
	}
}

// WithClock is test-only for deterministic expiry.
func (c *PageCache) WithClock(clock func() time.Time) *PageCache {
	c.clock = clock
	return c
}

func (c *PageCache) Fetch(ctx context.Context, collection, key string, load func(context.Context) ([]byte, error)) ([]byte, error) {
	c.mu.RLock()
	gen := c.generations[collection]
	entryKey := fmt.Sprintf("%s|%d|%s", collection, gen, key)
	if entry, ok := c.entries[entryKey]; ok && entry.expiresAt.After(c.clock()) {
		c.mu.RUnlock()
		return entry.data, nil
	}
	c.mu.RUnlock()

	ran := false
	ch := c.sf.DoChan(entryKey, func() (interface{}, error) {
		ran = true
		// The load outlives a cancelled leader; waiters keep their own deadline.
		data, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.generations[collection] == gen && c.ttl > 0 {
			now := c.clock()
			c.evictExpiredLocked(now)
			c.entries[entryKey] = cachedPage{
				data:      data,
				expiresAt: now.Add(c.ttlWithJitter()),
			}
		}
		c.mu.Unlock()
		return data, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			if !ran {
				// Another caller's credentials failed; retry with ours.
				return load(ctx)
			}
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// Len reports the number of cached entries, expired or not.
func (c *PageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictExpiredLocked drops entries past their expiry so that one-off search
// keys do not accumulate. Must be called with mu held.
func (c *PageCache) evictExpiredLocked(now time.Time) {
	for k, e := range c.entries {
		if !e.expiresAt.After(now) {
			delete(c.entries, k)
		}
	}
}

// Invalidate drops every entry of collection.
func (c *PageCache) Invalidate(_ context.Context, collection string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[collection]++
	prefix := collection + "|"
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	return nil
}

// ttlWithJitter must be called with mu held.
func (c *PageCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
