package redis

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// PageCache caches serialized backend list responses in Redis so that several
// console instances share them. Keys are versioned per collection:
//
//	console:cache:{collection}:gen          generation counter
//	console:cache:{collection}:{gen}:{key}  payload
//
// Invalidate increments the counter; stale generations age out by TTL.
// Redis failures fall through to the loader.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	return &PageCache{
		client: client,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *PageCache) Fetch(ctx context.Context, collection, key string, load func(context.Context) ([]byte, error)) ([]byte, error) {
	gen, err := c.generation(ctx, collection)
	if err != nil {
		log.Printf("redis cache unavailable: %v", err)
		return load(ctx)
	}
	dataKey := c.dataKey(collection, gen, key)

	data, err := c.client.Get(ctx, dataKey).Bytes()
	if err == nil {
		return data, nil
	}

	ran := false
	ch := c.sf.DoChan(dataKey, func() (interface{}, error) {
		ran = true
		// The load outlives a cancelled leader; waiters keep their own deadline.
		shared := context.WithoutCancel(ctx)
		// Re-check in case another instance filled it.
		if data, err := c.client.Get(shared, dataKey).Bytes(); err == nil {
			return data, nil
		}
		data, err := load(shared)
		if err != nil {
			return nil, err
		}
		if ttl := c.ttlWithJitter(); ttl > 0 {
			if err := c.client.Set(shared, dataKey, data, ttl).Err(); err != nil {
				log.Printf("redis cache store failed: %v", err)
			}
		}
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

// Invalidate moves collection to a new generation.
func (c *PageCache) Invalidate(ctx context.Context, collection string) error {
	return c.client.Incr(ctx, c.genKey(collection)).Err()
}

func (c *PageCache) generation(ctx context.Context, collection string) (int64, error) {
	raw, err := c.client.Get(ctx, c.genKey(collection)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}

func (c *PageCache) genKey(collection string) string {
	return "console:cache:" + collection + ":gen"
}

func (c *PageCache) dataKey(collection string, gen int64, key string) string {
	return "console:cache:" + collection + ":" + strconv.FormatInt(gen, 10) + ":" + key
}

func (c *PageCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
