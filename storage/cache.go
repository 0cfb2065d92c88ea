package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"workboard/domain"
)

type backend interface {
	ListItems(ctx context.Context) ([]domain.Item, error)
	AppendItem(ctx context.Context, in domain.NewItem) error
	UpdateProgress(ctx context.Context, id int, progress domain.Progress) error
}

// Cache keeps the last item list in Redis for a bounded time. Entries are
// stored under a generation number that every successful write through the
// cache bumps, so a list read before a write can never be served after it.
// Writes made directly to the sheet are only seen once the entry expires, so
// the TTL should stay short.
type Cache struct {
	base   backend
	redis  *redis.Client
	key    string
	genKey string
	ttl    time.Duration
}

// NewCache wraps base with a Redis-backed list cache stored under key.
func NewCache(base backend, client *redis.Client, key string, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base storage is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{
		base:   base,
		redis:  client,
		key:    "items:" + key,
		genKey: "items:" + key + ":gen",
		ttl:    ttl,
	}
}

func (c *Cache) ListItems(ctx context.Context) ([]domain.Item, error) {
	gen, ok := c.generation(ctx)
	if ok {
		if items, hit := c.load(ctx, gen); hit {
			return items, nil
		}
	}
	items, err := c.base.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		// a write since generation() moved readers on; this entry is never read
		c.store(ctx, gen, items)
	}
	return items, nil
}

func (c *Cache) AppendItem(ctx context.Context, in domain.NewItem) error {
	if err := c.base.AppendItem(ctx, in); err != nil {
		return err
	}
	c.evict(ctx)
	return nil
}

func (c *Cache) UpdateProgress(ctx context.Context, id int, progress domain.Progress) error {
	if err := c.base.UpdateProgress(ctx, id, progress); err != nil {
		return err
	}
	c.evict(ctx)
	return nil
}

func (c *Cache) entryKey(gen int64) string {
	return fmt.Sprintf("%s:%d", c.key, gen)
}

func (c *Cache) generation(ctx context.Context) (int64, bool) {
	if c.redis == nil || c.ttl == 0 {
		return 0, false
	}
	gen, err := c.redis.Get(ctx, c.genKey).Int64()
	if err == redis.Nil {
		return 0, true
	}
	if err != nil {
		log.WithError(err).WithField("key", c.genKey).Warn("items cache generation read failed")
		return 0, false
	}
	return gen, true
}

func (c *Cache) load(ctx context.Context, gen int64) ([]domain.Item, bool) {
	key := c.entryKey(gen)
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.WithError(err).WithField("key", key).Warn("items cache read failed")
			_ = c.redis.Del(ctx, key).Err()
		}
		return nil, false
	}
	var items []domain.Item
	if err := json.Unmarshal(data, &items); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return nil, false
	}
	return items, true
}

func (c *Cache) store(ctx context.Context, gen int64, items []domain.Item) {
	data, err := json.Marshal(items)
	if err != nil {
		return
	}
	key := c.entryKey(gen)
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.WithError(err).WithField("key", key).Warn("items cache write failed")
	}
}

// evict moves readers to a fresh generation. Older entries expire on their own.
func (c *Cache) evict(ctx context.Context) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Incr(ctx, c.genKey).Err(); err != nil {
		log.WithError(err).WithField("key", c.genKey).Warn("items cache evict failed")
	}
}
