package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"reflect"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/turtacn/TrajMap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/TrajMap/pkg/errors"
	"golang.org/x/sync/singleflight"
)

var (
	ErrCacheMiss           = errors.New(errors.ErrCodeCacheError, "cache miss")
	ErrSerializationFailed = errors.New(errors.ErrCodeSerialization, "serialization failed")
)

const nullMarker = "__null__"

// errCachedNull reports a stored null marker.  Get exposes it as a miss;
// GetOrSet answers from it without calling the loader.
var errCachedNull = errors.New(errors.ErrCodeCacheError, "cached null")

// Loader produces the value for a missing key.  Returning nil, including a
// typed nil slice, map or pointer, caches a short-lived null marker.
type Loader func(ctx context.Context) (interface{}, error)

// Cache is a JSON cache of backend payloads keyed by resource.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)

	// GetOrSet fills dest from the cache, or from loader on a miss.  Concurrent
	// misses for one key share a single loader call.  hit reports whether the
	// value came from Redis.
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader Loader) (hit bool, err error)

	Ping(ctx context.Context) error
}

type redisCache struct {
	client       *Client
	logger       logging.Logger
	prefix       string
	defaultTTL   time.Duration
	nullCacheTTL time.Duration
	jitter       bool
	group        singleflight.Group
}

// CacheOption configures NewRedisCache.
type CacheOption func(*redisCache)

func WithPrefix(prefix string) CacheOption {
	return func(c *redisCache) { c.prefix = prefix }
}

func WithDefaultTTL(ttl time.Duration) CacheOption {
	return func(c *redisCache) { c.defaultTTL = ttl }
}

func WithNullCacheTTL(ttl time.Duration) CacheOption {
	return func(c *redisCache) { c.nullCacheTTL = ttl }
}

// WithoutJitter disables the ±10% TTL jitter, so expirations are exact.
func WithoutJitter() CacheOption {
	return func(c *redisCache) { c.jitter = false }
}

// NewRedisCache builds a Cache on top of client.
func NewRedisCache(client *Client, log logging.Logger, opts ...CacheOption) Cache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &redisCache{
		client:       client,
		logger:       log,
		prefix:       "trajmap:",
		defaultTTL:   5 * time.Minute,
		nullCacheTTL: 30 * time.Second,
		jitter:       true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *redisCache) fullKey(key string) string {
	return c.prefix + key
}

func (c *redisCache) ttl(ttl time.Duration) time.Duration {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	if !c.jitter {
		return ttl
	}
	return ttl + time.Duration(float64(ttl)*0.1*(rand.Float64()*2-1))
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	err := c.read(ctx, key, dest)
	if err == errCachedNull {
		return ErrCacheMiss
	}
	return err
}

func (c *redisCache) read(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, c.fullKey(key)).Bytes()
	if err == redis.Nil {
		return ErrCacheMiss
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to get from cache")
	}
	if string(data) == nullMarker {
		return errCachedNull
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return ErrSerializationFailed.WithCause(err)
	}
	return nil
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return ErrSerializationFailed.WithCause(err)
	}
	if err := c.client.Set(ctx, c.fullKey(key), data, c.ttl(ttl)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to set cache")
	}
	return nil
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.fullKey(k)
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to delete from cache")
	}
	return nil
}

func (c *redisCache) DeleteByPrefix(ctx context.Context, prefix string) (int64, error) {
	var deleted int64
	var cursor uint64
	match := c.fullKey(prefix) + "*"
	for {
		keys, next, err := c.client.Scan(ctx, cursor, match, 100).Result()
		if err != nil {
			return deleted, errors.Wrap(err, errors.ErrCodeCacheError, "failed to scan cache")
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return deleted, errors.Wrap(err, errors.ErrCodeCacheError, "failed to delete from cache")
			}
			deleted += int64(len(keys))
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

func (c *redisCache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader Loader) (bool, error) {
	err := c.read(ctx, key, dest)
	switch err {
	case nil:
		return true, nil
	case errCachedNull:
		return true, ErrCacheMiss
	case ErrCacheMiss:
	default:
		// Read errors degrade to a direct load.
		c.logger.Warn("cache read failed, loading directly", logging.String("key", key), logging.Err(err))
	}

	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		v, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		if isNil(v) {
			if setErr := c.client.Set(ctx, c.fullKey(key), nullMarker, c.nullCacheTTL).Err(); setErr != nil {
				c.logger.Warn("failed to cache null marker", logging.String("key", key), logging.Err(setErr))
			}
			return nil, nil
		}
		if setErr := c.Set(ctx, key, v, ttl); setErr != nil {
			c.logger.Warn("failed to populate cache", logging.String("key", key), logging.Err(setErr))
		}
		return v, nil
	})
	if err != nil {
		return false, err
	}
	if val == nil {
		return false, ErrCacheMiss
	}

	data, err := json.Marshal(val)
	if err != nil {
		return false, ErrSerializationFailed.WithCause(err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, ErrSerializationFailed.WithCause(err)
	}
	return false, nil
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func (c *redisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}

//Personal.AI order the ending
