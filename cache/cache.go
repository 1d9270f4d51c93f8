package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/mytheresa/storefront/internal/result"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

// DefaultTTL is applied when neither the Cache nor the call sets a TTL.
const DefaultTTL = 7200 * time.Second

// Store is the key-value backend behind a Cache.
type Store interface {
	// Get returns the stored bytes and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Keys lists the keys starting with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, keys ...string) error
}

// FetchFn produces a fresh value on a cache miss.
type FetchFn[T any] func(ctx context.Context) (T, error)

// Cache is a read-through cache over a Store.
type Cache struct {
	store   Store
	logger  *zap.Logger
	metrics *Metrics
	ttl     time.Duration
}

type Option func(*Cache)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(c *Cache) {
		c.metrics = metrics
	}
}

// WithDefaultTTL sets the TTL used by calls that do not pass TTL.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func New(store Store, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		logger: zap.NewNop(),
		ttl:    DefaultTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type fetchOptions struct {
	ttl time.Duration
}

type FetchOption func(*fetchOptions)

// TTL overrides the cache's default TTL for one call.
func TTL(ttl time.Duration) FetchOption {
	return func(o *fetchOptions) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

type entry[T any] struct {
	value T
	found bool
}

// GetOrFetch returns the cached result of the named call, invoking fetch and
// storing its result on a miss. Cache failures never reach the caller: they
// are logged and fetch is used instead. A nil Cache always calls fetch.
func GetOrFetch[T any](ctx context.Context, c *Cache, name string, input any, fetch FetchFn[T], opts ...FetchOption) (T, error) {
	if c == nil || c.store == nil {
		return fetch(ctx)
	}

	o := fetchOptions{ttl: c.ttl}
	for _, opt := range opts {
		opt(&o)
	}

	key := keyFor(name, input).UnwrapOr("", c.warn(name, "", "cache key unavailable, bypassing cache"))
	if key == "" {
		return fetch(ctx)
	}

	cached := lookup[T](ctx, c.store, key).UnwrapOr(entry[T]{}, c.warn(name, key, "cache read failed, treating as miss"))
	if cached.found {
		c.metrics.hit(name)
		return cached.value, nil
	}
	c.metrics.miss(name)

	value, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if err := c.put(ctx, key, value, o.ttl); err != nil {
		c.warn(name, key, "cache write failed")(err)
	}
	return value, nil
}

func lookup[T any](ctx context.Context, store Store, key string) result.Result[entry[T]] {
	data, found, err := store.Get(ctx, key)
	if err != nil {
		return result.Err[entry[T]](fmt.Errorf("get: %w", err))
	}
	if !found {
		return result.Ok(entry[T]{})
	}

	var value T
	if err := msgpack.Unmarshal(data, &value); err != nil {
		return result.Err[entry[T]](fmt.Errorf("decode: %w", err))
	}
	return result.Ok(entry[T]{value: value, found: true})
}

func (c *Cache) put(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err := c.store.Set(ctx, key, data, ttl); err != nil {
		return fmt.Errorf("set: %w", err)
	}
	return nil
}

// warn returns the callback used to log and count a swallowed failure.
func (c *Cache) warn(name, key, msg string) func(error) {
	return func(err error) {
		c.metrics.failure(name)
		c.logger.Warn(msg,
			zap.String("function", name),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

// Invalidate deletes every key starting with prefix and returns how many were
// removed. Backend errors are logged and reported as zero deletions.
func (c *Cache) Invalidate(ctx context.Context, prefix string) int {
	if c == nil || c.store == nil {
		return 0
	}

	keys, err := c.store.Keys(ctx, prefix)
	if err != nil {
		c.logger.Warn("cache invalidation scan failed", zap.String("prefix", prefix), zap.Error(err))
		return 0
	}
	if len(keys) == 0 {
		return 0
	}
	if err := c.store.Delete(ctx, keys...); err != nil {
		c.logger.Warn("cache invalidation delete failed", zap.String("prefix", prefix), zap.Error(err))
		return 0
	}

	c.logger.Info("cache invalidated", zap.String("prefix", prefix), zap.Int("keys", len(keys)))
	return len(keys)
}

// ClearFunction drops every cached result of the named function.
func (c *Cache) ClearFunction(ctx context.Context, name string) int {
	return c.Invalidate(ctx, FunctionPrefix(name))
}

// ClearAll drops every entry written by this package.
func (c *Cache) ClearAll(ctx context.Context) int {
	return c.Invalidate(ctx, KeyPrefix+KeySeparator)
}
