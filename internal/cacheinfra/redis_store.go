package cacheinfra

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const scanCount = 500

// RedisStore keeps cache entries in redis. The client is built on first use
// and shared by every caller afterwards.
type RedisStore struct {
	opts    *redis.Options
	client  atomic.Pointer[redis.Client]
	breaker *gobreaker.CircuitBreaker
	batch   int
}

func NewRedisStore(cfg RedisConfig, logger *zap.Logger) (*RedisStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, &ConfigError{Field: "URL", Message: err.Error()}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bc := cfg.Breaker
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        bc.Name,
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < bc.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= bc.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("cache circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		// A caller giving up says nothing about redis health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &RedisStore{opts: opts, breaker: breaker, batch: cfg.DeleteBatchSize}, nil
}

// conn returns the shared client, creating it on first use. Concurrent first
// callers race on a compare-and-swap and the losers close their spare client.
func (s *RedisStore) conn() *redis.Client {
	if c := s.client.Load(); c != nil {
		return c
	}
	c := redis.NewClient(s.opts)
	if s.client.CompareAndSwap(nil, c) {
		return c
	}
	_ = c.Close()
	return s.client.Load()
}

type lookup struct {
	data  []byte
	found bool
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	res, err := s.breaker.Execute(func() (any, error) {
		data, err := s.conn().Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return lookup{}, nil
		}
		if err != nil {
			return nil, err
		}
		return lookup{data: data, found: true}, nil
	})
	if err != nil {
		return nil, false, err
	}
	l := res.(lookup)
	return l.data, l.found, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := s.breaker.Execute(func() (any, error) {
		return nil, s.conn().Set(ctx, key, value, ttl).Err()
	})
	return err
}

// Keys walks the keyspace with SCAN so large caches never block redis.
func (s *RedisStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	res, err := s.breaker.Execute(func() (any, error) {
		var keys []string
		iter := s.conn().Scan(ctx, 0, escapeGlob(prefix)+"*", scanCount).Iterator()
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		return keys, iter.Err()
	})
	if err != nil {
		return nil, err
	}
	return res.([]string), nil
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	for start := 0; start < len(keys); start += s.batch {
		end := min(start+s.batch, len(keys))
		chunk := keys[start:end]
		_, err := s.breaker.Execute(func() (any, error) {
			return nil, s.conn().Del(ctx, chunk...).Err()
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Ping checks connectivity without going through the breaker.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.conn().Ping(ctx).Err()
}

// Close releases the client if one was created.
func (s *RedisStore) Close() error {
	if c := s.client.Swap(nil); c != nil {
		return c.Close()
	}
	return nil
}

var globEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`?`, `\?`,
	`[`, `\[`,
	`]`, `\]`,
)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}
