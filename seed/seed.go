package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultAttempts = 5
	DefaultDelay    = time.Second
	batchSize       = 500
)

// CacheClearer drops every cached catalog read.
type CacheClearer interface {
	ClearAll(ctx context.Context) int
}

type Stats struct {
	Collections    int
	Categories     int
	Subcollections int
	Subcategories  int
	Products       int
}

type Seeder struct {
	db       *gorm.DB
	cache    CacheClearer
	logger   *zap.Logger
	attempts uint
	delay    time.Duration
}

type Option func(*Seeder)

func WithCache(c CacheClearer) Option {
	return func(s *Seeder) { s.cache = c }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Seeder) { s.logger = logger }
}

// WithRetry sets how many times the whole import is attempted and the fixed
// pause between attempts.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(s *Seeder) {
		if attempts > 0 {
			s.attempts = attempts
		}
		if delay > 0 {
			s.delay = delay
		}
	}
}

func New(db *gorm.DB, opts ...Option) *Seeder {
	s := &Seeder{
		db:       db,
		logger:   zap.NewNop(),
		attempts: DefaultAttempts,
		delay:    DefaultDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Apply upserts the fixture in a single transaction. A failed attempt rolls
// back completely and the whole batch is retried. On success the catalog
// cache is cleared so readers see the new rows before their TTL runs out.
func (s *Seeder) Apply(ctx context.Context, f *Fixture) (Stats, error) {
	catalog, err := f.Flatten()
	if err != nil {
		return Stats{}, fmt.Errorf("flatten fixture: %w", err)
	}

	attempt := 0
	stats, err := backoff.Retry(ctx, func() (Stats, error) {
		attempt++
		return s.apply(ctx, catalog)
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(s.delay)),
		backoff.WithMaxTries(s.attempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			s.logger.Warn("seed attempt failed, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("retryIn", next),
				zap.Error(err))
		}),
	)
	if err != nil {
		return Stats{}, fmt.Errorf("seed catalog after %d attempts: %w", attempt, err)
	}

	s.logger.Info("catalog seeded",
		zap.Int("collections", stats.Collections),
		zap.Int("categories", stats.Categories),
		zap.Int("subcollections", stats.Subcollections),
		zap.Int("subcategories", stats.Subcategories),
		zap.Int("products", stats.Products))

	if s.cache != nil {
		deleted := s.cache.ClearAll(ctx)
		s.logger.Info("catalog cache cleared", zap.Int("deleted", deleted))
	}
	return stats, nil
}

func (s *Seeder) apply(ctx context.Context, c *Catalog) (Stats, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upsert := tx.Clauses(clause.OnConflict{UpdateAll: true}).
			Omit(clause.Associations).
			Session(&gorm.Session{})
		if err := upsertAll(upsert, c.Collections); err != nil {
			return fmt.Errorf("collections: %w", err)
		}
		if err := upsertAll(upsert, c.Categories); err != nil {
			return fmt.Errorf("categories: %w", err)
		}
		if err := upsertAll(upsert, c.Subcollections); err != nil {
			return fmt.Errorf("subcollections: %w", err)
		}
		if err := upsertAll(upsert, c.Subcategories); err != nil {
			return fmt.Errorf("subcategories: %w", err)
		}
		if err := upsertAll(upsert, c.Products); err != nil {
			return fmt.Errorf("products: %w", err)
		}
		return nil
	})
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Collections:    len(c.Collections),
		Categories:     len(c.Categories),
		Subcollections: len(c.Subcollections),
		Subcategories:  len(c.Subcategories),
		Products:       len(c.Products),
	}, nil
}

func upsertAll[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.CreateInBatches(&rows, batchSize).Error
}
