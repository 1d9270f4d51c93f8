// Command seed imports a catalog fixture into the storefront database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/mytheresa/storefront/cache"
	"github.com/mytheresa/storefront/config"
	"github.com/mytheresa/storefront/internal/cacheinfra"
	"github.com/mytheresa/storefront/models"
	"github.com/mytheresa/storefront/seed"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	file := flag.String("file", "", "path to the catalog YAML fixture")
	attempts := flag.Uint("attempts", seed.DefaultAttempts, "import attempts before giving up")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*file, *attempts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(file string, attempts uint) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := config.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	fixture, err := seed.LoadFile(file)
	if err != nil {
		return err
	}

	db, err := models.Open(cfg.DatabaseURL, cfg.DBDriver, gormlogger.Default.LogMode(gormlogger.Warn))
	if err != nil {
		return err
	}
	if err := models.Migrate(db); err != nil {
		return err
	}

	opts := []seed.Option{
		seed.WithLogger(logger),
		seed.WithRetry(attempts, seed.DefaultDelay),
	}
	// Only a shared cache outlives this process, so only redis is cleared.
	if cfg.RedisURL != "" {
		rs, err := cacheinfra.NewRedisStore(cacheinfra.DefaultRedisConfig(cfg.RedisURL), logger.Named("redis"))
		if err != nil {
			return err
		}
		defer rs.Close()
		opts = append(opts, seed.WithCache(cache.New(rs, cache.WithLogger(logger.Named("cache")))))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stats, err := seed.New(db, opts...).Apply(ctx, fixture)
	if err != nil {
		return err
	}
	logger.Info("seed complete", zap.String("file", file), zap.Int("products", stats.Products))
	return nil
}
