package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mytheresa/storefront/app/admin"
	"github.com/mytheresa/storefront/app/cart"
	"github.com/mytheresa/storefront/app/catalog"
	"github.com/mytheresa/storefront/app/categories"
	"github.com/mytheresa/storefront/app/search"
	"github.com/mytheresa/storefront/app/server"
	"github.com/mytheresa/storefront/cache"
	"github.com/mytheresa/storefront/config"
	"github.com/mytheresa/storefront/internal/cacheinfra"
	"github.com/mytheresa/storefront/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := models.Open(cfg.DatabaseURL, cfg.DBDriver, gormlogger.Default.LogMode(gormlogger.Warn))
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := models.Migrate(db); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	checks := map[string]func(context.Context) error{
		"database": sqlDB.PingContext,
	}

	var store cache.Store
	if cfg.RedisURL != "" {
		rs, err := cacheinfra.NewRedisStore(cacheinfra.DefaultRedisConfig(cfg.RedisURL), logger.Named("redis"))
		if err != nil {
			return err
		}
		defer rs.Close()
		checks["cache"] = rs.Ping
		store = rs
		logger.Info("using redis cache")
	} else {
		ms, err := cacheinfra.NewMemoryStore(
			cacheinfra.DefaultMemoryConfig().CoverTTLs(cfg.CacheDefaultTTL, cfg.SearchCacheTTL),
		)
		if err != nil {
			return err
		}
		store = ms
		logger.Info("REDIS_URL not set, using in-process cache")
	}

	c := cache.New(store,
		cache.WithLogger(logger.Named("cache")),
		cache.WithMetrics(cache.NewMetrics(registry)),
		cache.WithDefaultTTL(cfg.CacheDefaultTTL),
	)
	svc := catalog.NewService(models.NewCatalogRepository(db), c, catalog.WithSearchTTL(cfg.SearchCacheTTL))

	handlers := server.Handlers{
		Catalog:    catalog.NewCatalogHandler(svc, logger),
		Categories: categories.NewCategoryHandler(svc, logger),
		Search:     search.NewSearchHandler(svc, cfg.SearchCacheTTL, logger),
		Cart:       cart.NewCartHandler(cart.NewStore(cfg.IsProduction(), logger), svc, logger),
		Admin:      admin.NewAdminHandler(c, logger),
	}
	router := server.NewRouter(handlers, server.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AdminAPIKey:    cfg.AdminAPIKey,
		Registry:       registry,
		HealthChecks:   checks,
	}, logger)

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.ServerAddress), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
