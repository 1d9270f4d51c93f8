// Package server assembles the HTTP surface of the storefront.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mytheresa/storefront/app/admin"
	"github.com/mytheresa/storefront/app/api"
	"github.com/mytheresa/storefront/app/cart"
	"github.com/mytheresa/storefront/app/catalog"
	"github.com/mytheresa/storefront/app/categories"
	"github.com/mytheresa/storefront/app/search"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const healthTimeout = 2 * time.Second

// Handlers groups the resource handlers mounted by the router. Admin is
// optional.
type Handlers struct {
	Catalog    *catalog.CatalogHandler
	Categories *categories.CategoryHandler
	Search     *search.SearchHandler
	Cart       *cart.CartHandler
	Admin      *admin.AdminHandler
}

type Options struct {
	AllowedOrigins []string
	// AdminAPIKey guards /admin. Admin routes are not mounted without it.
	AdminAPIKey string
	Registry    *prometheus.Registry
	// HealthChecks are run by /healthz; any error makes the service unhealthy.
	HealthChecks map[string]func(ctx context.Context) error
}

func NewRouter(h Handlers, opts Options, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	metrics := newHTTPMetrics(opts.Registry)

	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(RequestLogger(logger))
	router.Use(metrics.instrument)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", admin.APIKeyHeader},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: allowCredentials(opts.AllowedOrigins),
		MaxAge:           300,
	}))

	router.Get("/healthz", healthHandler(opts.HealthChecks, logger))
	router.Handle("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))

	router.Route("/api", func(r chi.Router) {
		r.Route("/collections", func(r chi.Router) {
			r.Get("/", h.Catalog.HandleListCollections)
			r.Get("/{collectionSlug}", h.Catalog.HandleGetCollection)
		})

		r.Route("/categories/{categorySlug}", func(r chi.Router) {
			r.Get("/", h.Categories.HandleGet)
			r.Get("/product-count", h.Categories.HandleProductCount)
		})

		r.Route("/subcategories/{subcategorySlug}", func(r chi.Router) {
			r.Get("/", h.Catalog.HandleGetSubcategory)
			r.Get("/products", h.Catalog.HandleListSubcategoryProducts)
			r.Get("/product-count", h.Catalog.HandleSubcategoryProductCount)
		})

		r.Get("/products/{productSlug}", h.Catalog.HandleGetProduct)
		r.Get("/product-count", h.Catalog.HandleProductCount)

		r.Get("/search", h.Search.HandleSearch)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.HandleGet)
			r.Get("/detailed", h.Cart.HandleGetDetailed)
			r.Post("/add", h.Cart.HandleAdd)
			r.Post("/remove", h.Cart.HandleRemove)
		})
	})

	if opts.AdminAPIKey != "" && h.Admin != nil {
		router.Route("/admin", func(r chi.Router) {
			r.Use(admin.RequireAPIKey(opts.AdminAPIKey))
			r.Post("/cache/invalidate", h.Admin.HandleInvalidateCache)
		})
	}

	return router
}

// allowCredentials reports whether credentialed CORS requests can be allowed.
// Browsers refuse credentials for a wildcard origin.
func allowCredentials(origins []string) bool {
	if len(origins) == 0 {
		return false
	}
	for _, origin := range origins {
		if origin == "*" {
			return false
		}
	}
	return true
}

func healthHandler(checks map[string]func(ctx context.Context) error, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		status := map[string]string{}
		healthy := true
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.Warn("health check failed", zap.String("check", name), zap.Error(err))
				status[name] = "unavailable"
				healthy = false
				continue
			}
			status[name] = "ok"
		}

		if !healthy {
			api.JSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unhealthy", "checks": status})
			return
		}
		api.OK(w, map[string]any{"status": "healthy", "checks": status})
	}
}
