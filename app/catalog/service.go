package catalog

import (
	"context"
	"time"

	"github.com/mytheresa/storefront/cache"
	"github.com/mytheresa/storefront/models"
)

// Cache entry names. Invalidation by function name targets these.
const (
	FnCollections             = "getCollections"
	FnCollectionDetails       = "getCollectionDetails"
	FnProductsForSubcategory  = "getProductsForSubcategory"
	FnProductDetails          = "getProductDetails"
	FnSubcategory             = "getSubcategory"
	FnCategory                = "getCategory"
	FnProductCount            = "getProductCount"
	FnCategoryProductCount    = "getCategoryProductCount"
	FnSubcategoryProductCount = "getSubcategoryProductCount"
	FnSearchResults           = "getSearchResults"
)

const DefaultSearchTTL = 600 * time.Second

// Repository is the uncached catalog data access the service reads through.
type Repository interface {
	ListCollections(ctx context.Context) ([]models.Collection, error)
	GetCollectionDetails(ctx context.Context, slug string) ([]models.Collection, error)
	ListProductsForSubcategory(ctx context.Context, subcategorySlug string) ([]models.Product, error)
	GetProduct(ctx context.Context, slug string) (*models.Product, error)
	GetSubcategory(ctx context.Context, slug string) (*models.Subcategory, error)
	GetCategory(ctx context.Context, slug string) (*models.Category, error)
	CountProducts(ctx context.Context) (int64, error)
	CountCategoryProducts(ctx context.Context, categorySlug string) (int64, error)
	CountSubcategoryProducts(ctx context.Context, subcategorySlug string) (int64, error)
	ProductsBySlugs(ctx context.Context, slugs []string) ([]models.Product, error)
	Search(ctx context.Context, term string) ([]models.SearchResult, error)
}

// Service serves catalog reads through the read-through cache.
type Service struct {
	repo      Repository
	cache     *cache.Cache
	searchTTL time.Duration
}

type ServiceOption func(*Service)

func WithSearchTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.searchTTL = ttl
		}
	}
}

// NewService builds a Service. A nil cache disables caching.
func NewService(repo Repository, c *cache.Cache, opts ...ServiceOption) *Service {
	s := &Service{repo: repo, cache: c, searchTTL: DefaultSearchTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) ListCollections(ctx context.Context) ([]models.Collection, error) {
	return cache.GetOrFetch(ctx, s.cache, FnCollections, nil, s.repo.ListCollections)
}

func (s *Service) GetCollectionDetails(ctx context.Context, slug string) ([]models.Collection, error) {
	return cache.GetOrFetch(ctx, s.cache, FnCollectionDetails, map[string]string{"collectionSlug": slug},
		func(ctx context.Context) ([]models.Collection, error) {
			return s.repo.GetCollectionDetails(ctx, slug)
		})
}

func (s *Service) ListProductsForSubcategory(ctx context.Context, subcategorySlug string) ([]models.Product, error) {
	return cache.GetOrFetch(ctx, s.cache, FnProductsForSubcategory, map[string]string{"subcategorySlug": subcategorySlug},
		func(ctx context.Context) ([]models.Product, error) {
			return s.repo.ListProductsForSubcategory(ctx, subcategorySlug)
		})
}

func (s *Service) GetProduct(ctx context.Context, slug string) (*models.Product, error) {
	return cache.GetOrFetch(ctx, s.cache, FnProductDetails, map[string]string{"productSlug": slug},
		func(ctx context.Context) (*models.Product, error) {
			return s.repo.GetProduct(ctx, slug)
		})
}

func (s *Service) GetSubcategory(ctx context.Context, slug string) (*models.Subcategory, error) {
	return cache.GetOrFetch(ctx, s.cache, FnSubcategory, map[string]string{"subcategorySlug": slug},
		func(ctx context.Context) (*models.Subcategory, error) {
			return s.repo.GetSubcategory(ctx, slug)
		})
}

func (s *Service) GetCategory(ctx context.Context, slug string) (*models.Category, error) {
	return cache.GetOrFetch(ctx, s.cache, FnCategory, map[string]string{"categorySlug": slug},
		func(ctx context.Context) (*models.Category, error) {
			return s.repo.GetCategory(ctx, slug)
		})
}

func (s *Service) CountProducts(ctx context.Context) (int64, error) {
	return cache.GetOrFetch(ctx, s.cache, FnProductCount, nil, s.repo.CountProducts)
}

func (s *Service) CountCategoryProducts(ctx context.Context, categorySlug string) (int64, error) {
	return cache.GetOrFetch(ctx, s.cache, FnCategoryProductCount, map[string]string{"categorySlug": categorySlug},
		func(ctx context.Context) (int64, error) {
			return s.repo.CountCategoryProducts(ctx, categorySlug)
		})
}

func (s *Service) CountSubcategoryProducts(ctx context.Context, subcategorySlug string) (int64, error) {
	return cache.GetOrFetch(ctx, s.cache, FnSubcategoryProductCount, map[string]string{"subcategorySlug": subcategorySlug},
		func(ctx context.Context) (int64, error) {
			return s.repo.CountSubcategoryProducts(ctx, subcategorySlug)
		})
}

func (s *Service) Search(ctx context.Context, term string) ([]models.SearchResult, error) {
	return cache.GetOrFetch(ctx, s.cache, FnSearchResults, map[string]string{"searchTerm": term},
		func(ctx context.Context) ([]models.SearchResult, error) {
			return s.repo.Search(ctx, term)
		}, cache.TTL(s.searchTTL))
}

// ProductsBySlugs reads straight from the repository. Cart contents change
// per request and are never cached.
func (s *Service) ProductsBySlugs(ctx context.Context, slugs []string) ([]models.Product, error) {
	return s.repo.ProductsBySlugs(ctx, slugs)
}
