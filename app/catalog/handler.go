package catalog

import (
	"context"
	"errors"
	"net/http"

	"github.com/mytheresa/storefront/app/api"
	"github.com/mytheresa/storefront/models"
	"go.uber.org/zap"
)

type CatalogProvider interface {
	ListCollections(ctx context.Context) ([]models.Collection, error)
	GetCollectionDetails(ctx context.Context, slug string) ([]models.Collection, error)
	ListProductsForSubcategory(ctx context.Context, subcategorySlug string) ([]models.Product, error)
	GetProduct(ctx context.Context, slug string) (*models.Product, error)
	GetSubcategory(ctx context.Context, slug string) (*models.Subcategory, error)
	CountProducts(ctx context.Context) (int64, error)
	CountSubcategoryProducts(ctx context.Context, subcategorySlug string) (int64, error)
}

type CatalogHandler struct {
	repo   CatalogProvider
	logger *zap.Logger
}

func NewCatalogHandler(r CatalogProvider, logger *zap.Logger) *CatalogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogHandler{
		repo:   r,
		logger: logger,
	}
}

func (h *CatalogHandler) HandleListCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := h.repo.ListCollections(r.Context())
	if err != nil {
		h.fail(w, r, err, "Failed to retrieve collections")
		return
	}
	api.OK(w, collections)
}

func (h *CatalogHandler) HandleGetCollection(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("collectionSlug")

	collections, err := h.repo.GetCollectionDetails(r.Context(), slug)
	if err != nil {
		h.fail(w, r, err, "Failed to retrieve collection")
		return
	}
	if len(collections) == 0 {
		api.Error(w, http.StatusNotFound, "Collection not found")
		return
	}
	api.OK(w, collections)
}

func (h *CatalogHandler) HandleGetSubcategory(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("subcategorySlug")

	subcategory, err := h.repo.GetSubcategory(r.Context(), slug)
	if errors.Is(err, models.ErrSubcategoryNotFound) {
		api.Error(w, http.StatusNotFound, "Subcategory not found")
		return
	}
	if err != nil {
		h.fail(w, r, err, "Failed to retrieve subcategory")
		return
	}
	api.OK(w, subcategory)
}

func (h *CatalogHandler) HandleListSubcategoryProducts(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("subcategorySlug")

	products, err := h.repo.ListProductsForSubcategory(r.Context(), slug)
	if err != nil {
		h.fail(w, r, err, "Failed to retrieve products")
		return
	}
	api.OK(w, products)
}

func (h *CatalogHandler) HandleSubcategoryProductCount(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("subcategorySlug")

	count, err := h.repo.CountSubcategoryProducts(r.Context(), slug)
	if err != nil {
		h.fail(w, r, err, "Failed to count products")
		return
	}
	api.OK(w, api.CountResponse{Count: count})
}

func (h *CatalogHandler) HandleProductCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.repo.CountProducts(r.Context())
	if err != nil {
		h.fail(w, r, err, "Failed to count products")
		return
	}
	api.OK(w, api.CountResponse{Count: count})
}

func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("productSlug")
	if slug == "" {
		api.Error(w, http.StatusNotFound, "Product not found")
		return
	}

	product, err := h.repo.GetProduct(r.Context(), slug)
	if errors.Is(err, models.ErrProductNotFound) {
		api.Error(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		h.fail(w, r, err, "Failed to retrieve product")
		return
	}
	api.OK(w, product)
}

func (h *CatalogHandler) fail(w http.ResponseWriter, r *http.Request, err error, msg string) {
	h.logger.Error(msg, zap.String("path", r.URL.Path), zap.Error(err))
	api.Error(w, http.StatusInternalServerError, msg)
}
