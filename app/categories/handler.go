package categories

import (
	"context"
	"errors"
	"net/http"

	"github.com/mytheresa/storefront/app/api"
	"github.com/mytheresa/storefront/models"
	"go.uber.org/zap"
)

type CategoryProvider interface {
	GetCategory(ctx context.Context, slug string) (*models.Category, error)
	CountCategoryProducts(ctx context.Context, categorySlug string) (int64, error)
}

type CategoryHandler struct {
	repo   CategoryProvider
	logger *zap.Logger
}

func NewCategoryHandler(r CategoryProvider, logger *zap.Logger) *CategoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryHandler{repo: r, logger: logger}
}

// HandleGet returns a category with its subcollections and their subcategories.
func (h *CategoryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("categorySlug")

	category, err := h.repo.GetCategory(r.Context(), slug)
	if errors.Is(err, models.ErrCategoryNotFound) {
		api.Error(w, http.StatusNotFound, "Category not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to fetch category", zap.String("category", slug), zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "failed to fetch category")
		return
	}

	api.OK(w, category)
}

// HandleProductCount counts the products below a category. Unknown
// categories count zero.
func (h *CategoryHandler) HandleProductCount(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("categorySlug")

	count, err := h.repo.CountCategoryProducts(r.Context(), slug)
	if err != nil {
		h.logger.Error("failed to count category products", zap.String("category", slug), zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "failed to count products")
		return
	}

	api.OK(w, api.CountResponse{Count: count})
}
