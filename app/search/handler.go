package search

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mytheresa/storefront/app/api"
	"github.com/mytheresa/storefront/models"
	"go.uber.org/zap"
)

type SearchProvider interface {
	Search(ctx context.Context, term string) ([]models.SearchResult, error)
}

type SearchHandler struct {
	repo   SearchProvider
	maxAge time.Duration
	logger *zap.Logger
}

// NewSearchHandler builds the handler. Successful responses may be cached by
// clients for maxAge.
func NewSearchHandler(r SearchProvider, maxAge time.Duration, logger *zap.Logger) *SearchHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchHandler{repo: r, maxAge: maxAge, logger: logger}
}

func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("searchTerm")

	results, err := h.repo.Search(r.Context(), term)
	if err != nil {
		h.logger.Error("search failed", zap.String("term", term), zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "Search failed")
		return
	}
	if results == nil {
		results = []models.SearchResult{}
	}

	w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", int(h.maxAge.Seconds())))
	api.OK(w, results)
}
