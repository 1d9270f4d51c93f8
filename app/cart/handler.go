package cart

import (
	"context"
	"net/http"

	"github.com/mytheresa/storefront/app/api"
	"github.com/mytheresa/storefront/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const formFieldProductSlug = "productSlug"

type ProductLookup interface {
	ProductsBySlugs(ctx context.Context, slugs []string) ([]models.Product, error)
}

type DetailedItem struct {
	models.Product
	Quantity int `json:"quantity"`
}

type DetailedCart struct {
	Items []DetailedItem  `json:"items"`
	Total decimal.Decimal `json:"total"`
}

type MutationResponse struct {
	Message string `json:"message"`
	Items   []Item `json:"items"`
}

type CartHandler struct {
	store    *Store
	products ProductLookup
	logger   *zap.Logger
}

func NewCartHandler(store *Store, products ProductLookup, logger *zap.Logger) *CartHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartHandler{store: store, products: products, logger: logger}
}

func (h *CartHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	api.OK(w, h.store.Read(r))
}

// HandleGetDetailed joins the cart with the catalog in cart order. Entries
// whose product no longer exists are dropped from the response and from the
// cookie.
func (h *CartHandler) HandleGetDetailed(w http.ResponseWriter, r *http.Request) {
	items := h.store.Read(r)
	resp := DetailedCart{Items: []DetailedItem{}, Total: decimal.Zero}
	if len(items) == 0 {
		api.OK(w, resp)
		return
	}

	slugs := make([]string, len(items))
	for i, it := range items {
		slugs[i] = it.ProductSlug
	}
	products, err := h.products.ProductsBySlugs(r.Context(), slugs)
	if err != nil {
		h.logger.Error("failed to load cart products", zap.Strings("slugs", slugs), zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "Failed to load cart")
		return
	}

	bySlug := make(map[string]models.Product, len(products))
	for _, p := range products {
		bySlug[p.Slug] = p
	}

	kept := make([]Item, 0, len(items))
	for _, it := range items {
		p, ok := bySlug[it.ProductSlug]
		if !ok {
			continue
		}
		kept = append(kept, it)
		resp.Items = append(resp.Items, DetailedItem{Product: p, Quantity: it.Quantity})
		resp.Total = resp.Total.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	if len(kept) != len(items) {
		h.logger.Info("pruning cart entries for missing products",
			zap.Int("before", len(items)), zap.Int("after", len(kept)))
		if err := h.store.Write(w, kept); err != nil {
			h.logger.Warn("failed to rewrite cart cookie", zap.Error(err))
		}
	}
	api.OK(w, resp)
}

// HandleAdd adds one unit of the posted product. The catalog is not
// consulted; unknown slugs are pruned on the next detailed read.
func (h *CartHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	slug := r.PostFormValue(formFieldProductSlug)
	if slug == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	items := Add(h.store.Read(r), slug)
	if err := h.store.Write(w, items); err != nil {
		h.logger.Error("failed to write cart cookie", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "Failed to update cart")
		return
	}
	api.OK(w, MutationResponse{Message: "Item added to cart", Items: items})
}

func (h *CartHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	slug := r.PostFormValue(formFieldProductSlug)
	if slug == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	items, removed := Remove(h.store.Read(r), slug)
	if !removed {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := h.store.Write(w, items); err != nil {
		h.logger.Error("failed to write cart cookie", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "Failed to update cart")
		return
	}
	api.OK(w, MutationResponse{Message: "Item removed from cart", Items: items})
}
