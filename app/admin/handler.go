// Package admin exposes operational endpoints guarded by a shared API key.
package admin

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/mytheresa/storefront/app/api"
	"go.uber.org/zap"
)

const APIKeyHeader = "X-API-KEY"

type CacheInvalidator interface {
	ClearFunction(ctx context.Context, name string) int
	ClearAll(ctx context.Context) int
}

type InvalidateRequest struct {
	// Function names one cached call. Empty clears the whole cache.
	Function string `json:"function" validate:"omitempty,alphanum,max=64"`
}

type InvalidateResponse struct {
	Function string `json:"function,omitempty"`
	Deleted  int    `json:"deleted"`
}

type AdminHandler struct {
	cache    CacheInvalidator
	validate *validator.Validate
	logger   *zap.Logger
}

func NewAdminHandler(c CacheInvalidator, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{cache: c, validate: validator.New(), logger: logger}
}

func (h *AdminHandler) HandleInvalidateCache(w http.ResponseWriter, r *http.Request) {
	var input InvalidateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid function name")
		return
	}

	var deleted int
	if input.Function == "" {
		deleted = h.cache.ClearAll(r.Context())
	} else {
		deleted = h.cache.ClearFunction(r.Context(), input.Function)
	}

	h.logger.Info("cache invalidated", zap.String("function", input.Function), zap.Int("deleted", deleted))
	api.OK(w, InvalidateResponse{Function: input.Function, Deleted: deleted})
}

// RequireAPIKey rejects requests whose X-API-KEY header does not match key.
func RequireAPIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(APIKeyHeader)
			if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				api.Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
