// Package cart keeps the shopping cart in a client cookie. The server holds
// no cart state: every request reads the cookie, applies one change and
// writes the whole cart back. Two concurrent writes from the same client race
// and the last response wins.
package cart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mytheresa/storefront/internal/result"
	"go.uber.org/zap"
)

const (
	CookieName   = "cart"
	CookieMaxAge = 7 * 24 * time.Hour
)

type Item struct {
	ProductSlug string `json:"productSlug" validate:"required"`
	Quantity    int    `json:"quantity" validate:"gt=0"`
}

type contents struct {
	Items []Item `validate:"unique=ProductSlug,dive"`
}

// Add returns a copy of items with slug's quantity raised by one, appending
// a new entry when slug is not in the cart yet.
func Add(items []Item, slug string) []Item {
	out := slices.Clone(items)
	for i := range out {
		if out[i].ProductSlug == slug {
			out[i].Quantity++
			return out
		}
	}
	return append(out, Item{ProductSlug: slug, Quantity: 1})
}

// Remove returns items without slug and whether it was present.
func Remove(items []Item, slug string) ([]Item, bool) {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.ProductSlug != slug {
			out = append(out, it)
		}
	}
	return out, len(out) != len(items)
}

// Store reads and writes the cart cookie.
type Store struct {
	secure   bool
	validate *validator.Validate
	logger   *zap.Logger
}

// NewStore builds a Store. secure marks the cookie Secure, which production
// deployments behind TLS need.
func NewStore(secure bool, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		secure:   secure,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// Read returns the cart carried by r. A missing cookie is an empty cart, and
// so is one that fails to parse; the latter is logged.
func (s *Store) Read(r *http.Request) []Item {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return []Item{}
	}
	return s.parse(c.Value).UnwrapOr([]Item{}, func(err error) {
		s.logger.Warn("Failed to parse cart cookie", zap.Error(err))
	})
}

func (s *Store) parse(raw string) result.Result[[]Item] {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return result.Err[[]Item](fmt.Errorf("unescape cart cookie: %w", err))
	}

	dec := json.NewDecoder(bytes.NewBufferString(decoded))
	dec.DisallowUnknownFields()
	var items []Item
	if err := dec.Decode(&items); err != nil {
		return result.Err[[]Item](fmt.Errorf("decode cart cookie: %w", err))
	}
	if dec.More() {
		return result.Err[[]Item](errors.New("decode cart cookie: trailing data"))
	}
	if items == nil {
		items = []Item{}
	}
	if err := s.validate.Struct(contents{Items: items}); err != nil {
		return result.Err[[]Item](fmt.Errorf("validate cart cookie: %w", err))
	}
	return result.Ok(items)
}

// Write replaces the cart cookie with items.
func (s *Store) Write(w http.ResponseWriter, items []Item) error {
	if items == nil {
		items = []Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    url.QueryEscape(string(data)),
		Path:     "/",
		MaxAge:   int(CookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}
