package models

import "errors"

var (
	// ErrProductNotFound is returned when a product is not found.
	ErrProductNotFound = errors.New("product not found")
	// ErrCategoryNotFound is returned when a category is not found.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrSubcategoryNotFound is returned when a subcategory is not found.
	ErrSubcategoryNotFound = errors.New("subcategory not found")
)

// IsNotFound reports whether err is one of the catalog not-found errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrSubcategoryNotFound)
}
