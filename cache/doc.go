// Package cache provides a read-through cache for catalog reads.
//
// # Overview
//
// GetOrFetch memoizes the result of a producer function in a Store under a
// key derived from a function name and its input:
//
//	products, err := cache.GetOrFetch(ctx, c, "getProductsForSubcategory",
//		map[string]string{"subcategorySlug": slug},
//		func(ctx context.Context) ([]models.Product, error) {
//			return repo.ListProductsForSubcategory(ctx, slug)
//		})
//
// # Keys
//
// Keys have the form "cache:{name}:{input}" where input is the canonical JSON
// encoding of the input value: object keys are sorted at every depth, so two
// logically equal inputs always share a key. A nil input contributes an empty
// component.
//
// # Failure handling
//
// The cache never fails a read. Backend errors, encoding errors and decoding
// errors are logged and handled as a miss (or as a skipped write); the producer
// is then called directly. Errors returned by the producer are passed through
// and never cached.
//
// # Invalidation
//
// Entries expire by TTL. Invalidate removes every key under a prefix;
// ClearFunction and ClearAll are the scoped variants used after catalog imports.
package cache
