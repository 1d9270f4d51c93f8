package models

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	// SearchLimit caps the number of search results.
	SearchLimit = 5
	// shortTermMaxLen is the longest term answered by prefix matching;
	// full-text search degrades on very short terms.
	shortTermMaxLen = 2
)

type searchRow struct {
	Slug            string
	Name            string
	Description     string
	Price           decimal.Decimal
	SubcategorySlug string
	ImageURL        *string
	CategorySlug    string
}

// Search finds at most SearchLimit products whose name matches term.
func (r *CatalogRepository) Search(ctx context.Context, term string) ([]SearchResult, error) {
	term = strings.TrimSpace(term)
	results := []SearchResult{}
	if term == "" {
		return results, nil
	}

	query := r.db.WithContext(ctx).
		Table("products").
		Select("products.slug, products.name, products.description, products.price, " +
			"products.subcategory_slug, products.image_url, categories.slug AS category_slug").
		Joins("JOIN subcategories ON subcategories.slug = products.subcategory_slug").
		Joins("JOIN subcollections ON subcollections.id = subcategories.subcollection_id").
		Joins("JOIN categories ON categories.slug = subcollections.category_slug")

	postgres := r.db.Dialector.Name() == "postgres"

	if utf8.RuneCountInString(term) <= shortTermMaxLen {
		pattern := escapeLike(term) + "%"
		if postgres {
			query = query.Where("products.name ILIKE ? ESCAPE '\\'", pattern)
		} else {
			query = query.Where("LOWER(products.name) LIKE ? ESCAPE '\\'", strings.ToLower(pattern))
		}
	} else {
		tokens := SearchTokens(term)
		if len(tokens) == 0 {
			return results, nil
		}
		if postgres {
			query = query.Where("to_tsvector('english', products.name) @@ to_tsquery('english', ?)", FormatTSQuery(tokens))
		} else {
			query = wordPrefixMatch(query, tokens)
		}
	}

	var rows []searchRow
	if err := query.Order("products.slug ASC").Limit(SearchLimit).Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		results = append(results, SearchResult{
			Product: Product{
				Slug:            row.Slug,
				Name:            row.Name,
				Description:     row.Description,
				Price:           row.Price,
				SubcategorySlug: row.SubcategorySlug,
				ImageURL:        row.ImageURL,
			},
			To: ProductPath(row.CategorySlug, row.SubcategorySlug, row.Slug),
		})
	}
	return results, nil
}

// SearchTokens splits term into words at every character that is not a letter
// or digit, so "t-shirt" yields "t" and "shirt" the way to_tsvector does.
func SearchTokens(term string) []string {
	tokens := strings.FieldsFunc(term, isWordSeparator)
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

func isWordSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// FormatTSQuery turns tokens into a prefix-matching tsquery joined by AND,
// e.g. ["blue", "widget"] becomes "blue:* & widget:*".
func FormatTSQuery(tokens []string) string {
	parts := make([]string, len(tokens))
	for i, token := range tokens {
		parts[i] = token + ":*"
	}
	return strings.Join(parts, " & ")
}

// wordPrefixMatch approximates the tsquery on dialects without full-text
// search: every token must prefix some word of the product name. Common
// punctuation in the name is treated as a word boundary.
func wordPrefixMatch(query *gorm.DB, tokens []string) *gorm.DB {
	words := "' ' || " + replaceSeparators("LOWER(products.name)")
	for _, token := range tokens {
		prefix := strings.ToLower(escapeLike(token))
		query = query.Where(words+" LIKE ? ESCAPE '\\'", "% "+prefix+"%")
	}
	return query
}

var nameSeparators = []string{"-", "/", ".", ",", "'", "&", "(", ")", "+", ":"}

// replaceSeparators wraps expr in REPLACE calls mapping each of
// nameSeparators to a space.
func replaceSeparators(expr string) string {
	for _, sep := range nameSeparators {
		quoted := strings.ReplaceAll(sep, "'", "''")
		expr = "REPLACE(" + expr + ", '" + quoted + "', ' ')"
	}
	return expr
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
