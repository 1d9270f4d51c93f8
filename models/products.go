package models

import (
	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog.
// It includes a unique slug, price and the subcategory it is listed under.
type Product struct {
	Slug            string          `gorm:"primaryKey" json:"slug"`
	Name            string          `gorm:"not null" json:"name"`
	Description     string          `gorm:"not null" json:"description"`
	Price           decimal.Decimal `gorm:"type:numeric;not null" json:"price"`
	SubcategorySlug string          `gorm:"not null;index:products_subcategory_slug_idx" json:"subcategory_slug"`
	ImageURL        *string         `gorm:"column:image_url" json:"image_url"`
	Subcategory     *Subcategory    `gorm:"foreignKey:SubcategorySlug;references:Slug;constraint:OnDelete:CASCADE" json:"subcategory,omitempty"`
}

func (p *Product) TableName() string {
	return "products"
}

// SearchResult is a product augmented with the storefront path leading to it.
type SearchResult struct {
	Product
	To string `json:"to"`
}

// ProductPath builds the navigable storefront path of a product.
func ProductPath(categorySlug, subcategorySlug, productSlug string) string {
	return "/products/" + categorySlug + "/" + subcategorySlug + "/" + productSlug
}
