package models

// Category represents a product category.
// It belongs to exactly one collection and is addressed by its slug.
type Category struct {
	Slug           string          `gorm:"primaryKey" json:"slug"`
	Name           string          `gorm:"not null" json:"name"`
	CollectionID   string          `gorm:"not null;index:categories_collection_id_idx" json:"collection_id"`
	ImageURL       *string         `gorm:"column:image_url" json:"image_url"`
	Subcollections []Subcollection `gorm:"foreignKey:CategorySlug;references:Slug;constraint:OnDelete:CASCADE" json:"subcollections,omitempty"`
}

func (c *Category) TableName() string {
	return "categories"
}

// Subcollection groups subcategories inside a category.
type Subcollection struct {
	ID            string        `gorm:"primaryKey" json:"id"`
	Name          string        `gorm:"not null" json:"name"`
	CategorySlug  string        `gorm:"not null;index:subcollections_category_slug_idx" json:"category_slug"`
	Subcategories []Subcategory `gorm:"foreignKey:SubcollectionID;constraint:OnDelete:CASCADE" json:"subcategories,omitempty"`
}

func (s *Subcollection) TableName() string {
	return "subcollections"
}

// Subcategory is the leaf grouping products are attached to.
type Subcategory struct {
	Slug            string         `gorm:"primaryKey" json:"slug"`
	Name            string         `gorm:"not null" json:"name"`
	SubcollectionID string         `gorm:"not null;index:subcategories_subcollection_id_idx" json:"subcollection_id"`
	ImageURL        *string        `gorm:"column:image_url" json:"image_url"`
	Subcollection   *Subcollection `gorm:"foreignKey:SubcollectionID" json:"subcollection,omitempty"`
}

func (s *Subcategory) TableName() string {
	return "subcategories"
}
