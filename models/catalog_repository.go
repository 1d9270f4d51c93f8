package models

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// SubcategoryPageSize bounds the product listing of a subcategory page.
const SubcategoryPageSize = 20

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{
		db: db,
	}
}

// ListCollections returns every collection with its categories, ordered by name.
func (r *CatalogRepository) ListCollections(ctx context.Context) ([]Collection, error) {
	var collections []Collection
	if err := r.db.WithContext(ctx).
		Preload("Categories", func(db *gorm.DB) *gorm.DB {
			return db.Order("categories.name ASC")
		}).
		Order("name ASC").
		Find(&collections).Error; err != nil {
		return nil, err
	}
	return collections, nil
}

// GetCollectionDetails returns the collections matching slug with their categories.
// An unknown slug yields an empty slice.
func (r *CatalogRepository) GetCollectionDetails(ctx context.Context, slug string) ([]Collection, error) {
	collections := []Collection{}
	if err := r.db.WithContext(ctx).
		Preload("Categories", func(db *gorm.DB) *gorm.DB {
			return db.Order("categories.name ASC")
		}).
		Where("slug = ?", slug).
		Order("slug ASC").
		Find(&collections).Error; err != nil {
		return nil, err
	}
	return collections, nil
}

func (r *CatalogRepository) ListProductsForSubcategory(ctx context.Context, subcategorySlug string) ([]Product, error) {
	products := []Product{}
	if err := r.db.WithContext(ctx).
		Where("subcategory_slug = ?", subcategorySlug).
		Order("slug ASC").
		Limit(SubcategoryPageSize).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *CatalogRepository) GetProduct(ctx context.Context, slug string) (*Product, error) {
	var product Product
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err // Other DB error
	}
	return &product, nil
}

func (r *CatalogRepository) GetSubcategory(ctx context.Context, slug string) (*Subcategory, error) {
	var subcategory Subcategory
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&subcategory).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubcategoryNotFound
		}
		return nil, err
	}
	return &subcategory, nil
}

// GetCategory returns a category with its subcollections and their subcategories.
func (r *CatalogRepository) GetCategory(ctx context.Context, slug string) (*Category, error) {
	var category Category
	if err := r.db.WithContext(ctx).
		Preload("Subcollections", func(db *gorm.DB) *gorm.DB {
			return db.Order("subcollections.name ASC")
		}).
		Preload("Subcollections.Subcategories", func(db *gorm.DB) *gorm.DB {
			return db.Order("subcategories.name ASC")
		}).
		Where("slug = ?", slug).
		First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *CatalogRepository) CountProducts(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&Product{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// CountCategoryProducts counts the products reachable from a category through
// its subcollections and subcategories. Only matched product rows are counted,
// so a category without products (or an unknown slug) yields 0.
func (r *CatalogRepository) CountCategoryProducts(ctx context.Context, categorySlug string) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Table("categories").
		Select("COUNT(products.slug)").
		Joins("LEFT JOIN subcollections ON subcollections.category_slug = categories.slug").
		Joins("LEFT JOIN subcategories ON subcategories.subcollection_id = subcollections.id").
		Joins("LEFT JOIN products ON products.subcategory_slug = subcategories.slug").
		Where("categories.slug = ?", categorySlug).
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *CatalogRepository) CountSubcategoryProducts(ctx context.Context, subcategorySlug string) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&Product{}).
		Where("subcategory_slug = ?", subcategorySlug).
		Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// ProductsBySlugs loads the given products in a single query, with their
// subcategory and subcollection. Unknown slugs are silently skipped.
func (r *CatalogRepository) ProductsBySlugs(ctx context.Context, slugs []string) ([]Product, error) {
	products := []Product{}
	if len(slugs) == 0 {
		return products, nil
	}
	if err := r.db.WithContext(ctx).
		Preload("Subcategory.Subcollection").
		Where("slug IN ?", slugs).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
