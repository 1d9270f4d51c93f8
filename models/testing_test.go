package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory sqlite database with the catalog schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every new connection would get its own empty memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func strPtr(s string) *string { return &s }

// seedCatalog inserts a small catalog:
//
//	electronics -> gadgets -> handheld -> widgets   (Widget A, Widget B, Blue Widget)
//	                                   -> gizmos    (Gadget C)
//	           -> empty-category (no subcollections)
//	fashion    -> shoes -> sneakers -> runners      (none)
func seedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()

	collections := []Collection{
		{ID: "col-1", Name: "Electronics", Slug: "electronics"},
		{ID: "col-2", Name: "Fashion", Slug: "fashion"},
	}
	categories := []Category{
		{Slug: "gadgets", Name: "Gadgets", CollectionID: "col-1", ImageURL: strPtr("https://img/gadgets.jpg")},
		{Slug: "empty-category", Name: "Accessories", CollectionID: "col-1"},
		{Slug: "shoes", Name: "Shoes", CollectionID: "col-2"},
	}
	subcollections := []Subcollection{
		{ID: "sc-1", Name: "Handheld", CategorySlug: "gadgets"},
		{ID: "sc-2", Name: "Sneakers", CategorySlug: "shoes"},
	}
	subcategories := []Subcategory{
		{Slug: "widgets", Name: "Widgets", SubcollectionID: "sc-1"},
		{Slug: "gizmos", Name: "Gizmos", SubcollectionID: "sc-1"},
		{Slug: "runners", Name: "Runners", SubcollectionID: "sc-2"},
	}
	products := []Product{
		{Slug: "widget-a", Name: "Widget A", Description: "First widget", Price: decimal.RequireFromString("10.50"), SubcategorySlug: "widgets"},
		{Slug: "widget-b", Name: "Widget B", Description: "Second widget", Price: decimal.RequireFromString("12.00"), SubcategorySlug: "widgets"},
		{Slug: "blue-widget", Name: "Blue Widget", Description: "A blue one", Price: decimal.RequireFromString("15.25"), SubcategorySlug: "widgets"},
		{Slug: "gadget-c", Name: "Gadget C", Description: "Not a widget", Price: decimal.RequireFromString("7.00"), SubcategorySlug: "gizmos"},
	}

	require.NoError(t, db.Create(&collections).Error)
	require.NoError(t, db.Create(&categories).Error)
	require.NoError(t, db.Create(&subcollections).Error)
	require.NoError(t, db.Create(&subcategories).Error)
	require.NoError(t, db.Create(&products).Error)
}
