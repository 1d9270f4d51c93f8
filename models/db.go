package models

import (
	"fmt"

	_ "github.com/lib/pq" // registers the "postgres" database/sql driver used when DriverPQ is selected
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	// DriverPGX opens postgres through the pgx stdlib driver bundled with gorm.
	DriverPGX = "pgx"
	// DriverPQ opens postgres through lib/pq.
	DriverPQ = "pq"
)

// Open connects to postgres using the requested database/sql driver.
func Open(dsn, driver string, log logger.Interface) (*gorm.DB, error) {
	cfg := postgres.Config{DSN: dsn}
	switch driver {
	case "", DriverPGX:
	case DriverPQ:
		cfg.DriverName = "postgres"
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(postgres.New(cfg), &gorm.Config{Logger: log})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// Migrate creates the catalog tables. On postgres it also installs the
// text-search and trigram indexes used by Search.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Collection{},
		&Category{},
		&Subcollection{},
		&Subcategory{},
		&Product{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}

	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS pg_trgm`,
		`CREATE INDEX IF NOT EXISTS name_search_index ON products USING gin (to_tsvector('english', name))`,
		`CREATE INDEX IF NOT EXISTS name_trgm_index ON products USING gin (name gin_trgm_ops)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create search index: %w", err)
		}
	}
	return nil
}
