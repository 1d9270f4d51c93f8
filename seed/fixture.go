// Package seed imports catalog fixtures into the database.
package seed

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mytheresa/storefront/models"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Fixture is the YAML document describing a catalog tree. Ids may be left
// out; they are then derived from the entity's natural key so that seeding
// the same file twice updates rows instead of duplicating them.
type Fixture struct {
	Collections []CollectionFixture `yaml:"collections" validate:"required,min=1,unique=Slug,dive"`
}

type CollectionFixture struct {
	ID         string            `yaml:"id"`
	Name       string            `yaml:"name" validate:"required"`
	Slug       string            `yaml:"slug" validate:"required"`
	Categories []CategoryFixture `yaml:"categories" validate:"unique=Slug,dive"`
}

type CategoryFixture struct {
	Slug           string                 `yaml:"slug" validate:"required"`
	Name           string                 `yaml:"name" validate:"required"`
	ImageURL       string                 `yaml:"image_url" validate:"omitempty,url"`
	Subcollections []SubcollectionFixture `yaml:"subcollections" validate:"dive"`
}

type SubcollectionFixture struct {
	ID            string               `yaml:"id"`
	Name          string               `yaml:"name" validate:"required"`
	Subcategories []SubcategoryFixture `yaml:"subcategories" validate:"unique=Slug,dive"`
}

type SubcategoryFixture struct {
	Slug     string           `yaml:"slug" validate:"required"`
	Name     string           `yaml:"name" validate:"required"`
	ImageURL string           `yaml:"image_url" validate:"omitempty,url"`
	Products []ProductFixture `yaml:"products" validate:"unique=Slug,dive"`
}

type ProductFixture struct {
	Slug        string `yaml:"slug" validate:"required"`
	Name        string `yaml:"name" validate:"required"`
	Description string `yaml:"description"`
	Price       string `yaml:"price" validate:"required,numeric"`
	ImageURL    string `yaml:"image_url" validate:"omitempty,url"`
}

// Parse decodes and validates a fixture. Unknown keys are rejected.
func Parse(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	if err := validator.New().Struct(f); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}
	return &f, nil
}

func LoadFile(path string) (*Fixture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Parse(file)
}

// ErrDuplicateKey is returned by Flatten when two entities of the same table
// share a primary key anywhere in the fixture.
var ErrDuplicateKey = errors.New("duplicate key in fixture")

// keySet records the primary keys seen per table.
type keySet map[string]map[string]bool

func (k keySet) add(table, key string) error {
	if k[table] == nil {
		k[table] = map[string]bool{}
	}
	if k[table][key] {
		return fmt.Errorf("%w: %s %q", ErrDuplicateKey, table, key)
	}
	k[table][key] = true
	return nil
}

// Catalog holds the fixture flattened into rows, one slice per table.
type Catalog struct {
	Collections    []models.Collection
	Categories     []models.Category
	Subcollections []models.Subcollection
	Subcategories  []models.Subcategory
	Products       []models.Product
}

// Flatten converts the fixture tree into table rows. Keys must be unique
// across the whole fixture, not only among siblings.
func (f *Fixture) Flatten() (*Catalog, error) {
	c := &Catalog{}
	seen := keySet{}
	for _, col := range f.Collections {
		colID := col.ID
		if colID == "" {
			colID = stableID("collection", col.Slug)
		}
		if err := seen.add("collection", colID); err != nil {
			return nil, err
		}
		c.Collections = append(c.Collections, models.Collection{ID: colID, Name: col.Name, Slug: col.Slug})

		for _, cat := range col.Categories {
			if err := seen.add("category", cat.Slug); err != nil {
				return nil, err
			}
			c.Categories = append(c.Categories, models.Category{
				Slug:         cat.Slug,
				Name:         cat.Name,
				CollectionID: colID,
				ImageURL:     optional(cat.ImageURL),
			})

			for _, sc := range cat.Subcollections {
				scID := sc.ID
				if scID == "" {
					scID = stableID("subcollection", cat.Slug+"/"+sc.Name)
				}
				if err := seen.add("subcollection", scID); err != nil {
					return nil, err
				}
				c.Subcollections = append(c.Subcollections, models.Subcollection{ID: scID, Name: sc.Name, CategorySlug: cat.Slug})

				for _, sub := range sc.Subcategories {
					if err := seen.add("subcategory", sub.Slug); err != nil {
						return nil, err
					}
					c.Subcategories = append(c.Subcategories, models.Subcategory{
						Slug:            sub.Slug,
						Name:            sub.Name,
						SubcollectionID: scID,
						ImageURL:        optional(sub.ImageURL),
					})

					for _, p := range sub.Products {
						if err := seen.add("product", p.Slug); err != nil {
							return nil, err
						}
						price, err := decimal.NewFromString(p.Price)
						if err != nil {
							return nil, fmt.Errorf("product %s: price %q: %w", p.Slug, p.Price, err)
						}
						c.Products = append(c.Products, models.Product{
							Slug:            p.Slug,
							Name:            p.Name,
							Description:     p.Description,
							Price:           price,
							SubcategorySlug: sub.Slug,
							ImageURL:        optional(p.ImageURL),
						})
					}
				}
			}
		}
	}
	return c, nil
}

func stableID(kind, key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("storefront:"+kind+":"+key)).String()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
