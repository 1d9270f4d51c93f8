package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mytheresa/storefront/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// --- Mock Repository ---

type MockCatalogRepo struct {
	Collections    []models.Collection
	Subcategories  []models.Subcategory
	SourceProducts []models.Product
	Err            error

	lastCalledSlug string
}

func (m *MockCatalogRepo) ListCollections(ctx context.Context) ([]models.Collection, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Collections, nil
}

func (m *MockCatalogRepo) GetCollectionDetails(ctx context.Context, slug string) ([]models.Collection, error) {
	m.lastCalledSlug = slug
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.Collection{}
	for _, c := range m.Collections {
		if c.Slug == slug {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MockCatalogRepo) ListProductsForSubcategory(ctx context.Context, subcategorySlug string) ([]models.Product, error) {
	m.lastCalledSlug = subcategorySlug
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.Product{}
	for _, p := range m.SourceProducts {
		if p.SubcategorySlug == subcategorySlug {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockCatalogRepo) GetProduct(ctx context.Context, slug string) (*models.Product, error) {
	m.lastCalledSlug = slug
	if m.Err != nil {
		return nil, m.Err
	}
	for i := range m.SourceProducts {
		if m.SourceProducts[i].Slug == slug {
			return &m.SourceProducts[i], nil
		}
	}
	return nil, models.ErrProductNotFound
}

func (m *MockCatalogRepo) GetSubcategory(ctx context.Context, slug string) (*models.Subcategory, error) {
	m.lastCalledSlug = slug
	if m.Err != nil {
		return nil, m.Err
	}
	for i := range m.Subcategories {
		if m.Subcategories[i].Slug == slug {
			return &m.Subcategories[i], nil
		}
	}
	return nil, models.ErrSubcategoryNotFound
}

func (m *MockCatalogRepo) CountProducts(ctx context.Context) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return int64(len(m.SourceProducts)), nil
}

func (m *MockCatalogRepo) CountSubcategoryProducts(ctx context.Context, subcategorySlug string) (int64, error) {
	m.lastCalledSlug = subcategorySlug
	products, err := m.ListProductsForSubcategory(ctx, subcategorySlug)
	return int64(len(products)), err
}

// --- Fixtures ---

var mockCollections = []models.Collection{
	{
		ID:   "col-1",
		Name: "Electronics",
		Slug: "electronics",
		Categories: []models.Category{
			{Slug: "gadgets", Name: "Gadgets", CollectionID: "col-1"},
		},
	},
	{ID: "col-2", Name: "Fashion", Slug: "fashion", Categories: []models.Category{}},
}

var mockProducts = []models.Product{
	{Slug: "widget-a", Name: "Widget A", Price: decimal.RequireFromString("10.50"), SubcategorySlug: "widgets"},
	{Slug: "widget-b", Name: "Widget B", Price: decimal.RequireFromString("12.00"), SubcategorySlug: "widgets"},
	{Slug: "gadget-c", Name: "Gadget C", Price: decimal.RequireFromString("7.00"), SubcategorySlug: "gizmos"},
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var errResp map[string]string
	err := json.NewDecoder(rec.Body).Decode(&errResp)
	assert.NoError(t, err)
	return errResp["error"]
}

// --- Tests: GET /api/collections ---

func TestHandleListCollections(t *testing.T) {
	testCases := []struct {
		name               string
		mockRepoSetup      func() *MockCatalogRepo
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name: "Success with nested categories",
			mockRepoSetup: func() *MockCatalogRepo {
				return &MockCatalogRepo{Collections: mockCollections}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp []models.Collection
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Len(t, resp, 2)
				assert.Equal(t, "electronics", resp[0].Slug)
				assert.Len(t, resp[0].Categories, 1)
				assert.Equal(t, "gadgets", resp[0].Categories[0].Slug)
			},
		},
		{
			name: "Empty catalog",
			mockRepoSetup: func() *MockCatalogRepo {
				return &MockCatalogRepo{Collections: []models.Collection{}}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.JSONEq(t, `[]`, rec.Body.String())
			},
		},
		{
			name: "Repository error",
			mockRepoSetup: func() *MockCatalogRepo {
				return &MockCatalogRepo{Err: errors.New("db down")}
			},
			expectedStatusCode: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, "Failed to retrieve collections", decodeError(t, rec))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			handler := NewCatalogHandler(tc.mockRepoSetup(), nil)
			req := httptest.NewRequest("GET", "/api/collections", nil)
			rec := httptest.NewRecorder()

			// Act
			handler.HandleListCollections(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
		})
	}
}

// --- Tests: GET /api/collections/{collectionSlug} ---

func TestHandleGetCollection(t *testing.T) {
	testCases := []struct {
		name               string
		slug               string
		mockRepoSetup      func() *MockCatalogRepo
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name: "Success",
			slug: "electronics",
			mockRepoSetup: func() *MockCatalogRepo {
				return &MockCatalogRepo{Collections: mockCollections}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp []models.Collection
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Len(t, resp, 1)
				assert.Equal(t, "Electronics", resp[0].Name)
			},
		},
		{
			name: "Unknown collection",
			slug: "garden",
			mockRepoSetup: func() *MockCatalogRepo {
				return &MockCatalogRepo{Collections: mockCollections}
			},
			expectedStatusCode: http.StatusNotFound,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, "Collection not found", decodeError(t, rec))
			},
		},
		{
			name: "Repository error",
			slug: "electronics",
			mockRepoSetup: func() *MockCatalogRepo {
				return &MockCatalogRepo{Err: errors.New("timeout")}
			},
			expectedStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			mockRepo := tc.mockRepoSetup()
			handler := NewCatalogHandler(mockRepo, nil)
			req := httptest.NewRequest("GET", "/api/collections/"+tc.slug, nil)
			req.SetPathValue("collectionSlug", tc.slug)
			rec := httptest.NewRecorder()

			// Act
			handler.HandleGetCollection(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			assert.Equal(t, tc.slug, mockRepo.lastCalledSlug)
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
		})
	}
}

// --- Tests: /api/subcategories/{subcategorySlug}... ---

func TestHandleGetSubcategory(t *testing.T) {
	repo := &MockCatalogRepo{
		Subcategories: []models.Subcategory{{Slug: "widgets", Name: "Widgets", SubcollectionID: "sc-1"}},
	}
	handler := NewCatalogHandler(repo, nil)

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/subcategories/widgets", nil)
		req.SetPathValue("subcategorySlug", "widgets")
		rec := httptest.NewRecorder()

		handler.HandleGetSubcategory(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp models.Subcategory
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "Widgets", resp.Name)
	})

	t.Run("not found", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/subcategories/nope", nil)
		req.SetPathValue("subcategorySlug", "nope")
		rec := httptest.NewRecorder()

		handler.HandleGetSubcategory(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Subcategory not found", decodeError(t, rec))
	})
}

func TestHandleListSubcategoryProducts(t *testing.T) {
	testCases := []struct {
		name               string
		slug               string
		mockRepoSetup      func() *MockCatalogRepo
		expectedStatusCode int
		expectedSlugs      []string
	}{
		{
			name: "Products of one subcategory",
			slug: "widgets",
			mockRepoSetup: func() *MockCatalogRepo {
				return &MockCatalogRepo{SourceProducts: mockProducts}
			},
			expectedStatusCode: http.StatusOK,
			expectedSlugs:      []string{"widget-a", "widget-b"},
		},
		{
			name: "Unknown subcategory lists nothing",
			slug: "unknown",
			mockRepoSetup: func() *MockCatalogRepo {
				return &MockCatalogRepo{SourceProducts: mockProducts}
			},
			expectedStatusCode: http.StatusOK,
			expectedSlugs:      []string{},
		},
		{
			name: "Repository error",
			slug: "widgets",
			mockRepoSetup: func() *MockCatalogRepo {
				return &MockCatalogRepo{Err: errors.New("boom")}
			},
			expectedStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			mockRepo := tc.mockRepoSetup()
			handler := NewCatalogHandler(mockRepo, nil)
			req := httptest.NewRequest("GET", "/api/subcategories/"+tc.slug+"/products", nil)
			req.SetPathValue("subcategorySlug", tc.slug)
			rec := httptest.NewRecorder()

			// Act
			handler.HandleListSubcategoryProducts(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			assert.Equal(t, tc.slug, mockRepo.lastCalledSlug)
			if tc.expectedSlugs == nil {
				return
			}
			var resp []models.Product
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			slugs := make([]string, 0, len(resp))
			for _, p := range resp {
				slugs = append(slugs, p.Slug)
			}
			assert.Equal(t, tc.expectedSlugs, slugs)
		})
	}
}

func TestHandleSubcategoryProductCount(t *testing.T) {
	handler := NewCatalogHandler(&MockCatalogRepo{SourceProducts: mockProducts}, nil)
	req := httptest.NewRequest("GET", "/api/subcategories/widgets/product-count", nil)
	req.SetPathValue("subcategorySlug", "widgets")
	rec := httptest.NewRecorder()

	handler.HandleSubcategoryProductCount(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":2}`, rec.Body.String())
}
