package storefront

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dukerupert/whiffwear/internal/cart"
	"github.com/dukerupert/whiffwear/internal/discount"
	"github.com/dukerupert/whiffwear/internal/domain"
	"github.com/dukerupert/whiffwear/internal/handler"
	"github.com/dukerupert/whiffwear/internal/persistence"
	"github.com/dukerupert/whiffwear/web"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testSession = "0b8e6a1e-5d0e-4a57-9d0c-7f1f3f0c2a11"

// =============================================================================
// MOCK CATALOG
// =============================================================================

type mockCatalog struct {
	products   []domain.Product
	categories []domain.Category
	hero       *domain.HeroSection
	err        error
}

func (m *mockCatalog) ListActiveProducts(ctx context.Context) ([]domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Product
	for _, p := range m.products {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockCatalog) ListFeaturedProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Product
	for _, p := range m.products {
		if p.IsActive && p.IsFeatured && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockCatalog) ListCategoriesBySlugs(ctx context.Context, slugs []string) ([]domain.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.categories, nil
}

func (m *mockCatalog) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, c := range m.categories {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, domain.NotFound("catalog.category", "category", slug)
}

func (m *mockCatalog) ListProductsByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range m.products {
		if p.IsActive && p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockCatalog) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	for _, p := range m.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.NotFound("catalog.product", "product", id)
}

func (m *mockCatalog) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	for _, p := range m.products {
		if p.Slug == slug && p.IsActive {
			return &p, nil
		}
	}
	return nil, domain.NotFound("catalog.product", "product", slug)
}

func (m *mockCatalog) GetActiveHero(ctx context.Context) (*domain.HeroSection, error) {
	if m.hero == nil {
		return nil, domain.NotFound("catalog.hero", "hero section", "active")
	}
	return m.hero, nil
}

// =============================================================================
// MOCK HANDOFF
// =============================================================================

type mockHandoff struct {
	received []cart.Checkout
	err      error
}

func (m *mockHandoff) HandOff(ctx context.Context, c cart.Checkout) error {
	if m.err != nil {
		return m.err
	}
	m.received = append(m.received, c)
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func testCatalog() *mockCatalog {
	compare := decimal.NewFromInt(3000)
	return &mockCatalog{
		products: []domain.Product{
			{ID: "p-aviator", CategoryID: "c-sun", Slug: "aviator-gold", Name: "Aviator Gold", Price: decimal.NewFromInt(2500), ComparePrice: &compare, Images: []string{"/img/aviator.jpg"}, StockQuantity: 5, IsActive: true, IsFeatured: true},
			{ID: "p-tote", CategoryID: "c-bags", Slug: "canvas-tote", Name: "Canvas Tote", Price: decimal.NewFromInt(900), StockQuantity: 10, IsActive: true},
			{ID: "p-sold", CategoryID: "c-bags", Slug: "sold-out", Name: "Sold Out Clutch", Price: decimal.NewFromInt(1200), StockQuantity: 0, IsActive: true},
			{ID: "p-old", CategoryID: "c-bags", Slug: "retired", Name: "Retired Bag", Price: decimal.NewFromInt(700), StockQuantity: 3, IsActive: false},
		},
		categories: []domain.Category{
			{ID: "c-sun", Slug: "sunglasses", Name: "Sunglasses"},
			{ID: "c-bags", Slug: "bags", Name: "Bags"},
		},
	}
}

func newTestRenderer(t *testing.T) *handler.Renderer {
	t.Helper()
	r, err := handler.NewRenderer(web.Templates())
	require.NoError(t, err)
	return r
}

func newTestCarts(store *persistence.MemoryStore) *Carts {
	return NewCarts(SessionSlots(store.Slot), discount.NewEngine(discount.DefaultCodes()))
}

func sessionRequest(method, target string, form url.Values) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(domain.WithSessionID(req.Context(), testSession))
}

func htmx(req *http.Request) *http.Request {
	req.Header.Set("HX-Request", "true")
	return req
}

var errDown = errors.New("connection refused")
