// Package catalog holds catalog implementations that need no database.
package catalog

import (
	"context"

	"github.com/dukerupert/whiffwear/internal/domain"
)

// Empty is the catalog used when no database is configured. Listings are
// empty and every lookup is ENOTFOUND.
type Empty struct{}

var _ domain.CatalogService = Empty{}

func (Empty) ListActiveProducts(context.Context) ([]domain.Product, error) { return nil, nil }

func (Empty) ListFeaturedProducts(context.Context, int) ([]domain.Product, error) { return nil, nil }

func (Empty) ListCategoriesBySlugs(context.Context, []string) ([]domain.Category, error) {
	return nil, nil
}

func (Empty) GetCategoryBySlug(_ context.Context, slug string) (*domain.Category, error) {
	return nil, domain.NotFound("catalog.get_category", "category", slug)
}

func (Empty) ListProductsByCategory(context.Context, string) ([]domain.Product, error) {
	return nil, nil
}

func (Empty) GetProductByID(_ context.Context, id string) (*domain.Product, error) {
	return nil, domain.NotFound("catalog.get_product", "product", id)
}

func (Empty) GetProductBySlug(_ context.Context, slug string) (*domain.Product, error) {
	return nil, domain.NotFound("catalog.get_product_by_slug", "product", slug)
}

func (Empty) GetActiveHero(context.Context) (*domain.HeroSection, error) {
	return nil, domain.NotFound("catalog.get_hero", "hero section", "active")
}
