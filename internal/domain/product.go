package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CATALOG DOMAIN TYPES
// =============================================================================

// Product is a catalog record as read from the data source.
// Prices are whole EGP amounts stored as decimals.
type Product struct {
	ID            string
	CategoryID    string
	Slug          string
	Name          string
	Description   string
	Price         decimal.Decimal
	ComparePrice  *decimal.Decimal
	Images        []string
	StockQuantity int32
	IsActive      bool
	IsFeatured    bool
	CreatedAt     time.Time
}

// PrimaryImage returns the first image URL, or "" when the product has none.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// OnSale reports whether a compare-at price above the selling price is set.
func (p Product) OnSale() bool {
	return p.ComparePrice != nil && p.ComparePrice.GreaterThan(p.Price)
}

// InStock reports whether any units are available.
func (p Product) InStock() bool {
	return p.StockQuantity > 0
}

// Category groups products for the category listing pages.
type Category struct {
	ID          string
	Slug        string
	Name        string
	Description string
	ImageURL    string
}

// HeroSection is the banner shown at the top of the home page.
type HeroSection struct {
	ID                  string
	Title               string
	Subtitle            string
	BackgroundImageURL  string
	PrimaryButtonText   string
	PrimaryButtonLink   string
	SecondaryButtonText string
	SecondaryButtonLink string
}

// DefaultHero is rendered when no active hero section can be read.
var DefaultHero = HeroSection{
	ID:                  "default",
	Title:               "Premium Style, Exceptional Quality",
	Subtitle:            "Discover our latest collection of premium clothing and accessories",
	BackgroundImageURL:  "/static/placeholder.svg",
	PrimaryButtonText:   "Shop Now",
	PrimaryButtonLink:   "/products",
	SecondaryButtonText: "Browse Categories",
	SecondaryButtonLink: "/categories",
}

// HomeCategorySlugs are the categories featured on the home page.
var HomeCategorySlugs = []string{"sunglasses", "bags", "watches", "accessories"}

// CatalogService is the read-only query interface over products and categories.
type CatalogService interface {
	// ListActiveProducts returns active products, newest first.
	ListActiveProducts(ctx context.Context) ([]Product, error)

	// ListFeaturedProducts returns up to limit active featured products.
	ListFeaturedProducts(ctx context.Context, limit int) ([]Product, error)

	// ListCategoriesBySlugs returns the categories whose slug is in slugs.
	ListCategoriesBySlugs(ctx context.Context, slugs []string) ([]Category, error)

	// GetCategoryBySlug returns ENOTFOUND when no category has the slug.
	GetCategoryBySlug(ctx context.Context, slug string) (*Category, error)

	// ListProductsByCategory returns the active products of a category, newest first.
	ListProductsByCategory(ctx context.Context, categoryID string) ([]Product, error)

	// GetProductByID returns ENOTFOUND for unknown ids.
	GetProductByID(ctx context.Context, id string) (*Product, error)

	// GetProductBySlug returns ENOTFOUND for unknown slugs.
	GetProductBySlug(ctx context.Context, slug string) (*Product, error)

	// GetActiveHero returns the active hero section.
	GetActiveHero(ctx context.Context) (*HeroSection, error)
}
