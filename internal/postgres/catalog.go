package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/whiffwear/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// CatalogService implements domain.CatalogService using PostgreSQL.
type CatalogService struct {
	db DBTX
}

// Compile-time check that CatalogService implements domain.CatalogService.
var _ domain.CatalogService = (*CatalogService)(nil)

// NewCatalogService creates a new PostgreSQL-backed catalog service.
func NewCatalogService(db DBTX) *CatalogService {
	return &CatalogService{db: db}
}

// Prices are read as text so decimal parsing does not depend on the numeric
// codec.
const productColumns = `id::text, category_id::text, slug, name, description,
	price::text, compare_price::text, images, stock_quantity, is_active, is_featured, created_at`

const categoryColumns = `id::text, slug, name, description, image_url`

// =============================================================================
// PRODUCTS
// =============================================================================

// ListActiveProducts returns all active products, newest first.
func (s *CatalogService) ListActiveProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.Query(ctx, `SELECT `+productColumns+`
		FROM products
		WHERE is_active
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, domain.Internal(err, "catalog.list_products", "failed to list products")
	}
	return collectProducts(rows, "catalog.list_products")
}

// ListFeaturedProducts returns up to limit active featured products.
func (s *CatalogService) ListFeaturedProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 4
	}
	rows, err := s.db.Query(ctx, `SELECT `+productColumns+`
		FROM products
		WHERE is_active AND is_featured
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, domain.Internal(err, "catalog.list_featured", "failed to list featured products")
	}
	return collectProducts(rows, "catalog.list_featured")
}

// ListProductsByCategory returns the active products of one category, newest first.
func (s *CatalogService) ListProductsByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	rows, err := s.db.Query(ctx, `SELECT `+productColumns+`
		FROM products
		WHERE is_active AND category_id = $1::uuid
		ORDER BY created_at DESC`, categoryID)
	if err != nil {
		return nil, domain.Internal(err, "catalog.list_by_category", "failed to list category products")
	}
	return collectProducts(rows, "catalog.list_by_category")
}

// GetProductByID returns a product of any status; callers decide whether an
// inactive product can be sold.
func (s *CatalogService) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	row := s.db.QueryRow(ctx, `SELECT `+productColumns+`
		FROM products
		WHERE id::text = $1`, id)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("catalog.get_product", "product", id)
		}
		return nil, domain.Internal(err, "catalog.get_product", "failed to get product")
	}
	return p, nil
}

// GetProductBySlug returns an active product by slug.
func (s *CatalogService) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	row := s.db.QueryRow(ctx, `SELECT `+productColumns+`
		FROM products
		WHERE slug = $1 AND is_active`, slug)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("catalog.get_product_by_slug", "product", slug)
		}
		return nil, domain.Internal(err, "catalog.get_product_by_slug", "failed to get product")
	}
	return p, nil
}

// =============================================================================
// CATEGORIES
// =============================================================================

// ListCategoriesBySlugs returns the categories whose slug is in slugs,
// ordered by name.
func (s *CatalogService) ListCategoriesBySlugs(ctx context.Context, slugs []string) ([]domain.Category, error) {
	rows, err := s.db.Query(ctx, `SELECT `+categoryColumns+`
		FROM categories
		WHERE slug = ANY($1)
		ORDER BY name`, slugs)
	if err != nil {
		return nil, domain.Internal(err, "catalog.list_categories", "failed to list categories")
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, domain.Internal(err, "catalog.list_categories", "failed to scan category")
		}
		categories = append(categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "catalog.list_categories", "failed to list categories")
	}
	return categories, nil
}

// GetCategoryBySlug returns ENOTFOUND when no category has the slug.
func (s *CatalogService) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	row := s.db.QueryRow(ctx, `SELECT `+categoryColumns+`
		FROM categories
		WHERE slug = $1`, slug)

	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("catalog.get_category", "category", slug)
		}
		return nil, domain.Internal(err, "catalog.get_category", "failed to get category")
	}
	return c, nil
}

// =============================================================================
// HERO
// =============================================================================

// GetActiveHero returns the most recently created active hero section.
func (s *CatalogService) GetActiveHero(ctx context.Context) (*domain.HeroSection, error) {
	var h domain.HeroSection
	err := s.db.QueryRow(ctx, `SELECT id::text, title, subtitle, background_image_url,
			primary_button_text, primary_button_link, secondary_button_text, secondary_button_link
		FROM hero_sections
		WHERE is_active
		ORDER BY created_at DESC
		LIMIT 1`).Scan(
		&h.ID, &h.Title, &h.Subtitle, &h.BackgroundImageURL,
		&h.PrimaryButtonText, &h.PrimaryButtonLink, &h.SecondaryButtonText, &h.SecondaryButtonLink,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("catalog.get_hero", "hero section", "active")
		}
		return nil, domain.Internal(err, "catalog.get_hero", "failed to get hero section")
	}
	return &h, nil
}

// =============================================================================
// Helper Functions
// =============================================================================

func collectProducts(rows pgx.Rows, op string) ([]domain.Product, error) {
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, domain.Internal(err, op, "failed to scan product")
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, op, "failed to read products")
	}
	return products, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p            domain.Product
		price        string
		comparePrice *string
		description  *string
		createdAt    time.Time
	)
	if err := row.Scan(
		&p.ID, &p.CategoryID, &p.Slug, &p.Name, &description,
		&price, &comparePrice, &p.Images, &p.StockQuantity, &p.IsActive, &p.IsFeatured, &createdAt,
	); err != nil {
		return nil, err
	}

	var err error
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("product %s: invalid price %q: %w", p.ID, price, err)
	}
	if comparePrice != nil {
		cp, err := decimal.NewFromString(*comparePrice)
		if err != nil {
			return nil, fmt.Errorf("product %s: invalid compare price %q: %w", p.ID, *comparePrice, err)
		}
		p.ComparePrice = &cp
	}
	if description != nil {
		p.Description = *description
	}
	p.CreatedAt = createdAt
	return &p, nil
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var (
		c           domain.Category
		description *string
		imageURL    *string
	)
	if err := row.Scan(&c.ID, &c.Slug, &c.Name, &description, &imageURL); err != nil {
		return nil, err
	}
	if description != nil {
		c.Description = *description
	}
	if imageURL != nil {
		c.ImageURL = *imageURL
	}
	return &c, nil
}
