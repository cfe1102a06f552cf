package storefront

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/whiffwear/internal/domain"
	"github.com/dukerupert/whiffwear/internal/handler"
	"github.com/dukerupert/whiffwear/internal/middleware"
	"github.com/dukerupert/whiffwear/internal/telemetry"
)

// featuredLimit is how many featured products the home page shows.
const featuredLimit = 4

// HomeHandler handles the storefront homepage
type HomeHandler struct {
	catalog  domain.CatalogService
	carts    *Carts
	renderer *handler.Renderer
}

// NewHomeHandler creates a new home handler
func NewHomeHandler(catalog domain.CatalogService, carts *Carts, renderer *handler.Renderer) *HomeHandler {
	return &HomeHandler{catalog: catalog, carts: carts, renderer: renderer}
}

// ServeHTTP handles GET /
func (h *HomeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := middleware.GetLogger(ctx)

	hero := domain.DefaultHero
	if active, err := h.catalog.GetActiveHero(ctx); err == nil {
		hero = *active
	} else if !domain.IsCode(err, domain.ENOTFOUND) {
		logger.Warn("failed to load hero section", slog.Any("error", err))
	}

	featured, err := h.catalog.ListFeaturedProducts(ctx, featuredLimit)
	if err != nil {
		logger.Error("failed to load featured products", slog.Any("error", err))
		featured = nil
	}

	categories, err := h.catalog.ListCategoriesBySlugs(ctx, domain.HomeCategorySlugs)
	if err != nil {
		logger.Error("failed to load home categories", slog.Any("error", err))
		categories = nil
	}

	data := BaseTemplateData("", h.carts.Open(w, r).Totals().ItemCount)
	data["Hero"] = hero
	data["Featured"] = featured
	data["Categories"] = categories

	h.renderer.RenderHTTP(w, "storefront/home", data)
}

// ProductListHandler handles GET /products
type ProductListHandler struct {
	catalog  domain.CatalogService
	carts    *Carts
	renderer *handler.Renderer
}

// NewProductListHandler creates a new product list handler
func NewProductListHandler(catalog domain.CatalogService, carts *Carts, renderer *handler.Renderer) *ProductListHandler {
	return &ProductListHandler{catalog: catalog, carts: carts, renderer: renderer}
}

func (h *ProductListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	products, err := h.catalog.ListActiveProducts(ctx)
	if err != nil {
		middleware.GetLogger(ctx).Error("failed to list products", slog.Any("error", err))
		products = nil
	}

	data := BaseTemplateData("All Products", h.carts.Open(w, r).Totals().ItemCount)
	data["Products"] = products

	h.renderer.RenderHTTP(w, "storefront/products", data)
}

// CategoryHandler handles GET /categories/{slug}
type CategoryHandler struct {
	catalog  domain.CatalogService
	carts    *Carts
	renderer *handler.Renderer
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(catalog domain.CatalogService, carts *Carts, renderer *handler.Renderer) *CategoryHandler {
	return &CategoryHandler{catalog: catalog, carts: carts, renderer: renderer}
}

// ServeHTTP renders the category's products. Unknown slugs render the
// not-found state with a 404.
func (h *CategoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := middleware.GetLogger(ctx)
	slug := r.PathValue("slug")

	data := BaseTemplateData("Category not found", h.carts.Open(w, r).Totals().ItemCount)

	category, err := h.catalog.GetCategoryBySlug(ctx, slug)
	if err != nil {
		status := http.StatusNotFound
		if !domain.IsCode(err, domain.ENOTFOUND) {
			logger.Error("failed to load category", slog.String("slug", slug), slog.Any("error", err))
			status = http.StatusOK
		}
		h.renderer.RenderStatus(w, status, "storefront/category", data)
		return
	}

	products, err := h.catalog.ListProductsByCategory(ctx, category.ID)
	if err != nil {
		logger.Error("failed to list category products", slog.String("slug", slug), slog.Any("error", err))
		products = nil
	}

	data["Title"] = category.Name
	data["Category"] = category
	data["Products"] = products

	h.renderer.RenderHTTP(w, "storefront/category", data)
}

// ProductDetailHandler handles GET /products/{slug}
type ProductDetailHandler struct {
	catalog  domain.CatalogService
	carts    *Carts
	renderer *handler.Renderer
	metrics  *telemetry.BusinessMetrics
}

// NewProductDetailHandler creates a new product detail handler. metrics may be nil.
func NewProductDetailHandler(catalog domain.CatalogService, carts *Carts, renderer *handler.Renderer, metrics *telemetry.BusinessMetrics) *ProductDetailHandler {
	return &ProductDetailHandler{catalog: catalog, carts: carts, renderer: renderer, metrics: metrics}
}

func (h *ProductDetailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := r.PathValue("slug")

	product, err := h.catalog.GetProductBySlug(ctx, slug)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.ProductViews.WithLabelValues(product.Slug).Inc()
	}

	data := BaseTemplateData(product.Name, h.carts.Open(w, r).Totals().ItemCount)
	data["Product"] = product

	h.renderer.RenderHTTP(w, "storefront/product", data)
}
