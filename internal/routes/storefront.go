package routes

import (
	"github.com/dukerupert/whiffwear/internal/middleware"
	"github.com/dukerupert/whiffwear/internal/router"
)

// RegisterStorefrontRoutes registers all customer-facing storefront routes.
func RegisterStorefrontRoutes(r *router.Router, deps StorefrontDeps) {
	// Home page
	r.Get("/{$}", deps.HomeHandler.ServeHTTP)

	// Catalog browsing
	r.Get("/products", deps.ProductListHandler.ServeHTTP)
	r.Get("/products/{slug}", deps.ProductDetailHandler.ServeHTTP)
	r.Get("/categories/{slug}", deps.CategoryHandler.ServeHTTP)

	// Shopping cart
	r.Get("/cart", deps.CartHandler.View)

	forms := r.Group(middleware.MaxBodySize(middleware.SmallMaxBodySize))
	forms.Post("/cart/add", deps.CartHandler.Add)
	forms.Post("/cart/update", deps.CartHandler.Update)
	forms.Post("/cart/remove", deps.CartHandler.Remove)
	forms.Post("/cart/discount", deps.CartHandler.ApplyDiscount)
	forms.Post("/cart/clear", deps.CartHandler.Clear)
	forms.Post("/cart/checkout", deps.CartHandler.Checkout)

	// Promotion
	r.Get("/promo", deps.PromoHandler.Show)
	forms.Post("/promo/dismiss", deps.PromoHandler.Dismiss)
	forms.Post("/promo/accept", deps.PromoHandler.Accept)
}
