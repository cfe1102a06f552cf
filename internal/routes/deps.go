package routes

import (
	"net/http"

	"github.com/dukerupert/whiffwear/internal/handler/storefront"
)

// StorefrontDeps contains dependencies for storefront routes
type StorefrontDeps struct {
	// Catalog pages
	HomeHandler          http.Handler
	ProductListHandler   http.Handler
	ProductDetailHandler http.Handler
	CategoryHandler      http.Handler

	// Cart
	CartHandler *storefront.CartHandler

	// Promotion
	PromoHandler *storefront.PromoHandler
}
