package storefront

import (
	"errors"
	"net/http"
	"time"

	"github.com/dukerupert/whiffwear/internal/cookie"
	"github.com/dukerupert/whiffwear/internal/domain"
)

// BaseTemplateData returns common data for all templates
func BaseTemplateData(title string, cartCount int) map[string]any {
	return map[string]any{
		"Title":     title,
		"Year":      time.Now().Year(),
		"CartCount": cartCount,
	}
}

// isHTMX reports whether the request came from an htmx swap.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// saveError turns a failed cart write into a shopper-facing error.
func saveError(err error) error {
	if errors.Is(err, cookie.ErrCartTooLarge) {
		return domain.WrapError(err, domain.EINVALID, "cart.save", "Your cart is too large to save. Remove some items and try again.")
	}
	return err
}
