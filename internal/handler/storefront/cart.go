package storefront

import (
	"net/http"

	"github.com/dukerupert/whiffwear/internal/cart"
	"github.com/dukerupert/whiffwear/internal/domain"
	"github.com/dukerupert/whiffwear/internal/handler"
	"github.com/dukerupert/whiffwear/internal/middleware"
	"github.com/dukerupert/whiffwear/internal/telemetry"
)

// CartHandler handles all cart-related storefront routes
type CartHandler struct {
	catalog  domain.CatalogService
	carts    *Carts
	renderer *handler.Renderer
	handoff  cart.Handoff
	metrics  *telemetry.BusinessMetrics
}

// NewCartHandler creates a new cart handler. metrics may be nil.
func NewCartHandler(catalog domain.CatalogService, carts *Carts, renderer *handler.Renderer, handoff cart.Handoff, metrics *telemetry.BusinessMetrics) *CartHandler {
	return &CartHandler{
		catalog:  catalog,
		carts:    carts,
		renderer: renderer,
		handoff:  handoff,
		metrics:  metrics,
	}
}

// View handles GET /cart
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	store := h.carts.Open(w, r)
	h.renderer.RenderHTTP(w, "storefront/cart", cartData(store))
}

// Add handles POST /cart/add
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	form, err := bindAddItem(r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	productID, quantity := form.ProductID, form.Quantity

	product, err := h.catalog.GetProductByID(ctx, productID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if !product.IsActive {
		handler.ErrorResponse(w, r, domain.Invalid("cart.add", "This product is no longer available"))
		return
	}
	if !product.InStock() {
		handler.ErrorResponse(w, r, domain.Invalid("cart.add", "This product is out of stock"))
		return
	}

	store := h.carts.Open(w, r)
	if err := store.AddItem(ctx, *product, quantity); err != nil {
		handler.ErrorResponse(w, r, saveError(err))
		return
	}

	middleware.GetLogger(ctx).Debug("item added to cart", "product_id", product.ID, "quantity", quantity)

	if isHTMX(r) {
		h.renderer.RenderFragment(w, "cart_added", map[string]any{
			"Name":      product.Name,
			"CartCount": store.Totals().ItemCount,
		})
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// Update handles POST /cart/update. A quantity of zero or less removes the line.
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	form, err := bindUpdateItem(r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	store := h.carts.Open(w, r)
	if err := store.UpdateQuantity(r.Context(), form.ProductID, form.Quantity); err != nil {
		handler.ErrorResponse(w, r, saveError(err))
		return
	}
	h.respond(w, r, store)
}

// Remove handles POST /cart/remove
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	form, err := bindRemoveItem(r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	store := h.carts.Open(w, r)
	if err := store.RemoveItem(r.Context(), form.ProductID); err != nil {
		handler.ErrorResponse(w, r, saveError(err))
		return
	}
	h.respond(w, r, store)
}

// ApplyDiscount handles POST /cart/discount. Unknown codes are kept on the
// cart and reported as not valid; a blank code changes nothing.
func (h *CartHandler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	form, err := bindDiscount(r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	store := h.carts.Open(w, r)
	if _, err := store.ApplyDiscountCode(r.Context(), form.Code); err != nil {
		handler.ErrorResponse(w, r, saveError(err))
		return
	}
	h.respond(w, r, store)
}

// Clear handles POST /cart/clear
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	store := h.carts.Open(w, r)
	if err := store.Clear(r.Context()); err != nil {
		handler.ErrorResponse(w, r, saveError(err))
		return
	}
	h.respond(w, r, store)
}

// Checkout handles POST /cart/checkout. The cart is cleared only once the
// handoff accepts it.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	store := h.carts.Open(w, r)

	attempted := len(store.State().Items) > 0
	checkout, err := store.Checkout(ctx, h.handoff)
	if h.metrics != nil && attempted {
		h.metrics.HandoffResult(err)
	}
	if err != nil && checkout == nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if err != nil {
		// Handed off but the emptied cart could not be saved.
		middleware.GetLogger(ctx).Warn("checkout succeeded but cart was not cleared", "error", err)
	}

	data := BaseTemplateData("Order submitted", 0)
	data["Checkout"] = checkout
	h.renderer.RenderHTTP(w, "storefront/checkout_complete", data)
}

// respond re-renders the cart summary for htmx or redirects back to the cart.
func (h *CartHandler) respond(w http.ResponseWriter, r *http.Request, store *cart.Store) {
	if isHTMX(r) {
		h.renderer.RenderFragment(w, "cart_summary", cartData(store))
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func cartData(store *cart.Store) map[string]any {
	state := store.State()
	totals := store.Totals()

	data := BaseTemplateData("Your Cart", totals.ItemCount)
	data["Items"] = state.Items
	data["Totals"] = totals
	return data
}
