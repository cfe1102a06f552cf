package storefront

import (
	"net/http"
	"time"

	"github.com/dukerupert/whiffwear/internal/cart"
	"github.com/dukerupert/whiffwear/internal/cookie"
	"github.com/dukerupert/whiffwear/internal/domain"
	"github.com/dukerupert/whiffwear/internal/middleware"
	"github.com/dukerupert/whiffwear/internal/persistence"
)

// SlotFunc returns the persistence slot that holds a request's cart.
type SlotFunc func(w http.ResponseWriter, r *http.Request) persistence.Slot

// CookieSlots keeps the whole cart in the shopper's browser.
func CookieSlots(cfg *cookie.Config, retention time.Duration) SlotFunc {
	return func(w http.ResponseWriter, r *http.Request) persistence.Slot {
		return cookie.NewCartSlot(cfg, w, r, retention)
	}
}

// SessionSlots keeps carts server side, keyed by the session id cookie.
func SessionSlots[S persistence.Slot](slot func(sessionID string) S) SlotFunc {
	return func(w http.ResponseWriter, r *http.Request) persistence.Slot {
		id := domain.SessionIDFromContext(r.Context())
		if id == "" {
			id = cookie.Get(r, cookie.SessionCookieName)
		}
		return slot(id)
	}
}

// Carts opens the session's cart store for each request.
type Carts struct {
	slots     SlotFunc
	discounts cart.Discounter
	retention time.Duration
	observer  cart.Observer
	onFailure func(reason string)
}

// CartsOption configures Carts.
type CartsOption func(*Carts)

// WithRetention sets how long a saved cart stays loadable.
func WithRetention(d time.Duration) CartsOption {
	return func(c *Carts) { c.retention = d }
}

// WithObserver forwards cart events to o.
func WithObserver(o cart.Observer) CartsOption {
	return func(c *Carts) { c.observer = o }
}

// WithRestoreFailureHook is called whenever a saved cart is discarded on load.
func WithRestoreFailureHook(fn func(reason string)) CartsOption {
	return func(c *Carts) { c.onFailure = fn }
}

// NewCarts creates a cart opener over slots.
func NewCarts(slots SlotFunc, discounts cart.Discounter, opts ...CartsOption) *Carts {
	c := &Carts{
		slots:     slots,
		discounts: discounts,
		retention: persistence.DefaultRetention,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open restores the request's cart. It never fails: an unreadable cart
// opens empty.
func (c *Carts) Open(w http.ResponseWriter, r *http.Request) *cart.Store {
	ctx := r.Context()

	adapterOpts := []persistence.AdapterOption{
		persistence.WithRetention(c.retention),
		persistence.WithLogger(middleware.GetLogger(ctx)),
	}
	if c.onFailure != nil {
		adapterOpts = append(adapterOpts, persistence.WithFailureHook(c.onFailure))
	}
	repo := persistence.NewAdapter(c.slots(w, r), adapterOpts...)

	storeOpts := []cart.Option{cart.WithID(domain.SessionIDFromContext(ctx))}
	if c.observer != nil {
		storeOpts = append(storeOpts, cart.WithObserver(c.observer))
	}
	return cart.Open(ctx, repo, c.discounts, storeOpts...)
}
