package storefront

import (
	"net/http"
	"time"

	"github.com/dukerupert/whiffwear/internal/cookie"
	"github.com/dukerupert/whiffwear/internal/handler"
	"github.com/dukerupert/whiffwear/internal/middleware"
	"github.com/dukerupert/whiffwear/internal/promo"
	"github.com/dukerupert/whiffwear/internal/telemetry"
)

// PromoHandler serves the one-time promotional prompt.
//
// GET /promo is a long poll: the page requests it on load and the response
// is held until the trigger fires. Navigating away cancels the request,
// which unmounts the trigger before it fires.
type PromoHandler struct {
	offer    promo.Offer
	delay    time.Duration
	clock    promo.Clock
	cookies  *cookie.Config
	carts    *Carts
	renderer *handler.Renderer
	metrics  *telemetry.BusinessMetrics
}

// PromoOption configures a PromoHandler.
type PromoOption func(*PromoHandler)

// WithOffer replaces the default offer.
func WithOffer(o promo.Offer) PromoOption {
	return func(h *PromoHandler) { h.offer = o }
}

// WithPromoDelay sets the delay before the prompt appears.
func WithPromoDelay(d time.Duration) PromoOption {
	return func(h *PromoHandler) { h.delay = d }
}

// WithPromoClock replaces the system clock, for tests.
func WithPromoClock(c promo.Clock) PromoOption {
	return func(h *PromoHandler) { h.clock = c }
}

// WithPromoMetrics records shown prompts and outcomes.
func WithPromoMetrics(m *telemetry.BusinessMetrics) PromoOption {
	return func(h *PromoHandler) { h.metrics = m }
}

// NewPromoHandler creates a promotion handler.
func NewPromoHandler(cookies *cookie.Config, carts *Carts, renderer *handler.Renderer, opts ...PromoOption) *PromoHandler {
	h := &PromoHandler{
		offer:    promo.DefaultOffer,
		delay:    promo.DefaultDelay,
		clock:    promo.SystemClock,
		cookies:  cookies,
		carts:    carts,
		renderer: renderer,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Show handles GET /promo. It answers 204 when the session has already seen
// the offer or the request goes away first.
func (h *PromoHandler) Show(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	flags := cookie.NewSessionFlags(h.cookies, w, r)

	opts := []promo.Option{promo.WithClock(h.clock), promo.WithDelay(h.delay)}
	if h.metrics != nil {
		opts = append(opts, promo.OnShow(h.metrics.PromotionsShown.Inc))
	}
	trigger := promo.NewTrigger(flags, opts...)

	trigger.Mount()
	defer trigger.Unmount()

	if !trigger.Pending() && trigger.State() == promo.Hidden {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	select {
	case <-trigger.ShownC():
		h.renderer.RenderFragment(w, "promo_popup", map[string]any{"Offer": h.offer})
	case <-ctx.Done():
		cancelled := trigger.Unmount()
		middleware.GetLogger(ctx).Debug("promotion request ended before display", "cancelled", cancelled)
		if trigger.State() == promo.Shown {
			h.renderer.RenderFragment(w, "promo_popup", map[string]any{"Offer": h.offer})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Dismiss handles POST /promo/dismiss.
func (h *PromoHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	if h.metrics != nil {
		h.metrics.PromotionOutcomes.WithLabelValues("dismissed").Inc()
	}
	w.WriteHeader(http.StatusOK)
}

// Accept handles POST /promo/accept by applying the offer's code to the
// cart.
func (h *PromoHandler) Accept(w http.ResponseWriter, r *http.Request) {
	store := h.carts.Open(w, r)
	if _, err := store.ApplyDiscountCode(r.Context(), h.offer.Code); err != nil {
		handler.ErrorResponse(w, r, saveError(err))
		return
	}
	if h.metrics != nil {
		h.metrics.PromotionOutcomes.WithLabelValues("accepted").Inc()
	}

	if isHTMX(r) {
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/products", http.StatusSeeOther)
}
