package storefront

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/dukerupert/whiffwear/internal/cookie"
	"github.com/dukerupert/whiffwear/internal/discount"
	"github.com/dukerupert/whiffwear/internal/domain"
	"github.com/dukerupert/whiffwear/internal/persistence"
	"github.com/dukerupert/whiffwear/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartFixture struct {
	store   *persistence.MemoryStore
	carts   *Carts
	handoff *mockHandoff
	metrics *telemetry.BusinessMetrics
	handler *CartHandler
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()
	f := &cartFixture{
		store:   persistence.NewMemoryStore(),
		handoff: &mockHandoff{},
		metrics: telemetry.NewBusinessMetrics("test", prometheus.NewRegistry()),
	}
	f.carts = NewCarts(SessionSlots(f.store.Slot), discount.NewEngine(discount.DefaultCodes()), WithObserver(f.metrics))
	f.handler = NewCartHandler(testCatalog(), f.carts, newTestRenderer(t), f.handoff, f.metrics)
	return f
}

func (f *cartFixture) state() domain.CartState {
	return f.carts.Open(httptest.NewRecorder(), sessionRequest(http.MethodGet, "/cart", nil)).State()
}

func (f *cartFixture) add(t *testing.T, productID, quantity string) {
	t.Helper()
	rec := httptest.NewRecorder()
	f.handler.Add(rec, sessionRequest(http.MethodPost, "/cart/add", url.Values{"product_id": {productID}, "quantity": {quantity}}))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
}

func TestCartHandler_Add(t *testing.T) {
	t.Run("redirects plain form posts to the cart", func(t *testing.T) {
		f := newCartFixture(t)

		rec := httptest.NewRecorder()
		f.handler.Add(rec, sessionRequest(http.MethodPost, "/cart/add", url.Values{"product_id": {"p-aviator"}}))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/cart", rec.Header().Get("Location"))

		state := f.state()
		require.Len(t, state.Items, 1)
		assert.Equal(t, "Aviator Gold", state.Items[0].Name)
		assert.Equal(t, 1, state.Items[0].Quantity)
	})

	t.Run("htmx gets a confirmation fragment", func(t *testing.T) {
		f := newCartFixture(t)

		rec := httptest.NewRecorder()
		f.handler.Add(rec, htmx(sessionRequest(http.MethodPost, "/cart/add", url.Values{"product_id": {"p-tote"}, "quantity": {"2"}})))

		assert.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Added Canvas Tote to your cart.")
		assert.Contains(t, body, `<span class="count">2</span>`)
		assert.NotContains(t, body, "<html", "fragments are not wrapped in the layout")
	})

	t.Run("repeated adds merge and clamp to stock", func(t *testing.T) {
		f := newCartFixture(t)
		f.add(t, "p-aviator", "3")
		f.add(t, "p-aviator", "4")

		state := f.state()
		require.Len(t, state.Items, 1)
		assert.Equal(t, 5, state.Items[0].Quantity)
	})

	tests := []struct {
		name       string
		form       url.Values
		wantStatus int
	}{
		{"missing product id", url.Values{}, http.StatusBadRequest},
		{"bad quantity", url.Values{"product_id": {"p-aviator"}, "quantity": {"lots"}}, http.StatusBadRequest},
		{"zero quantity", url.Values{"product_id": {"p-aviator"}, "quantity": {"0"}}, http.StatusBadRequest},
		{"unknown product", url.Values{"product_id": {"p-nope"}}, http.StatusNotFound},
		{"inactive product", url.Values{"product_id": {"p-old"}}, http.StatusBadRequest},
		{"out of stock", url.Values{"product_id": {"p-sold"}}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCartFixture(t)

			rec := httptest.NewRecorder()
			f.handler.Add(rec, sessionRequest(http.MethodPost, "/cart/add", tt.form))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Empty(t, f.state().Items)
		})
	}
}

func TestCartHandler_View(t *testing.T) {
	f := newCartFixture(t)

	rec := httptest.NewRecorder()
	f.handler.View(rec, sessionRequest(http.MethodGet, "/cart", nil))
	assert.Contains(t, rec.Body.String(), "Your cart is empty.")

	f.add(t, "p-aviator", "2")

	rec = httptest.NewRecorder()
	f.handler.View(rec, sessionRequest(http.MethodGet, "/cart", nil))

	body := rec.Body.String()
	assert.Contains(t, body, "Aviator Gold")
	assert.Contains(t, body, "5000 EGP")
	assert.Contains(t, body, `max="5"`)
}

func TestCartHandler_UpdateAndRemove(t *testing.T) {
	f := newCartFixture(t)
	f.add(t, "p-aviator", "1")
	f.add(t, "p-tote", "1")

	rec := httptest.NewRecorder()
	f.handler.Update(rec, sessionRequest(http.MethodPost, "/cart/update", url.Values{"product_id": {"p-tote"}, "quantity": {"3"}}))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 3, f.state().Items[1].Quantity)

	rec = httptest.NewRecorder()
	f.handler.Update(rec, sessionRequest(http.MethodPost, "/cart/update", url.Values{"product_id": {"p-tote"}, "quantity": {"abc"}}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	f.handler.Update(rec, htmx(sessionRequest(http.MethodPost, "/cart/update", url.Values{"product_id": {"p-tote"}, "quantity": {"0"}})))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="cart-summary"`)
	assert.NotContains(t, rec.Body.String(), "Canvas Tote")

	rec = httptest.NewRecorder()
	f.handler.Remove(rec, sessionRequest(http.MethodPost, "/cart/remove", url.Values{"product_id": {"p-aviator"}}))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, f.state().Items)

}

func TestCartHandler_ApplyDiscount(t *testing.T) {
	f := newCartFixture(t)
	f.add(t, "p-aviator", "1")

	rec := httptest.NewRecorder()
	f.handler.ApplyDiscount(rec, htmx(sessionRequest(http.MethodPost, "/cart/discount", url.Values{"code": {" ww10 "}})))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "-250 EGP")
	assert.Contains(t, body, "2250 EGP")
	assert.Equal(t, "WW10", f.state().AppliedDiscountCode)

	rec = httptest.NewRecorder()
	f.handler.ApplyDiscount(rec, htmx(sessionRequest(http.MethodPost, "/cart/discount", url.Values{"code": {"BOGUS"}})))

	body = rec.Body.String()
	assert.Contains(t, body, "Code BOGUS is not valid.")
	assert.NotContains(t, body, "-250 EGP")
	assert.Equal(t, "BOGUS", f.state().AppliedDiscountCode)
}

func TestCartHandler_Clear(t *testing.T) {
	f := newCartFixture(t)
	f.add(t, "p-aviator", "1")

	rec := httptest.NewRecorder()
	f.handler.Clear(rec, sessionRequest(http.MethodPost, "/cart/clear", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, f.state().IsEmpty())
	assert.Equal(t, 0, f.store.Len())
}

func TestCartHandler_Checkout(t *testing.T) {
	t.Run("hands off and clears the cart", func(t *testing.T) {
		f := newCartFixture(t)
		f.add(t, "p-aviator", "2")

		rec := httptest.NewRecorder()
		f.handler.Checkout(rec, sessionRequest(http.MethodPost, "/cart/checkout", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Your order has been submitted.")
		require.Len(t, f.handoff.received, 1)
		assert.Equal(t, testSession, f.handoff.received[0].CartID)
		assert.Equal(t, "5000", f.handoff.received[0].Totals.Total.String())
		assert.Empty(t, f.state().Items)
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CheckoutHandoffs.WithLabelValues("success")))
	})

	t.Run("failed handoff keeps the cart", func(t *testing.T) {
		f := newCartFixture(t)
		f.handoff.err = domain.Unavailable(errDown, "events.publish", "Order submission is unavailable")
		f.add(t, "p-aviator", "1")

		rec := httptest.NewRecorder()
		f.handler.Checkout(rec, sessionRequest(http.MethodPost, "/cart/checkout", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Len(t, f.state().Items, 1)
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CheckoutHandoffs.WithLabelValues("failure")))
	})

	t.Run("empty cart is rejected", func(t *testing.T) {
		f := newCartFixture(t)

		rec := httptest.NewRecorder()
		f.handler.Checkout(rec, sessionRequest(http.MethodPost, "/cart/checkout", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, f.handoff.received)
	})
}

func TestCookieSlots_RoundTrip(t *testing.T) {
	cfg := cookie.NewConfig("", false)
	carts := NewCarts(CookieSlots(cfg, time.Hour), discount.NewEngine(discount.DefaultCodes()))
	h := NewCartHandler(testCatalog(), carts, newTestRenderer(t), &mockHandoff{}, nil)

	rec := httptest.NewRecorder()
	h.Add(rec, sessionRequest(http.MethodPost, "/cart/add", url.Values{"product_id": {"p-tote"}}))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	next := sessionRequest(http.MethodGet, "/cart", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	state := carts.Open(httptest.NewRecorder(), next).State()
	require.Len(t, state.Items, 1)
	assert.Equal(t, "p-tote", state.Items[0].ProductID)
}

func TestCarts_RestoreFailureHook(t *testing.T) {
	store := persistence.NewMemoryStore()
	require.NoError(t, store.Slot(testSession).Write(t.Context(), "{not json"))

	var reasons []string
	carts := NewCarts(SessionSlots(store.Slot), discount.NewEngine(nil), WithRestoreFailureHook(func(reason string) {
		reasons = append(reasons, reason)
	}))

	state := carts.Open(httptest.NewRecorder(), sessionRequest(http.MethodGet, "/cart", nil)).State()

	assert.True(t, state.IsEmpty())
	assert.Equal(t, []string{"corrupt"}, reasons)
}
