package telemetry

import (
	"github.com/dukerupert/whiffwear/internal/cart"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// BusinessMetrics holds Prometheus metrics for storefront observability.
type BusinessMetrics struct {
	// Product engagement
	ProductViews *prometheus.CounterVec

	// Cart
	cartItemsAdded   prometheus.Counter
	cartUpdated      *prometheus.CounterVec
	cartCleared      prometheus.Counter
	cartValue        prometheus.Histogram
	discountsApplied *prometheus.CounterVec
	RestoreFailures  *prometheus.CounterVec

	// Promotion
	PromotionsShown   prometheus.Counter
	PromotionOutcomes *prometheus.CounterVec

	// Checkout
	CheckoutHandoffs *prometheus.CounterVec
}

var _ cart.Observer = (*BusinessMetrics)(nil)

// NewBusinessMetrics creates business metrics registered with reg.
// A nil reg uses the default Prometheus registerer.
func NewBusinessMetrics(namespace string, reg prometheus.Registerer) *BusinessMetrics {
	if namespace == "" {
		namespace = "whiffwear"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	subsystem := "business"

	return &BusinessMetrics{
		// =======================================================================
		// Product Engagement
		// =======================================================================
		ProductViews: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "product_views_total",
				Help:      "Total product detail page views",
			},
			[]string{"product_slug"},
		),

		// =======================================================================
		// Cart
		// =======================================================================
		cartItemsAdded: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_items_added_total",
				Help:      "Total units added to carts",
			},
		),
		cartUpdated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_updates_total",
				Help:      "Total cart mutations",
			},
			[]string{"operation"}, // operation: update_quantity, remove_item
		),
		cartCleared: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_cleared_total",
				Help:      "Total carts emptied",
			},
		),
		cartValue: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_value_egp",
				Help:      "Cart total after each mutation, in EGP",
				Buckets:   []float64{0, 250, 500, 1000, 2500, 5000, 10000, 25000},
			},
		),
		discountsApplied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "discount_codes_applied_total",
				Help:      "Total discount code submissions",
			},
			[]string{"result"}, // result: recognized, unknown
		),
		RestoreFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_restore_failures_total",
				Help:      "Persisted carts discarded on load",
			},
			[]string{"reason"}, // reason: read_failed, corrupt, unknown_schema, expired
		),

		// =======================================================================
		// Promotion
		// =======================================================================
		PromotionsShown: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "promotions_shown_total",
				Help:      "Total promotional prompts displayed",
			},
		),
		PromotionOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "promotion_outcomes_total",
				Help:      "Promotional prompts closed by the shopper",
			},
			[]string{"outcome"}, // outcome: dismissed, accepted
		),

		// =======================================================================
		// Checkout
		// =======================================================================
		CheckoutHandoffs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkout_handoffs_total",
				Help:      "Carts handed to order submission",
			},
			[]string{"result"}, // result: success, failure
		),
	}
}

func (m *BusinessMetrics) ItemAdded(_ string, quantity int) {
	m.cartItemsAdded.Add(float64(quantity))
}

func (m *BusinessMetrics) CartUpdated(op string) {
	m.cartUpdated.WithLabelValues(op).Inc()
}

func (m *BusinessMetrics) CartCleared() {
	m.cartCleared.Inc()
}

func (m *BusinessMetrics) DiscountApplied(recognized bool) {
	result := "unknown"
	if recognized {
		result = "recognized"
	}
	m.discountsApplied.WithLabelValues(result).Inc()
}

func (m *BusinessMetrics) CartValue(total decimal.Decimal) {
	m.cartValue.Observe(total.InexactFloat64())
}

// RestoreFailed is a persistence failure hook.
func (m *BusinessMetrics) RestoreFailed(reason string) {
	m.RestoreFailures.WithLabelValues(reason).Inc()
}

// HandoffResult records one checkout attempt.
func (m *BusinessMetrics) HandoffResult(err error) {
	if err != nil {
		m.CheckoutHandoffs.WithLabelValues("failure").Inc()
		return
	}
	m.CheckoutHandoffs.WithLabelValues("success").Inc()
}
