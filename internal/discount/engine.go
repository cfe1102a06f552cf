// Package discount resolves discount codes against a static table and
// computes the amount taken off a cart subtotal.
package discount

import (
	"github.com/dukerupert/whiffwear/internal/domain"
	"github.com/shopspring/decimal"
)

// WholeUnits rounds discounts to whole currency units, matching how EGP
// prices are displayed in the storefront.
const WholeUnits int32 = 0

// Cents rounds discounts to two decimal places.
const Cents int32 = 2

// Engine maps (subtotal, code) to a discount amount. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	codes  map[string]domain.DiscountCode
	places int32
}

// Option configures an Engine.
type Option func(*Engine)

// WithPrecision sets the number of decimal places discounts are rounded to.
func WithPrecision(places int32) Option {
	return func(e *Engine) {
		if places >= 0 {
			e.places = places
		}
	}
}

// NewEngine builds an engine over the given code table. Codes are matched
// case-insensitively; later duplicates replace earlier ones.
func NewEngine(codes []domain.DiscountCode, opts ...Option) *Engine {
	e := &Engine{
		codes:  make(map[string]domain.DiscountCode, len(codes)),
		places: WholeUnits,
	}
	for _, c := range codes {
		c.Code = domain.NormalizeDiscountCode(c.Code)
		if c.Code == "" {
			continue
		}
		e.codes[c.Code] = c
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DefaultCodes is the storefront's code table: WW10 grants 10% off.
func DefaultCodes() []domain.DiscountCode {
	return []domain.DiscountCode{
		{Code: "WW10", Kind: domain.DiscountPercentage, Value: decimal.NewFromFloat(0.10)},
	}
}

// Lookup returns the table entry for code, if any.
func (e *Engine) Lookup(code string) (domain.DiscountCode, bool) {
	c, ok := e.codes[domain.NormalizeDiscountCode(code)]
	return c, ok
}

// DiscountFor returns the amount to subtract from subtotal for code.
// Unknown or empty codes yield zero. The result never exceeds subtotal.
func (e *Engine) DiscountFor(subtotal decimal.Decimal, code string) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}

	c, ok := e.Lookup(code)
	if !ok || !c.Value.IsPositive() {
		return decimal.Zero
	}

	var amount decimal.Decimal
	switch c.Kind {
	case domain.DiscountPercentage:
		amount = subtotal.Mul(c.Value).Round(e.places)
	case domain.DiscountFixed:
		amount = c.Value.Round(e.places)
	default:
		return decimal.Zero
	}

	return decimal.Min(amount, subtotal)
}
