package domain

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CART DOMAIN TYPES
// =============================================================================

// LineItem is one row of the cart. Name, prices and image are copied from the
// catalog when the product is added and never refreshed afterwards.
type LineItem struct {
	ProductID      string
	Name           string
	UnitPrice      decimal.Decimal
	CompareAtPrice *decimal.Decimal
	Quantity       int
	SelectedImage  string
	// MaxQuantity is the stock ceiling seen at add time; 0 means unknown.
	MaxQuantity int
}

// LineTotal returns UnitPrice × Quantity.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// NewLineItem snapshots a catalog product into a line item of the given quantity.
func NewLineItem(p Product, quantity int) LineItem {
	item := LineItem{
		ProductID:     p.ID,
		Name:          p.Name,
		UnitPrice:     p.Price,
		Quantity:      quantity,
		SelectedImage: p.PrimaryImage(),
	}
	if p.ComparePrice != nil {
		compare := *p.ComparePrice
		item.CompareAtPrice = &compare
	}
	if p.StockQuantity > 0 {
		item.MaxQuantity = int(p.StockQuantity)
	}
	return item
}

// CartState is the persisted part of a cart: ordered line items and at most one
// applied discount code. Totals are derived, never stored.
type CartState struct {
	Items               []LineItem
	AppliedDiscountCode string
}

// Clone returns a deep copy so readers never share slices with the store.
func (s CartState) Clone() CartState {
	out := CartState{AppliedDiscountCode: s.AppliedDiscountCode}
	if len(s.Items) > 0 {
		out.Items = make([]LineItem, len(s.Items))
		for i, item := range s.Items {
			if item.CompareAtPrice != nil {
				compare := *item.CompareAtPrice
				item.CompareAtPrice = &compare
			}
			out.Items[i] = item
		}
	}
	return out
}

// IsEmpty reports whether the cart has neither items nor a code.
func (s CartState) IsEmpty() bool {
	return len(s.Items) == 0 && s.AppliedDiscountCode == ""
}

// Totals are computed from CartState on every read.
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
	ItemCount      int

	// DiscountCode echoes the applied code; DiscountRecognized is false when
	// the code is stored but unknown to the discount table.
	DiscountCode       string
	DiscountRecognized bool
}

// =============================================================================
// DISCOUNTS
// =============================================================================

// DiscountKind selects how a code's value is applied.
type DiscountKind string

const (
	// DiscountPercentage takes Value (a fraction such as 0.10) of the subtotal.
	DiscountPercentage DiscountKind = "percentage"
	// DiscountFixed takes Value off the subtotal, capped at the subtotal.
	DiscountFixed DiscountKind = "fixed"
)

// DiscountCode is an entry of the static discount table.
type DiscountCode struct {
	Code  string
	Kind  DiscountKind
	Value decimal.Decimal
}

// NormalizeDiscountCode trims and uppercases a shopper-entered code.
func NormalizeDiscountCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Cart is the per-session cart store consumed by every page.
type Cart interface {
	AddItem(ctx context.Context, p Product, quantity int) error
	UpdateQuantity(ctx context.Context, productID string, quantity int) error
	RemoveItem(ctx context.Context, productID string) error
	Clear(ctx context.Context) error
	ApplyDiscountCode(ctx context.Context, code string) (bool, error)
	Totals() Totals
	State() CartState
}
