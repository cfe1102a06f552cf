package cart

import (
	"context"
	"time"

	"github.com/dukerupert/whiffwear/internal/domain"
)

// Checkout is the finalized cart handed to order submission.
type Checkout struct {
	CartID              string
	Items               []domain.LineItem
	Totals              domain.Totals
	AppliedDiscountCode string
	CheckedOutAt        time.Time
}

// Handoff receives finalized carts. Payment, order creation and inventory
// reservation all happen on the other side of it.
type Handoff interface {
	HandOff(ctx context.Context, c Checkout) error
}

// Checkout snapshots the cart, passes it to h and clears the cart once h
// accepts it. A failed handoff leaves the cart untouched.
func (s *Store) Checkout(ctx context.Context, h Handoff) (*Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.state.Items) == 0 {
		return nil, domain.Invalid("cart.checkout", "Your cart is empty")
	}

	snapshot := s.state.Clone()
	c := &Checkout{
		CartID:              s.id,
		Items:               snapshot.Items,
		Totals:              s.totals(),
		AppliedDiscountCode: snapshot.AppliedDiscountCode,
		CheckedOutAt:        time.Now().UTC(),
	}

	if err := h.HandOff(ctx, *c); err != nil {
		return nil, domain.WrapError(err, domain.ErrorCode(err), "cart.checkout", "We could not submit your order. Please try again.")
	}

	// The order is already handed off, so the cart stays cleared in memory
	// even when the cleared state cannot be saved.
	s.state = domain.CartState{}
	s.observer.CartCleared()
	if err := s.repo.Save(ctx, s.state); err != nil {
		return c, err
	}
	s.observer.CartValue(s.totals().Total)
	return c, nil
}
