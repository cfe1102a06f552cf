package cart_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dukerupert/whiffwear/internal/cart"
	"github.com/dukerupert/whiffwear/internal/discount"
	"github.com/dukerupert/whiffwear/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handoffFunc func(ctx context.Context, c cart.Checkout) error

func (f handoffFunc) HandOff(ctx context.Context, c cart.Checkout) error { return f(ctx, c) }

func TestStore_CheckoutHandsOffAndClears(t *testing.T) {
	ctx := context.Background()
	repo := &recordingRepo{}
	s := cart.New(domain.CartState{}, repo, discount.NewEngine(discount.DefaultCodes()), cart.WithID("session-42"))
	require.NoError(t, s.AddItem(ctx, product("A", "100", 0), 2))
	require.NoError(t, s.AddItem(ctx, product("B", "50", 0), 1))
	_, err := s.ApplyDiscountCode(ctx, "WW10")
	require.NoError(t, err)

	var received cart.Checkout
	c, err := s.Checkout(ctx, handoffFunc(func(_ context.Context, c cart.Checkout) error {
		received = c
		return nil
	}))

	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "session-42", received.CartID)
	assert.Len(t, received.Items, 2)
	assert.Equal(t, "WW10", received.AppliedDiscountCode)
	assert.True(t, dec("225").Equal(received.Totals.Total))
	assert.False(t, received.CheckedOutAt.IsZero())

	assert.True(t, s.State().IsEmpty())
	assert.True(t, repo.last().IsEmpty())
}

func TestStore_CheckoutFailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	require.NoError(t, s.AddItem(ctx, product("A", "100", 0), 1))

	_, err := s.Checkout(ctx, handoffFunc(func(context.Context, cart.Checkout) error {
		return domain.Unavailable(errors.New("connection refused"), "handoff.publish", "broker unavailable")
	}))

	require.Error(t, err)
	assert.Equal(t, domain.EUNAVAIL, domain.ErrorCode(err))
	assert.Len(t, s.State().Items, 1)
}

func TestStore_CheckoutEmptyCart(t *testing.T) {
	s, _ := newStore(t)

	called := false
	_, err := s.Checkout(context.Background(), handoffFunc(func(context.Context, cart.Checkout) error {
		called = true
		return nil
	}))

	assert.True(t, domain.IsCode(err, domain.EINVALID))
	assert.False(t, called)
}
