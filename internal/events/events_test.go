package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dukerupert/whiffwear/internal/cart"
	"github.com/dukerupert/whiffwear/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	declareErr error
	publishErr error
	declared   []string
	published  []published
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.declared = append(f.declared, name+"/"+kind)
	return f.declareErr
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleCheckout() cart.Checkout {
	return cart.Checkout{
		CartID: "cart-1",
		Items: []domain.LineItem{
			{ProductID: "p1", Name: "Aviator", UnitPrice: decimal.NewFromInt(1200), Quantity: 2},
		},
		Totals: domain.Totals{
			Subtotal:       decimal.NewFromInt(2400),
			DiscountAmount: decimal.NewFromInt(240),
			Total:          decimal.NewFromInt(2160),
			ItemCount:      2,
		},
		AppliedDiscountCode: "WW10",
		CheckedOutAt:        time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestBuildCartCheckedOutEvent(t *testing.T) {
	env := BuildCartCheckedOutEvent(sampleCheckout(), EnvelopeOptions{Sequence: 7, EventID: "evt-1"})

	assert.Equal(t, CartCheckedOutEventName, env.EventName)
	assert.Equal(t, 1, env.EventVersion)
	assert.Equal(t, "evt-1", env.EventID)
	assert.Equal(t, "cart-1", env.PartitionKey)
	assert.Equal(t, int64(7), env.Sequence)
	assert.Equal(t, StorefrontProducer, env.Producer)
	assert.Equal(t, sampleCheckout().CheckedOutAt, env.OccurredAt)
	require.Len(t, env.Payload.Items, 1)
	assert.Equal(t, 2, env.Payload.Items[0].Quantity)
	assert.Equal(t, "EGP", env.Payload.Currency)
	assert.True(t, env.Payload.TotalAmount.Equal(decimal.NewFromInt(2160)))
}

func TestBuildCartCheckedOutEvent_GeneratesID(t *testing.T) {
	a := BuildCartCheckedOutEvent(sampleCheckout(), EnvelopeOptions{})
	b := BuildCartCheckedOutEvent(sampleCheckout(), EnvelopeOptions{})

	assert.NotEmpty(t, a.EventID)
	assert.NotEqual(t, a.EventID, b.EventID)
}

func TestRabbitPublisher_HandOff(t *testing.T) {
	ch := &fakeChannel{}
	pub, err := NewRabbitPublisher(ch, testLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{EventsExchange + "/topic"}, ch.declared)

	ctx := domain.WithRequestID(context.Background(), "req-9")
	require.NoError(t, pub.HandOff(ctx, sampleCheckout()))
	require.NoError(t, pub.HandOff(ctx, sampleCheckout()))

	require.Len(t, ch.published, 2)
	first := ch.published[0]
	assert.Equal(t, EventsExchange, first.exchange)
	assert.Equal(t, CartCheckedOutRoutingKey, first.key)
	assert.Equal(t, "application/json", first.msg.ContentType)
	assert.Equal(t, amqp.Persistent, first.msg.DeliveryMode)
	assert.Equal(t, "req-9", first.msg.CorrelationId)

	var env EventEnvelope
	require.NoError(t, json.Unmarshal(first.msg.Body, &env))
	assert.Equal(t, "cart-1", env.Payload.CartID)
	assert.Equal(t, "WW10", env.Payload.DiscountCode)
	assert.True(t, env.Payload.DiscountAmount.Equal(decimal.NewFromInt(240)))
	assert.Equal(t, int64(1), env.Sequence)

	var second EventEnvelope
	require.NoError(t, json.Unmarshal(ch.published[1].msg.Body, &second))
	assert.Equal(t, int64(2), second.Sequence)
}

func TestRabbitPublisher_PublishFailureIsUnavailable(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("channel closed")}
	pub, err := NewRabbitPublisher(ch, testLogger())
	require.NoError(t, err)

	err = pub.HandOff(context.Background(), sampleCheckout())

	assert.Equal(t, domain.EUNAVAIL, domain.ErrorCode(err))
}

func TestNewRabbitPublisher_DeclareFailure(t *testing.T) {
	_, err := NewRabbitPublisher(&fakeChannel{declareErr: errors.New("access refused")}, testLogger())

	assert.ErrorContains(t, err, EventsExchange)
}

func TestLogHandoff_Accepts(t *testing.T) {
	assert.NoError(t, LogHandoff{Logger: testLogger()}.HandOff(context.Background(), sampleCheckout()))
}
