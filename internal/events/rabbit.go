package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/dukerupert/whiffwear/internal/cart"
	"github.com/dukerupert/whiffwear/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange           = "storefront.events"
	CartCheckedOutRoutingKey = "cart.checkedout.v1"
)

// Channel is the part of *amqp.Channel the publisher uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

var _ Channel = (*amqp.Channel)(nil)

// Dial connects to RabbitMQ.
func Dial(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return conn, nil
}

// RabbitPublisher publishes CartCheckedOut events to the events exchange.
type RabbitPublisher struct {
	ch       Channel
	logger   *slog.Logger
	sequence atomic.Int64
}

var _ cart.Handoff = (*RabbitPublisher)(nil)

// NewRabbitPublisher declares the durable topic exchange and returns a
// publisher over ch.
func NewRabbitPublisher(ch Channel, logger *slog.Logger) (*RabbitPublisher, error) {
	if err := ch.ExchangeDeclare(EventsExchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", EventsExchange, err)
	}
	return &RabbitPublisher{ch: ch, logger: logger}, nil
}

// HandOff publishes the checkout as a persistent JSON message.
func (p *RabbitPublisher) HandOff(ctx context.Context, c cart.Checkout) error {
	env := BuildCartCheckedOutEvent(c, EnvelopeOptions{
		Sequence:      p.sequence.Add(1),
		CorrelationID: domain.RequestIDFromContext(ctx),
	})

	body, err := json.Marshal(env)
	if err != nil {
		return domain.Internal(err, "events.cart_checked_out", "failed to encode event")
	}

	err = p.ch.PublishWithContext(ctx, EventsExchange, CartCheckedOutRoutingKey, false, false, amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     env.EventID,
		CorrelationId: env.CorrelationID,
		Timestamp:     env.OccurredAt,
		Type:          env.EventName,
		Body:          body,
	})
	if err != nil {
		return domain.Unavailable(err, "events.cart_checked_out", "order submission is unavailable")
	}

	p.logger.Info("cart checked out",
		slog.String("event_id", env.EventID),
		slog.String("cart_id", c.CartID),
		slog.Int("items", len(c.Items)),
		slog.String("total", c.Totals.Total.String()),
	)
	return nil
}

// LogHandoff accepts every checkout and only logs it. It is used when no
// broker is configured.
type LogHandoff struct {
	Logger *slog.Logger
}

var _ cart.Handoff = LogHandoff{}

func (h LogHandoff) HandOff(_ context.Context, c cart.Checkout) error {
	h.Logger.Info("cart checked out without broker",
		slog.String("cart_id", c.CartID),
		slog.Int("items", len(c.Items)),
		slog.String("total", c.Totals.Total.String()),
		slog.String("discount_code", c.AppliedDiscountCode),
	)
	return nil
}
