package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/dukerupert/whiffwear/internal/cart"
	"github.com/dukerupert/whiffwear/internal/domain"
	"github.com/nats-io/nats.go"
)

// CartCheckedOutSubject is the NATS subject checkouts are published on.
const CartCheckedOutSubject = EventsExchange + "." + CartCheckedOutRoutingKey

// Conn is the part of *nats.Conn the publisher uses.
type Conn interface {
	PublishMsg(m *nats.Msg) error
	FlushWithContext(ctx context.Context) error
}

var _ Conn = (*nats.Conn)(nil)

// ConnectNATS connects to a NATS server.
func ConnectNATS(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url, nats.Name("whiffwear-storefront"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}

// NATSPublisher publishes CartCheckedOut events to NATS. It waits for the
// server to acknowledge the flush so a failed handoff leaves the cart intact.
type NATSPublisher struct {
	nc       Conn
	logger   *slog.Logger
	sequence atomic.Int64
}

var _ cart.Handoff = (*NATSPublisher)(nil)

// NewNATSPublisher returns a publisher over nc.
func NewNATSPublisher(nc Conn, logger *slog.Logger) *NATSPublisher {
	return &NATSPublisher{nc: nc, logger: logger}
}

// HandOff publishes the checkout as a JSON message. The Nats-Msg-Id header
// carries the event id so JetStream streams drop duplicates.
func (p *NATSPublisher) HandOff(ctx context.Context, c cart.Checkout) error {
	env := BuildCartCheckedOutEvent(c, EnvelopeOptions{
		Sequence:      p.sequence.Add(1),
		CorrelationID: domain.RequestIDFromContext(ctx),
	})

	body, err := json.Marshal(env)
	if err != nil {
		return domain.Internal(err, "events.cart_checked_out", "failed to encode event")
	}

	msg := nats.NewMsg(CartCheckedOutSubject)
	msg.Data = body
	msg.Header.Set(nats.MsgIdHdr, env.EventID)
	msg.Header.Set("Content-Type", "application/json")
	if env.CorrelationID != "" {
		msg.Header.Set("Correlation-Id", env.CorrelationID)
	}

	if err := p.nc.PublishMsg(msg); err != nil {
		return domain.Unavailable(err, "events.cart_checked_out", "order submission is unavailable")
	}
	if err := p.nc.FlushWithContext(ctx); err != nil {
		return domain.Unavailable(err, "events.cart_checked_out", "order submission is unavailable")
	}

	p.logger.Info("cart checked out",
		slog.String("event_id", env.EventID),
		slog.String("cart_id", c.CartID),
		slog.String("subject", CartCheckedOutSubject),
		slog.String("total", c.Totals.Total.String()),
	)
	return nil
}
