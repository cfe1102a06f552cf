// Package events hands checked-out carts to order submission.
package events

import (
	"time"

	"github.com/dukerupert/whiffwear/internal/cart"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	CartCheckedOutEventName    = "CartCheckedOut"
	CartCheckedOutEventVersion = 1
	CartCheckedOutSchemaPath   = "contracts/events/cart/CartCheckedOut.v1.enveloped.schema.json"
	StorefrontProducer         = "whiffwear-storefront"
)

// EventEnvelope wraps every published event.
type EventEnvelope struct {
	EventName     string                `json:"eventName"`
	EventVersion  int                   `json:"eventVersion"`
	EventID       string                `json:"eventId"`
	CorrelationID string                `json:"correlationId,omitempty"`
	Producer      string                `json:"producer"`
	PartitionKey  string                `json:"partitionKey"`
	Sequence      int64                 `json:"sequence"`
	OccurredAt    time.Time             `json:"occurredAt"`
	Schema        string                `json:"schema"`
	Payload       CartCheckedOutPayload `json:"payload"`
}

// CartCheckedOutPayload carries amounts as decimal strings in EGP.
type CartCheckedOutPayload struct {
	CartID         string               `json:"cartId"`
	Items          []CartCheckedOutItem `json:"items"`
	Subtotal       decimal.Decimal      `json:"subtotal"`
	DiscountAmount decimal.Decimal      `json:"discountAmount"`
	TotalAmount    decimal.Decimal      `json:"totalAmount"`
	DiscountCode   string               `json:"discountCode,omitempty"`
	Currency       string               `json:"currency"`
	Timestamp      time.Time            `json:"timestamp"`
}

type CartCheckedOutItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// EnvelopeOptions overrides generated envelope fields.
type EnvelopeOptions struct {
	Sequence      int64
	Producer      string
	CorrelationID string
	EventID       string
	OccurredAt    time.Time
}

// BuildCartCheckedOutEvent wraps a checkout in a version 1 envelope
// partitioned by cart id.
func BuildCartCheckedOutEvent(c cart.Checkout, opts EnvelopeOptions) EventEnvelope {
	eventID := opts.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	occurredAt := opts.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = c.CheckedOutAt
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	producer := opts.Producer
	if producer == "" {
		producer = StorefrontProducer
	}

	payload := CartCheckedOutPayload{
		CartID:         c.CartID,
		Items:          make([]CartCheckedOutItem, 0, len(c.Items)),
		Subtotal:       c.Totals.Subtotal,
		DiscountAmount: c.Totals.DiscountAmount,
		TotalAmount:    c.Totals.Total,
		DiscountCode:   c.AppliedDiscountCode,
		Currency:       "EGP",
		Timestamp:      occurredAt,
	}
	for _, it := range c.Items {
		payload.Items = append(payload.Items, CartCheckedOutItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.UnitPrice,
		})
	}

	return EventEnvelope{
		EventName:     CartCheckedOutEventName,
		EventVersion:  CartCheckedOutEventVersion,
		EventID:       eventID,
		CorrelationID: opts.CorrelationID,
		Producer:      producer,
		PartitionKey:  c.CartID,
		Sequence:      opts.Sequence,
		OccurredAt:    occurredAt,
		Schema:        CartCheckedOutSchemaPath,
		Payload:       payload,
	}
}
