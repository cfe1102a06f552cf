package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/whiffwear/internal/domain"
	"github.com/shopspring/decimal"
)

// SchemaVersion is written into every payload. Payloads carrying any other
// version are discarded on load.
const SchemaVersion = 1

var (
	// ErrUnknownSchema is returned for payloads written by another schema version.
	ErrUnknownSchema = errors.New("unknown cart schema version")

	// ErrCorruptPayload is returned for payloads that fail to parse or validate.
	ErrCorruptPayload = errors.New("corrupt cart payload")
)

type envelope struct {
	SchemaVersion int `json:"schemaVersion"`
}

type payloadV1 struct {
	SchemaVersion       int          `json:"schemaVersion"`
	SavedAt             time.Time    `json:"savedAt"`
	Items               []lineItemV1 `json:"items"`
	AppliedDiscountCode string       `json:"appliedDiscountCode,omitempty"`
}

type lineItemV1 struct {
	ProductID      string           `json:"productId"`
	Name           string           `json:"name"`
	UnitPrice      decimal.Decimal  `json:"unitPrice"`
	CompareAtPrice *decimal.Decimal `json:"compareAtPrice,omitempty"`
	Quantity       int              `json:"quantity"`
	SelectedImage  string           `json:"selectedImage,omitempty"`
	MaxQuantity    int              `json:"maxQuantity,omitempty"`
}

// Encode serializes state with the current schema tag.
func Encode(state domain.CartState, savedAt time.Time) (string, error) {
	p := payloadV1{
		SchemaVersion:       SchemaVersion,
		SavedAt:             savedAt.UTC(),
		Items:               make([]lineItemV1, 0, len(state.Items)),
		AppliedDiscountCode: state.AppliedDiscountCode,
	}
	for _, item := range state.Items {
		p.Items = append(p.Items, lineItemV1{
			ProductID:      item.ProductID,
			Name:           item.Name,
			UnitPrice:      item.UnitPrice,
			CompareAtPrice: item.CompareAtPrice,
			Quantity:       item.Quantity,
			SelectedImage:  item.SelectedImage,
			MaxQuantity:    item.MaxQuantity,
		})
	}

	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cart payload: %w", err)
	}
	return string(b), nil
}

// Decode parses a payload written by Encode. It rejects unknown schema
// versions and payloads whose items break the cart invariants.
func Decode(raw string) (domain.CartState, time.Time, error) {
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return domain.CartState{}, time.Time{}, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
	}
	if env.SchemaVersion != SchemaVersion {
		return domain.CartState{}, time.Time{}, fmt.Errorf("%w: %d", ErrUnknownSchema, env.SchemaVersion)
	}

	var p payloadV1
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return domain.CartState{}, time.Time{}, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
	}

	state := domain.CartState{AppliedDiscountCode: p.AppliedDiscountCode}
	seen := make(map[string]struct{}, len(p.Items))
	for i, item := range p.Items {
		switch {
		case item.ProductID == "":
			return domain.CartState{}, time.Time{}, fmt.Errorf("%w: item %d has no product id", ErrCorruptPayload, i)
		case item.Quantity < 1:
			return domain.CartState{}, time.Time{}, fmt.Errorf("%w: item %d has quantity %d", ErrCorruptPayload, i, item.Quantity)
		case item.UnitPrice.IsNegative():
			return domain.CartState{}, time.Time{}, fmt.Errorf("%w: item %d has negative price", ErrCorruptPayload, i)
		}
		if _, dup := seen[item.ProductID]; dup {
			return domain.CartState{}, time.Time{}, fmt.Errorf("%w: duplicate product %s", ErrCorruptPayload, item.ProductID)
		}
		seen[item.ProductID] = struct{}{}

		state.Items = append(state.Items, domain.LineItem{
			ProductID:      item.ProductID,
			Name:           item.Name,
			UnitPrice:      item.UnitPrice,
			CompareAtPrice: item.CompareAtPrice,
			Quantity:       item.Quantity,
			SelectedImage:  item.SelectedImage,
			MaxQuantity:    item.MaxQuantity,
		})
	}

	return state, p.SavedAt, nil
}
