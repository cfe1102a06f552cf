package persistence

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dukerupert/whiffwear/internal/domain"
)

// DefaultRetention is how long a saved cart stays loadable after its last write.
const DefaultRetention = 30 * 24 * time.Hour

// Restore failure reasons passed to the failure hook.
const (
	ReasonReadFailed    = "read_failed"
	ReasonCorrupt       = "corrupt"
	ReasonUnknownSchema = "unknown_schema"
	ReasonExpired       = "expired"
)

// Adapter saves and loads CartState through a Slot.
type Adapter struct {
	slot      Slot
	retention time.Duration
	now       func() time.Time
	logger    *slog.Logger
	onFailure func(reason string)
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithRetention sets the retention window. Zero disables expiry.
func WithRetention(d time.Duration) AdapterOption {
	return func(a *Adapter) { a.retention = d }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) AdapterOption {
	return func(a *Adapter) { a.now = now }
}

// WithLogger sets the logger used for recovered load failures.
func WithLogger(logger *slog.Logger) AdapterOption {
	return func(a *Adapter) { a.logger = logger }
}

// WithFailureHook registers a callback invoked whenever Load resets the cart.
func WithFailureHook(fn func(reason string)) AdapterOption {
	return func(a *Adapter) { a.onFailure = fn }
}

// NewAdapter creates an adapter over slot.
func NewAdapter(slot Slot, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		slot:      slot,
		retention: DefaultRetention,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Save writes state to the slot. An empty cart clears the slot instead.
// Cost is proportional to the number of line items.
func (a *Adapter) Save(ctx context.Context, state domain.CartState) error {
	if state.IsEmpty() {
		if err := a.slot.Clear(ctx); err != nil {
			return domain.Internal(err, "cart.save", "failed to clear saved cart")
		}
		return nil
	}

	raw, err := Encode(state, a.now())
	if err != nil {
		return domain.Internal(err, "cart.save", "failed to encode cart")
	}
	if err := a.slot.Write(ctx, raw); err != nil {
		return domain.Internal(err, "cart.save", "failed to save cart")
	}
	return nil
}

// Load reads the saved cart. Absent, unreadable, corrupt, foreign-schema and
// expired payloads all yield an empty cart; Load never fails.
func (a *Adapter) Load(ctx context.Context) domain.CartState {
	raw, ok, err := a.slot.Read(ctx)
	if err != nil {
		a.fail(ctx, ReasonReadFailed, err, false)
		return domain.CartState{}
	}
	if !ok || raw == "" {
		return domain.CartState{}
	}

	state, savedAt, err := Decode(raw)
	if err != nil {
		reason := ReasonCorrupt
		if errors.Is(err, ErrUnknownSchema) {
			reason = ReasonUnknownSchema
		}
		a.fail(ctx, reason, err, true)
		return domain.CartState{}
	}

	if a.retention > 0 && !savedAt.IsZero() && a.now().Sub(savedAt) > a.retention {
		a.fail(ctx, ReasonExpired, nil, true)
		return domain.CartState{}
	}

	return state
}

func (a *Adapter) fail(ctx context.Context, reason string, err error, clear bool) {
	if reason == ReasonExpired {
		a.logger.InfoContext(ctx, "saved cart expired, starting empty", "retention", a.retention)
	} else {
		a.logger.WarnContext(ctx, "saved cart discarded, starting empty", "reason", reason, "error", err)
	}
	if clear {
		if cerr := a.slot.Clear(ctx); cerr != nil {
			a.logger.WarnContext(ctx, "failed to clear discarded cart", "error", cerr)
		}
	}
	if a.onFailure != nil {
		a.onFailure(reason)
	}
}
