// Package cart implements the shopping cart store: the single owner of a
// session's line items and applied discount code.
package cart

import (
	"context"
	"sync"

	"github.com/dukerupert/whiffwear/internal/domain"
	"github.com/shopspring/decimal"
)

// Repository loads and saves a session's cart state.
// *persistence.Adapter is the production implementation.
type Repository interface {
	Load(ctx context.Context) domain.CartState
	Save(ctx context.Context, state domain.CartState) error
}

// Discounter resolves discount codes. *discount.Engine implements it.
type Discounter interface {
	Lookup(code string) (domain.DiscountCode, bool)
	DiscountFor(subtotal decimal.Decimal, code string) decimal.Decimal
}

// Observer receives cart events for metrics. All methods must be cheap.
type Observer interface {
	ItemAdded(productID string, quantity int)
	CartUpdated(op string)
	CartCleared()
	DiscountApplied(recognized bool)
	CartValue(total decimal.Decimal)
}

// Store is the in-memory authoritative cart for one session. Every mutation
// updates memory and then flushes to the Repository before returning, so a
// later Load is never older than the last completed mutation. A mutex keeps
// readers from observing a half-applied change.
type Store struct {
	mu        sync.Mutex
	id        string
	state     domain.CartState
	repo      Repository
	discounts Discounter
	observer  Observer
}

// Option configures a Store.
type Option func(*Store)

// WithID sets the identifier used when handing the cart off at checkout.
func WithID(id string) Option {
	return func(s *Store) { s.id = id }
}

// WithObserver registers a metrics observer.
func WithObserver(o Observer) Option {
	return func(s *Store) { s.observer = o }
}

// Open restores the cart saved in repo, or starts empty.
func Open(ctx context.Context, repo Repository, discounts Discounter, opts ...Option) *Store {
	return New(repo.Load(ctx), repo, discounts, opts...)
}

// New creates a store holding state.
func New(state domain.CartState, repo Repository, discounts Discounter, opts ...Option) *Store {
	s := &Store{
		state:     state.Clone(),
		repo:      repo,
		discounts: discounts,
		observer:  nopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compile-time check that Store implements domain.Cart.
var _ domain.Cart = (*Store)(nil)

// ID returns the cart identifier.
func (s *Store) ID() string {
	return s.id
}

// AddItem adds quantity units of p. An existing line for the same product is
// incremented instead of duplicated; the result is clamped to the line's
// stock ceiling when one is known. Non-positive quantities are ignored.
func (s *Store) AddItem(ctx context.Context, p domain.Product, quantity int) error {
	if quantity <= 0 || p.ID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state.Clone()

	var added int
	if i := s.indexOf(p.ID); i >= 0 {
		item := &s.state.Items[i]
		if item.MaxQuantity == 0 && p.StockQuantity > 0 {
			item.MaxQuantity = int(p.StockQuantity)
		}
		before := item.Quantity
		item.Quantity = clamp(item.Quantity+quantity, item.MaxQuantity)
		added = item.Quantity - before
	} else {
		item := domain.NewLineItem(p, 0)
		item.Quantity = clamp(quantity, item.MaxQuantity)
		s.state.Items = append(s.state.Items, item)
		added = item.Quantity
	}

	if err := s.flush(ctx, prev); err != nil {
		return err
	}
	if added > 0 {
		s.observer.ItemAdded(p.ID, added)
	}
	return nil
}

// UpdateQuantity sets a line's quantity. Zero or less removes the line.
// Unknown product ids are ignored.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(productID)
	if i < 0 {
		return nil
	}
	prev := s.state.Clone()

	if quantity <= 0 {
		s.removeAt(i)
	} else {
		item := &s.state.Items[i]
		item.Quantity = clamp(quantity, item.MaxQuantity)
	}

	if err := s.flush(ctx, prev); err != nil {
		return err
	}
	s.observer.CartUpdated("update")
	return nil
}

// RemoveItem deletes a line if present.
func (s *Store) RemoveItem(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(productID)
	if i < 0 {
		return nil
	}
	prev := s.state.Clone()
	s.removeAt(i)

	if err := s.flush(ctx, prev); err != nil {
		return err
	}
	s.observer.CartUpdated("remove")
	return nil
}

// Clear empties the cart and drops the applied code.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	s.state = domain.CartState{}

	if err := s.flush(ctx, prev); err != nil {
		return err
	}
	s.observer.CartCleared()
	return nil
}

// ApplyDiscountCode normalizes code and stores it when non-empty, replacing
// any previous code. Codes missing from the discount table are still stored
// but take nothing off the total.
func (s *Store) ApplyDiscountCode(ctx context.Context, code string) (bool, error) {
	code = domain.NormalizeDiscountCode(code)
	if code == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state.Clone()
	s.state.AppliedDiscountCode = code

	if err := s.flush(ctx, prev); err != nil {
		return false, err
	}
	_, recognized := s.discounts.Lookup(code)
	s.observer.DiscountApplied(recognized)
	return true, nil
}

// Totals derives subtotal, discount, total and item count from the current state.
func (s *Store) Totals() domain.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals()
}

// State returns a copy of the current state.
func (s *Store) State() domain.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Store) totals() domain.Totals {
	t := domain.Totals{
		Subtotal:       decimal.Zero,
		DiscountAmount: decimal.Zero,
		DiscountCode:   s.state.AppliedDiscountCode,
	}
	for _, item := range s.state.Items {
		t.Subtotal = t.Subtotal.Add(item.LineTotal())
		t.ItemCount += item.Quantity
	}

	if t.DiscountCode != "" {
		_, t.DiscountRecognized = s.discounts.Lookup(t.DiscountCode)
		t.DiscountAmount = s.discounts.DiscountFor(t.Subtotal, t.DiscountCode)
	}

	t.Total = t.Subtotal.Sub(t.DiscountAmount)
	if t.Total.IsNegative() {
		t.Total = decimal.Zero
	}
	return t
}

// flush writes the current state through to the repository. When the write
// fails the state is rolled back to prev so memory never holds a change the
// slot does not.
func (s *Store) flush(ctx context.Context, prev domain.CartState) error {
	if err := s.repo.Save(ctx, s.state); err != nil {
		s.state = prev
		return err
	}
	s.observer.CartValue(s.totals().Total)
	return nil
}

func (s *Store) indexOf(productID string) int {
	for i, item := range s.state.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) removeAt(i int) {
	s.state.Items = append(s.state.Items[:i], s.state.Items[i+1:]...)
	if len(s.state.Items) == 0 {
		s.state.Items = nil
	}
}

func clamp(quantity, ceiling int) int {
	if ceiling > 0 && quantity > ceiling {
		return ceiling
	}
	return quantity
}

type nopObserver struct{}

func (nopObserver) ItemAdded(string, int)     {}
func (nopObserver) CartUpdated(string)        {}
func (nopObserver) CartCleared()              {}
func (nopObserver) DiscountApplied(bool)      {}
func (nopObserver) CartValue(decimal.Decimal) {}
