package cookie

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// MaxCartCookieBytes bounds the encoded cart so the cookie stays under the
// 4KB browser limit together with its attributes.
const MaxCartCookieBytes = 3800

// ErrCartTooLarge is returned when the cart does not fit in a cookie.
var ErrCartTooLarge = errors.New("cart too large for cookie storage")

// CartSlot stores the serialized cart in a cookie of the current request.
// A write is visible to later reads in the same request.
type CartSlot struct {
	cfg     *Config
	w       http.ResponseWriter
	r       *http.Request
	name    string
	maxAge  time.Duration
	value   string
	present bool
	touched bool
}

// NewCartSlot binds a cart slot to one request/response pair.
func NewCartSlot(cfg *Config, w http.ResponseWriter, r *http.Request, maxAge time.Duration) *CartSlot {
	return &CartSlot{
		cfg:    cfg,
		w:      w,
		r:      r,
		name:   CartCookieName,
		maxAge: maxAge,
	}
}

// Read returns the decoded cookie value.
func (s *CartSlot) Read(_ context.Context) (string, bool, error) {
	if s.touched {
		return s.value, s.present, nil
	}

	raw := Get(s.r, s.name)
	if raw == "" {
		return "", false, nil
	}
	b, err := s.decode(raw)
	if err != nil {
		// Undecodable or tampered cookies surface as a corrupt payload so
		// the adapter resets the cart.
		return raw, true, nil
	}
	return string(b), true, nil
}

// Write encodes value into the cart cookie.
func (s *CartSlot) Write(_ context.Context, value string) error {
	encoded, err := s.encode(value)
	if err != nil {
		return err
	}
	if len(encoded) > MaxCartCookieBytes {
		return fmt.Errorf("%w: %d bytes", ErrCartTooLarge, len(encoded))
	}
	s.cfg.Set(s.w, s.name, encoded, s.maxAge)
	s.value, s.present, s.touched = value, true, true
	return nil
}

// Clear expires the cart cookie.
func (s *CartSlot) Clear(_ context.Context) error {
	s.cfg.Clear(s.w, s.name)
	s.value, s.present, s.touched = "", false, true
	return nil
}

func (s *CartSlot) encode(value string) (string, error) {
	if s.cfg.Sealer == nil {
		return base64.RawURLEncoding.EncodeToString([]byte(value)), nil
	}
	sealed, err := s.cfg.Sealer.Encrypt([]byte(value))
	if err != nil {
		return "", fmt.Errorf("seal cart cookie: %w", err)
	}
	return string(sealed), nil
}

func (s *CartSlot) decode(raw string) ([]byte, error) {
	if s.cfg.Sealer == nil {
		return base64.RawURLEncoding.DecodeString(raw)
	}
	return s.cfg.Sealer.Decrypt([]byte(raw))
}
