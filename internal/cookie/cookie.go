// Package cookie provides the storefront's cookie helpers: persistent and
// session-scoped cookies, the cookie-backed cart slot and the session flag
// store used by the promotion prompt.
package cookie

import (
	"net/http"
	"strings"
	"time"
)

// Common cookie names used throughout the application.
const (
	// SessionCookieName identifies the shopper's browsing session.
	SessionCookieName = "whiffwear_session"

	// CartCookieName holds the serialized cart when CART_BACKEND=cookie.
	CartCookieName = "whiffwear_cart"

	// FlagsCookieName holds session-scoped flags. It has no Max-Age, so the
	// browser drops it when the browsing session ends.
	FlagsCookieName = "whiffwear_flags"
)

// MaxPersistentAge is the longest lifetime browsers honor for a cookie. Set
// uses it when asked for a cookie that never expires.
const MaxPersistentAge = 400 * 24 * time.Hour

// Config holds cookie configuration.
type Config struct {
	// Domain scopes cookies to a domain (e.g., "whiffwear.com"). Empty means
	// host-only cookies.
	Domain string

	// Secure determines whether cookies require HTTPS.
	// Should be true in production, false in development.
	Secure bool

	// Sealer, when set, encrypts the cart cookie so shoppers cannot edit
	// the prices stored in it.
	Sealer Sealer
}

// Sealer encrypts and authenticates cookie payloads. Both directions use
// cookie-safe text.
type Sealer interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

// NewConfig creates a new cookie configuration.
func NewConfig(domain string, secure bool) *Config {
	return &Config{
		Domain: domain,
		Secure: secure,
	}
}

// Set writes a persistent cookie that lives for maxAge. A maxAge of zero or
// less means no expiry and is capped at MaxPersistentAge.
// It replaces any Set-Cookie header already queued for the same name.
func (c *Config) Set(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	if maxAge <= 0 || maxAge > MaxPersistentAge {
		maxAge = MaxPersistentAge
	}
	c.write(w, c.build(name, value, int(maxAge.Seconds())))
}

// SetSession writes a cookie without Max-Age or Expires; browsers discard
// it when the session ends.
func (c *Config) SetSession(w http.ResponseWriter, name, value string) {
	c.write(w, c.build(name, value, 0))
}

// Clear removes a cookie by setting MaxAge to -1.
func (c *Config) Clear(w http.ResponseWriter, name string) {
	c.write(w, c.build(name, "", -1))
}

// Get retrieves a cookie value from the request.
// Returns empty string if cookie not found.
func Get(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (c *Config) build(name, value string, maxAge int) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if c.Domain != "" {
		ck.Domain = c.Domain
	}
	return ck
}

func (c *Config) write(w http.ResponseWriter, ck *http.Cookie) {
	prefix := ck.Name + "="
	headers := w.Header()
	kept := headers["Set-Cookie"][:0]
	for _, h := range headers["Set-Cookie"] {
		if !strings.HasPrefix(h, prefix) {
			kept = append(kept, h)
		}
	}
	if len(kept) == 0 {
		headers.Del("Set-Cookie")
	} else {
		headers["Set-Cookie"] = kept
	}
	http.SetCookie(w, ck)
}
