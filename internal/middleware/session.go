package middleware

import (
	"net/http"
	"time"

	"github.com/dukerupert/whiffwear/internal/cookie"
	"github.com/dukerupert/whiffwear/internal/domain"
)

// Session makes sure every request carries a session id cookie and stores
// the id in the request context. The cookie lives as long as a persisted cart.
func Session(cfg *cookie.Config, maxAge time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := cfg.EnsureSessionID(w, r, maxAge)
			ctx := domain.WithSessionID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
