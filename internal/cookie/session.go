package cookie

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// EnsureSessionID returns the shopper's session id, issuing a new one when the
// request carries none. The cookie is refreshed with maxAge either way.
func (c *Config) EnsureSessionID(w http.ResponseWriter, r *http.Request, maxAge time.Duration) string {
	id := Get(r, SessionCookieName)
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	c.Set(w, SessionCookieName, id, maxAge)
	return id
}
