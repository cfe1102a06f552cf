package cookie

import (
	"net/http"
	"sort"
	"strings"
)

// SessionFlags keeps boolean flags in a session cookie as a dot separated
// list of names.
type SessionFlags struct {
	cfg   *Config
	w     http.ResponseWriter
	flags map[string]bool
}

// NewSessionFlags reads the flags cookie of r; SetFlag writes through to w.
func NewSessionFlags(cfg *Config, w http.ResponseWriter, r *http.Request) *SessionFlags {
	f := &SessionFlags{cfg: cfg, w: w, flags: make(map[string]bool)}
	for _, name := range strings.Split(Get(r, FlagsCookieName), ".") {
		if name != "" {
			f.flags[name] = true
		}
	}
	return f
}

// Flag reports whether key is set for this session.
func (f *SessionFlags) Flag(key string) bool {
	return f.flags[key]
}

// SetFlag sets key and queues the updated session cookie.
func (f *SessionFlags) SetFlag(key string) {
	if f.flags[key] {
		return
	}
	f.flags[key] = true

	names := make([]string, 0, len(f.flags))
	for name := range f.flags {
		names = append(names, name)
	}
	sort.Strings(names)
	f.cfg.SetSession(f.w, FlagsCookieName, strings.Join(names, "."))
}
