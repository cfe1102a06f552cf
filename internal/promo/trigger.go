// Package promo shows a one-time promotional offer per browsing session.
//
// A Trigger starts Hidden. Once mounted it waits a fixed delay and, unless
// the session flag says the offer was already shown, moves to Shown and sets
// the flag at that moment. Dismissing or accepting the offer closes it for
// the rest of the session. Unmounting before the delay cancels the timer.
package promo

import (
	"sync"
	"time"
)

// FlagKey is the session flag set once the offer has been shown.
const FlagKey = "discountPopupShown"

// DefaultDelay is how long after mount the offer appears.
const DefaultDelay = 2 * time.Second

// State is the trigger's position in its lifecycle.
type State int

const (
	// Hidden is the initial state.
	Hidden State = iota
	// Shown means the offer is on screen.
	Shown
	// Closed is Hidden after a dismissal or acceptance; it is terminal.
	Closed
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Shown:
		return "shown"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// SessionFlags is a session-scoped boolean store, such as a browser session
// cookie.
type SessionFlags interface {
	Flag(key string) bool
	SetFlag(key string)
}

// Offer is the content of the prompt.
type Offer struct {
	Code     string
	Headline string
	Message  string
}

// DefaultOffer is the storefront's standing promotion.
var DefaultOffer = Offer{
	Code:     "WW10",
	Headline: "Special Offer!",
	Message:  "checkout for 10% off your first order!",
}

// Trigger drives one mount of the promotional prompt.
type Trigger struct {
	mu      sync.Mutex
	flags   SessionFlags
	clock   Clock
	delay   time.Duration
	state   State
	mounted bool
	timer   Timer
	shown   chan struct{}
	onShow  func()
}

// Option configures a Trigger.
type Option func(*Trigger)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(t *Trigger) { t.clock = c }
}

// WithDelay sets the delay between mount and display.
func WithDelay(d time.Duration) Option {
	return func(t *Trigger) {
		if d >= 0 {
			t.delay = d
		}
	}
}

// OnShow registers a callback run when the trigger enters Shown.
func OnShow(fn func()) Option {
	return func(t *Trigger) { t.onShow = fn }
}

// NewTrigger creates a Hidden trigger bound to the session's flags.
func NewTrigger(flags SessionFlags, opts ...Option) *Trigger {
	t := &Trigger{
		flags: flags,
		clock: SystemClock,
		delay: DefaultDelay,
		shown: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Mount starts the delay timer. It does nothing when the session has
// already seen the offer or the trigger is already mounted.
func (t *Trigger) Mount() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.mounted || t.state != Hidden {
		return
	}
	t.mounted = true

	if t.flags.Flag(FlagKey) {
		return
	}
	t.timer = t.clock.AfterFunc(t.delay, t.fire)
}

// Unmount cancels a pending timer. It reports whether a pending display was
// cancelled.
func (t *Trigger) Unmount() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.mounted = false
	if t.timer == nil {
		return false
	}
	stopped := t.timer.Stop()
	t.timer = nil
	return stopped
}

// Dismiss closes a shown offer. It reports whether the state changed.
func (t *Trigger) Dismiss() bool {
	return t.close()
}

// Accept closes a shown offer after the shopper takes it.
func (t *Trigger) Accept() bool {
	return t.close()
}

// State returns the current state.
func (t *Trigger) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// ShownC is closed when the trigger enters Shown.
func (t *Trigger) ShownC() <-chan struct{} {
	return t.shown
}

// Pending reports whether a display is scheduled but has not fired.
func (t *Trigger) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil && t.state == Hidden
}

func (t *Trigger) fire() {
	t.mu.Lock()
	if !t.mounted || t.state != Hidden || t.flags.Flag(FlagKey) {
		t.timer = nil
		t.mu.Unlock()
		return
	}

	// Set before display so a reload while the prompt is open does not
	// show it again.
	t.flags.SetFlag(FlagKey)
	t.state = Shown
	t.timer = nil
	close(t.shown)
	onShow := t.onShow
	t.mu.Unlock()

	if onShow != nil {
		onShow()
	}
}

func (t *Trigger) close() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != Shown {
		return false
	}
	t.state = Closed
	return true
}

// MemoryFlags is an in-process SessionFlags, one instance per session.
type MemoryFlags struct {
	mu    sync.Mutex
	flags map[string]bool
}

// NewMemoryFlags returns an empty flag set.
func NewMemoryFlags() *MemoryFlags {
	return &MemoryFlags{flags: make(map[string]bool)}
}

// Flag reports whether key is set.
func (m *MemoryFlags) Flag(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flags[key]
}

// SetFlag sets key.
func (m *MemoryFlags) SetFlag(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags[key] = true
}
