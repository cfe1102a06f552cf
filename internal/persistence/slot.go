// Package persistence round-trips cart state through a single named,
// string-valued slot so a cart survives reloads and closed tabs.
package persistence

import "context"

// Slot is one durable string value. Implementations exist for browser
// cookies, Redis, PostgreSQL and process memory.
type Slot interface {
	// Read returns the stored value and whether one was present.
	Read(ctx context.Context) (string, bool, error)

	// Write replaces the stored value.
	Write(ctx context.Context, value string) error

	// Clear removes the value. Clearing an empty slot is not an error.
	Clear(ctx context.Context) error
}
