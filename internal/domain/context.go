// Package domain holds the storefront's core types: catalog records, cart state,
// discount codes, application errors and request-scoped context helpers.
package domain

import "context"

type contextKey int

const (
	sessionIDContextKey contextKey = iota
	requestIDContextKey
)

// WithSessionID stores the shopper's session id in the context.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDContextKey, id)
}

// SessionIDFromContext returns the session id, or "" when none was attached.
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDContextKey).(string)
	return id
}

// WithRequestID stores the request id for log correlation.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

// RequestIDFromContext returns the request id, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}
