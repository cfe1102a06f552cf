package domain

import (
	"context"
	"testing"
)

func TestSessionIDContext(t *testing.T) {
	ctx := context.Background()
	if got := SessionIDFromContext(ctx); got != "" {
		t.Errorf("expected empty session id, got %q", got)
	}

	ctx = WithSessionID(ctx, "abc")
	if got := SessionIDFromContext(ctx); got != "abc" {
		t.Errorf("SessionIDFromContext() = %q, want abc", got)
	}
}

func TestMultipleContextValues(t *testing.T) {
	ctx := WithRequestID(WithSessionID(context.Background(), "session-1"), "req-1")

	if got := SessionIDFromContext(ctx); got != "session-1" {
		t.Errorf("session id = %q", got)
	}
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Errorf("request id = %q", got)
	}
}
