// Package requestcontext carries request-scoped values that cross layer
// boundaries: the request clock and the correlation ID. Keeping them in
// context (rather than on service structs) keeps services stateless and lets
// tests pin time without fake clocks.
package requestcontext

import (
	"context"
	"time"
)

type timeKey struct{}
type requestIDKey struct{}

// WithTime pins the request clock. Tests use this to make time-dependent
// logic (cooldown windows, trailing-24h counts) deterministic.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, timeKey{}, t)
}

// Now returns the pinned request time, or the wall clock when none is set.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(timeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithRequestID attaches the correlation ID assigned by transport middleware.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the correlation ID, or "" outside a request.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

type actorKey struct{}

// WithActor records the authenticated principal performing the request, used
// by audit events.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// Actor returns the authenticated principal, or "" when unauthenticated.
func Actor(ctx context.Context) string {
	if a, ok := ctx.Value(actorKey{}).(string); ok {
		return a
	}
	return ""
}
