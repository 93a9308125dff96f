// Package requestcontext provides HTTP-independent accessors for
// request-scoped values. Middleware sets them, services read them, and tests
// inject them without running the full middleware chain.
package requestcontext

import (
	"context"
	"time"
)

type (
	requestIDKey   struct{}
	requestTimeKey struct{}
	auditorSubKey  struct{}
)

// RequestID retrieves the correlation ID set by middleware, or "" if unset.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithRequestID injects a correlation ID into the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// Now returns the request time pinned by middleware, falling back to the wall
// clock. Pinning keeps freshness decisions stable across a single request and
// lets tests use a fixed instant.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now().UTC()
}

// WithTime pins the request time on the context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}

// AuditorSubject retrieves the authenticated auditor subject, or "" if the
// request is unauthenticated.
func AuditorSubject(ctx context.Context) string {
	if sub, ok := ctx.Value(auditorSubKey{}).(string); ok {
		return sub
	}
	return ""
}

// WithAuditorSubject marks the context as authenticated for audit endpoints.
func WithAuditorSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, auditorSubKey{}, sub)
}
