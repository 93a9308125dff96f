// Package middleware carries the HTTP middleware chain: request metadata
// injection and auditor authentication.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"attestra/pkg/requestcontext"
)

// RequestMeta assigns a correlation ID and pins the request time on the
// context. Pinning once per request keeps freshness evaluation stable even if
// handler work straddles a clock tick.
func RequestMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		ctx = requestcontext.WithTime(ctx, requestcontext.Now(ctx))

		w.Header().Set("X-Request-Id", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
