// Package requesttime pins one "now" per HTTP request so that defaults such
// as a bid's date and time and century inference agree within a request.
package requesttime

import (
	"net/http"
	"time"

	"maklarsystem/pkg/requestcontext"
)

// Middleware stores the arrival time of the request in its context.
func Middleware(next http.Handler) http.Handler {
	return MiddlewareWithClock(time.Now)(next)
}

// MiddlewareWithClock is Middleware with an injectable clock.
func MiddlewareWithClock(clock func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), clock())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
