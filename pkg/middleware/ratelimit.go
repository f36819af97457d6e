package middleware

import (
	"encoding/json"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/roamio/roamio-api/internal/types"
)

// RateLimit applies a global token-bucket limit across all routes.
func RateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter != nil && !limiter.Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(types.Fail("rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
