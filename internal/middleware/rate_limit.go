package middleware

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/evyataryagoni/iptracker/internal/limiter"
)

// RateLimitMiddleware enforces the upstream lookup quota per client (returns 429 when exceeded).
// It keys on the host part of RemoteAddr, which chi's RealIP middleware
// has already replaced with X-Real-IP or X-Forwarded-For when present.
func RateLimitMiddleware(lim limiter.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !lim.Allow(clientKey(r)) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Rate limit exceeded. Please try again later.",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// Already a bare address
		return r.RemoteAddr
	}
	return host
}
