// File: internal/middleware/ratelimit.go
package middleware

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	"github.com/iyunix/kairos/internal/ratelimit"
)

// RateLimitMiddleware rejects callers over the limit with 429. A limiter
// error also rejects the request. Callers are keyed by IP; forwarding headers
// count only when the peer is in trusted.
func RateLimitMiddleware(limiter ratelimit.Limiter, name string, limit int, trusted []*net.IPNet, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := ratelimit.GetClientIP(r, trusted)
			identifier := fmt.Sprintf("%s:%s", name, clientIP)

			info, err := limiter.Allow(r.Context(), identifier)
			if err != nil {
				logger.Error("rate limit check failed", "endpoint", name, "error", err)
			}
			if info == nil {
				info = &ratelimit.RateLimitInfo{Allowed: false}
			}

			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))

			if !info.Allowed {
				logger.Warn("request rate limited",
					"endpoint", name,
					"client_ip", clientIP,
					"banned", info.Banned)

				if info.RetryAfter > 0 {
					w.Header().Set("Retry-After", fmt.Sprintf("%.0f", info.RetryAfter.Seconds()))
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"error":      "Too many attempts. Please try again later.",
					"retryAfter": int(info.RetryAfter.Seconds()),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
