package ratelimit

import (
	"net/http"

	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/logger"
)

// Middleware rejects requests exceeding the limiter with 429. Keys are
// client IPs; chi's RealIP middleware must run first so RemoteAddr holds
// the true client address.
func Middleware(limiter *Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(r.RemoteAddr) {
				logger.Ctx(r.Context()).Warn("rate limit exceeded",
					"remote", r.RemoteAddr, "path", r.URL.Path)
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
