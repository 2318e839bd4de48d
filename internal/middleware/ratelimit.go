package middleware

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/qrsurvey/qrs-api/internal/pkg/ratelimit"
	"github.com/qrsurvey/qrs-api/internal/pkg/response"
)

// RateLimitByIP rejects requests once the connection's IP exceeds limiter.
// Forwarding headers are ignored here; only RemoteAddr keys the bucket.
// Limiter failures let the request through.
func RateLimitByIP(limiter ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := RemoteIP(r)
			allowed, err := limiter.Allow(r.Context(), ip)
			if err != nil {
				log.Warn().Err(err).Str("ip", ip).Msg("rate limiter unavailable")
			}
			if !allowed {
				response.TooManyRequests(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
