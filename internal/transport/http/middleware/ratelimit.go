package middleware

import (
	"net"
	"net/http"

	"github.com/rs/zerolog"

	"devconnector/internal/httputil"
	"devconnector/internal/metrics"
	"devconnector/internal/ratelimit"
)

// RateLimit rejects clients that exceeded the limit for resource with 429.
// Clients are keyed by remote IP; mount chi's RealIP first behind a proxy.
// Limiter errors let the request through.
func RateLimit(limiter ratelimit.Limiter, resource string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), resource, clientIP(r))
			if err != nil {
				zerolog.Ctx(r.Context()).Warn().Err(err).Str("resource", resource).Msg("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				metrics.RateLimited.WithLabelValues(resource).Inc()
				httputil.WriteTooManyRequests(w, "Too many requests, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
