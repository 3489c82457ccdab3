package ratelimit

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/spacestar/internal/logging"
	"github.com/dmitrijs2005/spacestar/internal/server/metrics"
)

// ClientKey identifies the caller by the first X-Forwarded-For hop, falling
// back to the remote host.
func ClientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return "ip:" + strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

// Middleware rejects requests the limiter denies by calling rejected.
// Limiter backend errors are logged and the request proceeds.
func Middleware(name string, l Limiter, log logging.Logger, rejected http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientKey(r)

			d, err := l.Allow(r.Context(), key)
			if err != nil {
				log.Warn(r.Context(), "rate limiter unavailable", "limiter", name, "error", err)
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(d.Remaining, 0)))

			if !d.Allowed {
				secs := int(math.Ceil(d.RetryAfter.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
				metrics.RecordRateLimited(name)
				log.Debug(r.Context(), "rate limit exceeded", "limiter", name, "key", key)
				rejected(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
