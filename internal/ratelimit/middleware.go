package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"strconv"

	dErrors "walletreg/pkg/domain-errors"
	"walletreg/pkg/platform/httputil"
	"walletreg/pkg/requestcontext"
)

// KeyFunc derives the limiter key for a request. ok=false skips limiting.
type KeyFunc func(r *http.Request) (key string, ok bool)

// ByClientIP keys on the remote host.
func ByClientIP(r *http.Request) (string, bool) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		return "", false
	}
	return "ip:" + host, true
}

// ByCaller keys on the authenticated account. It must run after the auth
// middleware.
func ByCaller(r *http.Request) (string, bool) {
	caller, ok := requestcontext.Caller(r.Context())
	if !ok {
		return "", false
	}
	return "caller:" + caller.String(), true
}

// Middleware limits requests under scope. Store errors let the request through.
func (l *Limiter) Middleware(scope string, policy Policy, keyFn KeyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := keyFn(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			res, err := l.Check(ctx, scope+":"+key, policy)
			if err != nil {
				l.metrics.decision(scope, "error")
				l.logger.ErrorContext(ctx, "rate limit check failed", "scope", scope, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			setHeaders(w, res)
			if !res.Allowed {
				l.metrics.decision(scope, "denied")
				retryAfter := res.RetryAfter(requestcontext.Now(ctx))
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited,
					fmt.Sprintf("too many requests, retry after %ds", retryAfter)))
				return
			}
			l.metrics.decision(scope, "allowed")
			next.ServeHTTP(w, r)
		})
	}
}

func setHeaders(w http.ResponseWriter, res Result) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))
	if res.Degraded {
		h.Set("X-RateLimit-Status", "degraded")
	}
}
