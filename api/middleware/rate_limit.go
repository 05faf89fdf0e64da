package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chokistore/backend/api/responses"
	pkgerrors "github.com/chokistore/backend/pkg/errors"
	"github.com/chokistore/backend/pkg/logger"
)

type windowCounter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RateLimitPolicy caps requests per authenticated user and per client IP in
// one fixed window. A zero limit disables that dimension.
type RateLimitPolicy struct {
	Name      string
	Window    time.Duration
	UserLimit int
	IPLimit   int
}

func (p RateLimitPolicy) enabled() bool {
	return p.Window > 0 && (p.UserLimit > 0 || p.IPLimit > 0)
}

func (p RateLimitPolicy) scope(dimension, value string) string {
	name := strings.ToLower(strings.TrimSpace(p.Name))
	if name == "" {
		name = "default"
	}
	return name + ":" + dimension + ":" + value
}

type limitCheck struct {
	dimension string
	value     string
	limit     int
}

// RateLimit rejects with RATE_LIMIT_EXCEEDED once either counter passes its
// limit. It must run after Auth so the user dimension is known.
func RateLimit(policy RateLimitPolicy, store windowCounter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			checks := []limitCheck{{dimension: "ip", value: clientIP(r), limit: policy.IPLimit}}
			if userID := UserIDFromContext(ctx); userID != uuid.Nil {
				checks = append(checks, limitCheck{dimension: "user", value: userID.String(), limit: policy.UserLimit})
			}

			for _, check := range checks {
				if check.limit <= 0 || check.value == "" {
					continue
				}
				allowed, count, err := store.FixedWindowAllow(ctx, policy.scope(check.dimension, check.value), int64(check.limit), policy.Window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if allowed {
					continue
				}
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{
						"policy":         policy.Name,
						"dimension":      check.dimension,
						"attempts":       count,
						"limit":          check.limit,
						"window_seconds": int(policy.Window.Seconds()),
					}), "rate_limit.blocked")
				}
				w.Header().Set("Retry-After", strconv.FormatInt(int64(math.Ceil(policy.Window.Seconds())), 10))
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests, try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
