package middleware

import (
	"context"
	"net"
	"net/http"

	"go.uber.org/zap"

	apperrors "github.com/konstantinWDK/github-light-calendar/pkg/errors"
)

// Limiter decides whether a client may make another request
type Limiter interface {
	Allow(ctx context.Context, ip string) (bool, error)
	Limit() int
}

// RateLimit rejects clients that exceed the limiter's budget with 429.
// Limiter errors let the request through.
func RateLimit(limiter Limiter, errorHandler *apperrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			allowed, err := limiter.Allow(r.Context(), ip)
			if err != nil {
				logger.Warn("Rate limiter failed", zap.String("ip", ip), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				w.Header().Set("Retry-After", "60")
				errorHandler.Handle(w, r, apperrors.NewRateLimitError(limiter.Limit(), "minute"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port RemoteAddr carries when RealIP did not rewrite it.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
