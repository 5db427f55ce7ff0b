package middleware

import (
	"context"
	"encoding/hex"
	"net"
	"net/http"
	"strconv"
	"time"

	"wotmaps-api/pkg/errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

// RateLimiter counts requests per key within a window.
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimitMiddleware limits requests per client address. Addresses are
// hashed before they reach the limiter so raw IPs are never stored.
func RateLimitMiddleware(limiter RateLimiter, logger *zap.Logger, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			exceeded, err := limiter.CheckRateLimit(ctx, ClientKey(r), limit, window)
			if err != nil {
				logger.Error("Rate limit check failed", zap.Error(err))
				writeError(w, errors.ErrInternalServer)
				return
			}

			if exceeded {
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				writeError(w, errors.ErrRateLimitExceeded)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientKey derives the rate limit key of a request from its remote address.
func ClientKey(r *http.Request) string {
	addr := r.RemoteAddr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	sum := blake2b.Sum256([]byte(addr))
	return hex.EncodeToString(sum[:16])
}
