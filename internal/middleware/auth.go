package middleware

import (
	"net/http"
	"strings"

	"wotmaps-api/internal/auth"
	"wotmaps-api/pkg/errors"

	"go.uber.org/zap"
)

// TokenVerifier checks session tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.TokenClaims, error)
}

// Authenticate verifies the bearer token of requests that carry an
// Authorization header and stores its claims in the request context.
// Requests without the header pass through anonymously; routes that need an
// identity reject them later.
func Authenticate(tokens TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				writeError(w, errors.ErrExpectedBearerToken)
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				logger.Debug("Rejected bearer token", zap.Error(err))
				writeError(w, errors.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), *claims)))
		})
	}
}
