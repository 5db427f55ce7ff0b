package auth

import "context"

type claimsKey struct{}

// WithClaims returns a copy of ctx carrying verified token claims.
func WithClaims(ctx context.Context, claims TokenClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims stored by WithClaims, if any.
func ClaimsFromContext(ctx context.Context) (TokenClaims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(TokenClaims)
	return claims, ok
}
