package auth

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for every token that fails verification:
// malformed, tampered, signed with another key or algorithm, expired, or
// carrying an unexpected subject.
var ErrInvalidToken = errors.New("invalid token")

var subjectPattern = regexp.MustCompile(`^[0-9a-f]{4}$`)

// Verify checks the signature and expiration of tokenString and returns its
// claims. There is no leeway: a token whose expiration equals the current
// second is already expired.
func (s *TokenService) Verify(tokenString string) (*TokenClaims, error) {
	var claims jwt.RegisteredClaims
	_, err := s.parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !subjectPattern.MatchString(claims.Subject) {
		return nil, fmt.Errorf("%w: unexpected subject %q", ErrInvalidToken, claims.Subject)
	}

	return &TokenClaims{
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
