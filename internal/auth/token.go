package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// subjectMask keeps the low 14 bits of an account id. Subjects are not
// unique across accounts.
const subjectMask = 0x3FFF

// TokenClaims is the verified content of a session token.
type TokenClaims struct {
	Subject   string
	ExpiresAt time.Time
}

// Option configures a TokenService.
type Option func(*TokenService)

// WithClock replaces the wall clock used for issuing and verifying tokens.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) {
		s.now = now
	}
}

// TokenService issues and verifies HS256 session tokens signed with the
// server secret. It is immutable and safe for concurrent use.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewTokenService creates a new token service
func NewTokenService(secret string, ttl time.Duration, opts ...Option) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("token secret must not be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive, got %s", ttl)
	}

	s := &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
	)

	return s, nil
}

// MaskSubject derives the token subject from an account id: the low 14 bits
// as four lowercase hex digits.
func MaskSubject(accountID uint64) string {
	return fmt.Sprintf("%04x", accountID&subjectMask)
}

// Issue signs a token for accountID that expires one lifetime from now.
func (s *TokenService) Issue(accountID uint64) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   MaskSubject(accountID),
		ExpiresAt: jwt.NewNumericDate(s.now().Add(s.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}
