// ABOUTME: Access token issuance and verification using HS256 JWTs
// ABOUTME: Tokens carry only the subject and expiry, never upstream credentials

package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenInvalid indicates a token that is missing, malformed, or
	// fails signature verification.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired indicates a well-formed token whose expiry has elapsed.
	ErrTokenExpired = errors.New("token expired")
)

// TokenClaims is the JWT payload for issued access tokens.
type TokenClaims struct {
	jwt.RegisteredClaims
}

// Username returns the authenticated subject the token was issued for.
func (c *TokenClaims) Username() string {
	return c.Subject
}

// TokenService mints and verifies bearer tokens with a process-wide secret.
// Verification is a pure function of the token and the secret, so a single
// instance is safe for concurrent use.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a token service signing with the given secret.
// Tokens are valid for ttl from issuance.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue mints a signed token for the given username.
// Returns the compact token string and its expiry time.
func (s *TokenService) Issue(username string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.ttl)

	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify parses and validates a token string.
// Returns ErrTokenExpired for stale tokens and ErrTokenInvalid for
// everything else that fails validation.
func (s *TokenService) Verify(tokenString string) (*TokenClaims, error) {
	if tokenString == "" {
		return nil, ErrTokenInvalid
	}

	claims := &TokenClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	return claims, nil
}
