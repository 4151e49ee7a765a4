// ABOUTME: Bearer token authentication middleware
// ABOUTME: Verifies signed access tokens and stores claims in request context

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/paveldurnev/garmin-connect-api/models"
	"github.com/paveldurnev/garmin-connect-api/services"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey string

const tokenClaimsKey contextKey = "tokenClaims"

// RequireToken returns middleware that rejects requests without a valid
// bearer token. Verification is stateless: a token is accepted iff its
// signature verifies against the service secret and its expiry has not
// elapsed. Valid claims are stored in the request context.
func RequireToken(tokens *services.TokenService) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				slog.Debug("Auth rejected: no token provided", "path", r.URL.Path)
				unauthorized(w, "Not authenticated", models.KindInvalidToken)
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				slog.Debug("Auth rejected: invalid format", "path", r.URL.Path)
				unauthorized(w, "Invalid authorization format", models.KindInvalidToken)
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := tokens.Verify(token)
			if err != nil {
				if errors.Is(err, services.ErrTokenExpired) {
					slog.Debug("Auth rejected: token expired", "path", r.URL.Path)
					unauthorized(w, "Token expired", models.KindTokenExpired)
					return
				}
				slog.Debug("Auth rejected: invalid token", "path", r.URL.Path, "error", err.Error())
				unauthorized(w, "Could not validate credentials", models.KindInvalidToken)
				return
			}

			slog.Debug("Auth: valid bearer token", "path", r.URL.Path, "user", claims.Username())
			ctx := context.WithValue(r.Context(), tokenClaimsKey, claims)
			next(w, r.WithContext(ctx))
		}
	}
}

// GetTokenClaims extracts token claims from request context.
// Returns nil if no claims are present.
func GetTokenClaims(r *http.Request) *services.TokenClaims {
	claims, ok := r.Context().Value(tokenClaimsKey).(*services.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}

// unauthorized writes a 401 with the WWW-Authenticate challenge expected
// by bearer token clients.
func unauthorized(w http.ResponseWriter, message, kind string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeJSONError(w, message, kind, http.StatusUnauthorized)
}
