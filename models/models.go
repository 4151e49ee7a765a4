// ABOUTME: Shared request/response models for the API
// ABOUTME: Defines token response and structured error payloads

package models

import "time"

// TokenResponse is returned by POST /token on successful authentication.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Error kinds surfaced to clients. Every error response carries exactly
// one of these so callers can branch without parsing the message text.
const (
	KindBadRequest        = "bad_request"
	KindMethodNotAllowed  = "method_not_allowed"
	KindAuthentication    = "authentication_error"
	KindInvalidToken      = "invalid_token"
	KindTokenExpired      = "token_expired"
	KindRateLimitExceeded = "rate_limit_exceeded"
	KindUpstream          = "upstream_error"
	KindInternal          = "internal_error"
)

// ErrorResponse is the JSON body for all error statuses.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Code  int    `json:"code"`
}
