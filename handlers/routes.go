// ABOUTME: Declarative route table for API endpoints
// ABOUTME: Defines all routes with their method, rate tier, and auth requirement

package handlers

import "net/http"

// RateTier selects which rate limiter budget applies to a route.
type RateTier int

const (
	// TierNone exempts a route from rate limiting (health, docs).
	TierNone RateTier = iota
	// TierAuth is the strict budget for the token endpoint (default 5/min).
	TierAuth
	// TierDefault is the per-route budget for data endpoints (default 30/min).
	TierDefault
)

// Route defines an API endpoint with its HTTP method and handler.
type Route struct {
	Method    string           // HTTP method (GET, POST)
	Path      string           // URL path (e.g., "/user/profile")
	Handler   http.HandlerFunc // Handler function
	Tier      RateTier         // Rate limit budget
	Protected bool             // Requires a valid bearer token
}

// Routes returns all API routes for registration.
func (h *Handler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/", Handler: h.Root},
		{Method: http.MethodGet, Path: "/health", Handler: h.Health},
		{Method: http.MethodGet, Path: "/openapi.yaml", Handler: h.OpenAPISpec},

		{Method: http.MethodPost, Path: "/token", Handler: h.Token, Tier: TierAuth},

		{Method: http.MethodGet, Path: "/user/profile", Handler: h.UserProfile, Tier: TierDefault, Protected: true},
		{Method: http.MethodGet, Path: "/stats", Handler: h.Stats, Tier: TierDefault, Protected: true},
		{Method: http.MethodGet, Path: "/activities", Handler: h.Activities, Tier: TierDefault, Protected: true},
		{Method: http.MethodGet, Path: "/body-composition", Handler: h.BodyComposition, Tier: TierDefault, Protected: true},
		{Method: http.MethodGet, Path: "/steps", Handler: h.Steps, Tier: TierDefault, Protected: true},
		{Method: http.MethodGet, Path: "/heart-rate", Handler: h.HeartRate, Tier: TierDefault, Protected: true},
		{Method: http.MethodGet, Path: "/sleep", Handler: h.Sleep, Tier: TierDefault, Protected: true},
		{Method: http.MethodGet, Path: "/stress", Handler: h.Stress, Tier: TierDefault, Protected: true},
		{Method: http.MethodGet, Path: "/body-battery", Handler: h.BodyBattery, Tier: TierDefault, Protected: true},
	}
}
