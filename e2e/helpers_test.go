// ABOUTME: Test helpers for e2e tests
// ABOUTME: Builds the full middleware/handler stack against a mock upstream

package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/paveldurnev/garmin-connect-api/config"
	"github.com/paveldurnev/garmin-connect-api/handlers"
	"github.com/paveldurnev/garmin-connect-api/middleware"
	"github.com/paveldurnev/garmin-connect-api/services"
)

const (
	serverAccountUser = "server-account@example.com"
	serverAccountPass = "server-password"
	callerUser        = "athlete@example.com"
	callerPass        = "athlete-password"
)

// newMockGarminServer stands in for Garmin Connect. It accepts the password
// grant for both the caller's and the server account's credentials and
// serves the given payloads keyed by path.
func newMockGarminServer(t *testing.T, payloads map[string][]byte) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/token" {
			_ = r.ParseForm()
			u, p := r.PostFormValue("username"), r.PostFormValue("password")
			callerOK := u == callerUser && p == callerPass
			serverOK := u == serverAccountUser && p == serverAccountPass
			if !callerOK && !serverOK {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"invalid_grant"}`))
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token": "upstream-token",
				"expires_in":   3600,
			})
			return
		}

		payload, ok := payloads[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"no data"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(payload)
	}))
}

// stackOptions tunes the assembled server for a test.
type stackOptions struct {
	authLimit    int           // 0 disables the auth limiter
	defaultLimit int           // 0 disables the default limiter
	window       time.Duration // rate window (defaults to a minute)
	tokenTTL     time.Duration // access token validity (defaults to 30 min)
}

// buildStack assembles the same route/middleware wiring as main().
func buildStack(t *testing.T, upstreamURL string, opts stackOptions) (http.Handler, *services.TokenService) {
	t.Helper()

	if opts.window == 0 {
		opts.window = time.Minute
	}
	if opts.tokenTTL == 0 {
		opts.tokenTTL = 30 * time.Minute
	}

	cfg := &config.Config{
		GarminAPIURL:    upstreamURL,
		GarminUsername:  serverAccountUser,
		GarminPassword:  serverAccountPass,
		UpstreamTimeout: 5,
		TokenTTLMinutes: 30,
	}
	tokens := services.NewTokenService("e2e-secret", opts.tokenTTL)
	h := handlers.NewHandler(cfg, tokens)

	var authLimiter, defaultLimiter *middleware.RateLimiter
	if opts.authLimit > 0 {
		authLimiter = middleware.NewRateLimiter(opts.authLimit, opts.window)
	}
	if opts.defaultLimit > 0 {
		defaultLimiter = middleware.NewRateLimiter(opts.defaultLimit, opts.window)
	}

	mux := http.NewServeMux()
	for _, route := range h.Routes() {
		chain := []func(http.HandlerFunc) http.HandlerFunc{
			middleware.CORS(nil),
			middleware.LogRequest,
		}
		if route.Protected {
			chain = append(chain, middleware.RequireToken(tokens))
		}
		switch route.Tier {
		case handlers.TierAuth:
			chain = append(chain, middleware.RateLimit(authLimiter, middleware.ClientIP))
		case handlers.TierDefault:
			chain = append(chain, middleware.RateLimit(defaultLimiter, middleware.UserOrIP))
		}
		mux.HandleFunc(route.Path, middleware.Chain(route.Handler, chain...))
	}

	return mux, tokens
}

// login runs the token flow and returns the minted access token.
func login(t *testing.T, stack http.Handler, username, password string) string {
	t.Helper()

	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest("POST", "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "203.0.113.10:40000"
	rr := httptest.NewRecorder()
	stack.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Login failed with status %d: %s", rr.Code, rr.Body.String())
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("Invalid token response: %v", err)
	}
	return body.AccessToken
}

// getWithToken issues a GET with a bearer token through the stack.
func getWithToken(stack http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.RemoteAddr = "203.0.113.10:40000"
	rr := httptest.NewRecorder()
	stack.ServeHTTP(rr, req)
	return rr
}
