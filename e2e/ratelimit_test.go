// ABOUTME: End-to-end tests for rate limiting
// ABOUTME: Tests login and per-route budgets through the full stack

package e2e

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

func TestE2E_LoginRateLimit(t *testing.T) {
	upstream := newMockGarminServer(t, nil)
	defer upstream.Close()

	stack, _ := buildStack(t, upstream.URL, stackOptions{authLimit: 5, window: 200 * time.Millisecond})

	sendLogin := func() int {
		form := url.Values{"username": {callerUser}, "password": {callerPass}}
		req := httptest.NewRequest("POST", "/token", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.RemoteAddr = "203.0.113.20:1000"
		rr := httptest.NewRecorder()
		stack.ServeHTTP(rr, req)
		return rr.Code
	}

	// First 5 logins succeed
	for i := 0; i < 5; i++ {
		if code := sendLogin(); code != http.StatusOK {
			t.Fatalf("Login %d should succeed, got %d", i+1, code)
		}
	}

	// The 6th is rejected
	if code := sendLogin(); code != http.StatusTooManyRequests {
		t.Fatalf("6th login should be rate limited, got %d", code)
	}

	// After the window resets, the caller succeeds again
	time.Sleep(250 * time.Millisecond)
	if code := sendLogin(); code != http.StatusOK {
		t.Fatalf("Login after window reset should succeed, got %d", code)
	}
}

func TestE2E_DataRouteRateLimit(t *testing.T) {
	upstream := newMockGarminServer(t, map[string][]byte{
		"/wellness-service/wellness/dailySteps":     []byte(`[]`),
		"/wellness-service/wellness/dailySleepData": []byte(`{}`),
	})
	defer upstream.Close()

	stack, tokens := buildStack(t, upstream.URL, stackOptions{defaultLimit: 30})
	token, _, err := tokens.Issue(callerUser)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// 30 requests on one route pass, the 31st fails
	for i := 0; i < 30; i++ {
		rr := getWithToken(stack, "/steps?date=2024-03-01", token)
		if rr.Code != http.StatusOK {
			t.Fatalf("Request %d should succeed, got %d: %s", i+1, rr.Code, rr.Body.String())
		}
	}

	rr := getWithToken(stack, "/steps?date=2024-03-01", token)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("31st request should be rate limited, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header on 429")
	}

	// The budget is per route: a different route still has quota
	rr = getWithToken(stack, "/sleep?date=2024-03-01", token)
	if rr.Code != http.StatusOK {
		t.Errorf("Other route should have its own budget, got %d", rr.Code)
	}
}

func TestE2E_RateLimitUnderConcurrentBurst(t *testing.T) {
	upstream := newMockGarminServer(t, map[string][]byte{
		"/wellness-service/wellness/dailySteps": []byte(`[]`),
	})
	defer upstream.Close()

	stack, tokens := buildStack(t, upstream.URL, stackOptions{defaultLimit: 30})
	token, _, err := tokens.Issue(callerUser)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// 50 concurrent requests from one caller: exactly 30 may pass
	var allowed, limited atomic.Int64
	var g errgroup.Group
	for i := 0; i < 50; i++ {
		g.Go(func() error {
			rr := getWithToken(stack, "/steps?date=2024-03-01", token)
			switch rr.Code {
			case http.StatusOK:
				allowed.Add(1)
			case http.StatusTooManyRequests:
				limited.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("Burst failed: %v", err)
	}

	if allowed.Load() != 30 {
		t.Errorf("Expected exactly 30 allowed under burst, got %d", allowed.Load())
	}
	if limited.Load() != 20 {
		t.Errorf("Expected 20 limited under burst, got %d", limited.Load())
	}
}

func TestE2E_RateLimitDisabled(t *testing.T) {
	upstream := newMockGarminServer(t, map[string][]byte{
		"/wellness-service/wellness/dailySteps": []byte(`[]`),
	})
	defer upstream.Close()

	// Zero limits leave the limiters nil, matching RATE_LIMIT_ENABLED=false
	stack, tokens := buildStack(t, upstream.URL, stackOptions{})
	token, _, err := tokens.Issue(callerUser)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	for i := 0; i < 40; i++ {
		rr := getWithToken(stack, "/steps?date=2024-03-01", token)
		if rr.Code != http.StatusOK {
			t.Fatalf("Request %d should pass with limiting disabled, got %d", i+1, rr.Code)
		}
	}
}
