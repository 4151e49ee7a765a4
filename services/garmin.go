// ABOUTME: Garmin Connect upstream client for authentication and metric fetches
// ABOUTME: Handles the password handshake and returns upstream payloads verbatim

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	proxy "github.com/cloudfoundry/socks5-proxy"
)

// GarminClient talks to the Garmin Connect API on behalf of a single request.
// A client is created, logged in, used for one fetch, and discarded; the
// bearer token it holds is never shared across requests.
type GarminClient struct {
	apiURL   string
	username string
	password string
	token    string
	client   *http.Client
}

// NewGarminClient creates an upstream client for the given account.
// If allProxy is an ssh+socks5:// URL, upstream connections are dialed
// through the SSH SOCKS5 tunnel.
func NewGarminClient(apiURL, username, password, allProxy string, timeout time.Duration) *GarminClient {
	c := &GarminClient{
		apiURL:   strings.TrimSuffix(apiURL, "/"),
		username: username,
		password: password,
		client: &http.Client{
			Timeout: timeout,
		},
	}

	if strings.HasPrefix(allProxy, "ssh+socks5://") {
		if dialFunc := createSOCKS5DialContextFunc(allProxy); dialFunc != nil {
			c.client.Transport = &http.Transport{
				DialContext: dialFunc,
			}
		}
	}

	return c
}

// Login authenticates with Garmin Connect using the password grant and
// stores the resulting bearer token for subsequent fetches.
func (c *GarminClient) Login(ctx context.Context) error {
	data := url.Values{}
	data.Set("grant_type", "password")
	data.Set("username", c.username)
	data.Set("password", c.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/oauth/token", strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach Garmin Connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("authentication failed (status %d): %s", resp.StatusCode, string(body))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return fmt.Errorf("failed to parse token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return fmt.Errorf("authentication succeeded but no access token returned")
	}

	c.token = tokenResp.AccessToken
	return nil
}

// GetUserProfile fetches the account's social profile document.
func (c *GarminClient) GetUserProfile(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "/userprofile-service/socialProfile", nil)
}

// GetDailyStats fetches the daily summary for a calendar date.
func (c *GarminClient) GetDailyStats(ctx context.Context, date string) ([]byte, error) {
	return c.get(ctx, "/usersummary-service/usersummary/daily", url.Values{"calendarDate": {date}})
}

// GetActivities fetches activities within the given date range.
func (c *GarminClient) GetActivities(ctx context.Context, start, end string) ([]byte, error) {
	return c.get(ctx, "/activitylist-service/activities/search/activities", url.Values{
		"startDate": {start},
		"endDate":   {end},
	})
}

// GetBodyComposition fetches weight and body composition for a date range.
func (c *GarminClient) GetBodyComposition(ctx context.Context, start, end string) ([]byte, error) {
	return c.get(ctx, "/weight-service/weight/dateRange", url.Values{
		"startDate": {start},
		"endDate":   {end},
	})
}

// GetSteps fetches the step series for a calendar date.
func (c *GarminClient) GetSteps(ctx context.Context, date string) ([]byte, error) {
	return c.get(ctx, "/wellness-service/wellness/dailySteps", url.Values{"date": {date}})
}

// GetHeartRate fetches the heart rate series for a calendar date.
func (c *GarminClient) GetHeartRate(ctx context.Context, date string) ([]byte, error) {
	return c.get(ctx, "/wellness-service/wellness/dailyHeartRate", url.Values{"date": {date}})
}

// GetSleep fetches sleep data for a calendar date.
func (c *GarminClient) GetSleep(ctx context.Context, date string) ([]byte, error) {
	return c.get(ctx, "/wellness-service/wellness/dailySleepData", url.Values{"date": {date}})
}

// GetStress fetches the stress series for a calendar date.
func (c *GarminClient) GetStress(ctx context.Context, date string) ([]byte, error) {
	return c.get(ctx, "/wellness-service/wellness/dailyStress", url.Values{"date": {date}})
}

// GetBodyBattery fetches body battery reports for a date range.
func (c *GarminClient) GetBodyBattery(ctx context.Context, start, end string) ([]byte, error) {
	return c.get(ctx, "/wellness-service/wellness/bodyBattery/reports/daily", url.Values{
		"startDate": {start},
		"endDate":   {end},
	})
}

// get performs an authenticated GET and returns the response body untouched.
func (c *GarminClient) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.apiURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d: %s", path, resp.StatusCode, string(body))
	}

	return body, nil
}

// createSOCKS5DialContextFunc creates a dial function for SSH+SOCKS5 proxy connections.
// Supports format: ssh+socks5://user@host:port?private-key=/path/to/key
func createSOCKS5DialContextFunc(allProxy string) func(ctx context.Context, network, address string) (net.Conn, error) {
	// Strip ssh+ prefix if present
	allProxy = strings.TrimPrefix(allProxy, "ssh+")

	proxyURL, err := url.Parse(allProxy)
	if err != nil {
		slog.Error("Failed to parse ALL_PROXY URL", "error", err)
		return nil
	}

	queryMap, err := url.ParseQuery(proxyURL.RawQuery)
	if err != nil {
		slog.Error("Failed to parse ALL_PROXY query params", "error", err)
		return nil
	}

	username := ""
	if proxyURL.User != nil {
		username = proxyURL.User.Username()
	}

	proxySSHKeyPath := queryMap.Get("private-key")
	if proxySSHKeyPath == "" {
		slog.Error("ALL_PROXY missing required 'private-key' query param")
		return nil
	}

	proxySSHKey, err := os.ReadFile(proxySSHKeyPath)
	if err != nil {
		slog.Error("Failed to read SSH private key", "path", proxySSHKeyPath, "error", err)
		return nil
	}

	// Create the socks5 proxy with host key callback
	socks5Proxy := proxy.NewSocks5Proxy(proxy.NewHostKey(), log.Default(), 1*time.Minute)

	var (
		dialer proxy.DialFunc
		mut    sync.RWMutex
	)

	return func(ctx context.Context, network, address string) (net.Conn, error) {
		mut.RLock()
		haveDialer := dialer != nil
		mut.RUnlock()

		if haveDialer {
			return dialer(network, address)
		}

		mut.Lock()
		defer mut.Unlock()
		if dialer == nil {
			proxyDialer, err := socks5Proxy.Dialer(username, string(proxySSHKey), proxyURL.Host)
			if err != nil {
				return nil, fmt.Errorf("error creating SOCKS5 dialer: %w", err)
			}
			dialer = proxyDialer
		}
		return dialer(network, address)
	}
}
