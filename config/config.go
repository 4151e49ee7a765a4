// ABOUTME: Configuration loader for the Garmin Connect API proxy
// ABOUTME: Loads settings from environment variables with defaults

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	// Server
	Port               string
	CORSAllowedOrigins []string // allowed CORS origins (empty = allow all, matching original API)

	// Token signing
	SecretKey       string // HS256 signing key for access tokens
	TokenTTLMinutes int    // access token validity window (default: 30)

	// Rate Limiting
	RateLimitEnabled bool // Enable rate limiting (default: true)
	RateLimitAuth    int  // Requests per minute for the token endpoint (default: 5)
	RateLimitDefault int  // Requests per minute per route for data endpoints (default: 30)

	// Upstream Garmin Connect
	GarminAPIURL    string
	GarminUsername  string // server-held credentials used for per-request delegation
	GarminPassword  string
	UpstreamTimeout int    // seconds, timeout for upstream HTTP calls (default: 30)
	AllProxy        string // optional ssh+socks5:// egress proxy for upstream calls
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		CORSAllowedOrigins: getEnvStringList("CORS_ALLOWED_ORIGINS"),

		SecretKey:       os.Getenv("SECRET_KEY"),
		TokenTTLMinutes: getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30),

		RateLimitEnabled: getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitAuth:    getEnvInt("RATE_LIMIT_AUTH", 5),
		RateLimitDefault: getEnvInt("RATE_LIMIT_DEFAULT", 30),

		GarminAPIURL:    ensureScheme(getEnv("GARMIN_API_URL", "https://connectapi.garmin.com")),
		GarminUsername:  os.Getenv("GARMIN_USERNAME"),
		GarminPassword:  os.Getenv("GARMIN_PASSWORD"),
		UpstreamTimeout: getEnvInt("UPSTREAM_TIMEOUT", 30),
		AllProxy:        os.Getenv("ALL_PROXY"),
	}

	// Validate required fields
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("SECRET_KEY is required")
	}
	if cfg.GarminUsername == "" {
		return nil, fmt.Errorf("GARMIN_USERNAME is required")
	}
	if cfg.GarminPassword == "" {
		return nil, fmt.Errorf("GARMIN_PASSWORD is required")
	}

	if cfg.TokenTTLMinutes < 1 || cfg.TokenTTLMinutes > 1440 {
		return nil, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be between 1 and 1440, got %d", cfg.TokenTTLMinutes)
	}
	if cfg.UpstreamTimeout < 1 || cfg.UpstreamTimeout > 300 {
		return nil, fmt.Errorf("UPSTREAM_TIMEOUT must be between 1 and 300, got %d", cfg.UpstreamTimeout)
	}

	// Validate rate limit values
	for _, rl := range []struct {
		name  string
		value int
	}{
		{"RATE_LIMIT_AUTH", cfg.RateLimitAuth},
		{"RATE_LIMIT_DEFAULT", cfg.RateLimitDefault},
	} {
		if rl.value < 1 || rl.value > 10000 {
			return nil, fmt.Errorf("%s must be between 1 and 10000, got %d", rl.name, rl.value)
		}
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvStringList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ensureScheme adds https:// prefix if the URL has no scheme
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "https://" + url
	}
	return url
}
