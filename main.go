// ABOUTME: Entry point for the Garmin Connect API proxy service
// ABOUTME: Wires config, token issuance, rate limits, and proxy routes

package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/paveldurnev/garmin-connect-api/config"
	"github.com/paveldurnev/garmin-connect-api/handlers"
	"github.com/paveldurnev/garmin-connect-api/logger"
	"github.com/paveldurnev/garmin-connect-api/middleware"
	"github.com/paveldurnev/garmin-connect-api/services"
)

func main() {
	// Optional .env file for local development
	_ = godotenv.Load()

	// Initialize structured logging
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting Garmin Connect API proxy")
	slog.Info("Upstream configured", "url", cfg.GarminAPIURL, "username", cfg.GarminUsername)
	if cfg.AllProxy != "" {
		slog.Info("Upstream egress proxy configured", "proxy", cfg.AllProxy)
	}

	tokens := services.NewTokenService(cfg.SecretKey, time.Duration(cfg.TokenTTLMinutes)*time.Minute)
	h := handlers.NewHandler(cfg, tokens)

	// Rate limiters are explicit shared stores, one per tier; each
	// (caller, route) pair gets an independent fixed-window counter.
	var authLimiter, defaultLimiter *middleware.RateLimiter
	if cfg.RateLimitEnabled {
		authLimiter = middleware.NewRateLimiter(cfg.RateLimitAuth, time.Minute)
		defaultLimiter = middleware.NewRateLimiter(cfg.RateLimitDefault, time.Minute)
		slog.Info("Rate limiting enabled", "auth_per_min", cfg.RateLimitAuth, "default_per_min", cfg.RateLimitDefault)
	} else {
		slog.Warn("Rate limiting disabled")
	}

	mux := http.NewServeMux()
	for _, route := range h.Routes() {
		chain := []func(http.HandlerFunc) http.HandlerFunc{
			middleware.CORS(cfg.CORSAllowedOrigins),
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

	// Start server
	addr := ":" + cfg.Port
	slog.Info("Server listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
