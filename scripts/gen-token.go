// ABOUTME: Generates signed access tokens for testing
// ABOUTME: Mints valid or expired tokens against a given secret key

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/paveldurnev/garmin-connect-api/services"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "Usage: %s <secret-key> <valid|expired> [username]\n", os.Args[0])
		os.Exit(1)
	}

	secret := os.Args[1]
	tokenType := os.Args[2]
	username := "athlete@example.com"
	if len(os.Args) > 3 {
		username = os.Args[3]
	}

	var ttl time.Duration
	switch tokenType {
	case "valid":
		ttl = 30 * time.Minute
	case "expired":
		ttl = -time.Hour
	default:
		fmt.Fprintf(os.Stderr, "Unknown token type %q (must be valid or expired)\n", tokenType)
		os.Exit(1)
	}

	svc := services.NewTokenService(secret, ttl)
	token, expiresAt, err := svc.Issue(username)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to issue token: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "subject: %s\nexpires: %s\n", username, expiresAt.Format(time.RFC3339))
	fmt.Println(token)
}
