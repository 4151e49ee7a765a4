// ABOUTME: Token endpoint handler implementing the login flow
// ABOUTME: Verifies credentials against Garmin Connect and mints access tokens

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/paveldurnev/garmin-connect-api/models"
)

// Token authenticates a username/password pair against Garmin Connect and,
// on success, mints a signed access token. The submitted credentials are
// used for the one upstream handshake and then discarded: they are never
// stored, logged, or embedded in the token.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", models.KindMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, "Invalid form body", models.KindBadRequest, http.StatusBadRequest)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		writeError(w, "Username and password are required", models.KindBadRequest, http.StatusBadRequest)
		return
	}

	// Verify the credentials by logging into Garmin Connect. A single
	// failure is surfaced immediately; there is no retry.
	client := h.newUpstreamClient(username, password)
	if err := client.Login(r.Context()); err != nil {
		slog.Warn("Authentication failed", "username", username, "error", err)
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, "Incorrect username or password", models.KindAuthentication, http.StatusUnauthorized)
		return
	}

	token, expiresAt, err := h.tokens.Issue(username)
	if err != nil {
		slog.Error("Failed to issue token", "error", err)
		writeError(w, "Failed to issue token", models.KindInternal, http.StatusInternalServerError)
		return
	}

	slog.Info("Access token issued", "username", username, "expires_at", expiresAt)
	h.writeJSON(w, http.StatusOK, models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	})
}
