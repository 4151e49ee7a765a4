// ABOUTME: HTTP handlers for the Garmin Connect API proxy
// ABOUTME: Provides the handler struct, upstream client factory, and JSON helpers

package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/paveldurnev/garmin-connect-api/config"
	"github.com/paveldurnev/garmin-connect-api/models"
	"github.com/paveldurnev/garmin-connect-api/services"
)

type Handler struct {
	cfg    *config.Config
	tokens *services.TokenService
}

func NewHandler(cfg *config.Config, tokens *services.TokenService) *Handler {
	return &Handler{
		cfg:    cfg,
		tokens: tokens,
	}
}

// newUpstreamClient constructs a fresh Garmin Connect client for a single
// request. Each client authenticates independently and is discarded when
// the request completes; no upstream session is reused across requests.
func (h *Handler) newUpstreamClient(username, password string) *services.GarminClient {
	return services.NewGarminClient(
		h.cfg.GarminAPIURL,
		username,
		password,
		h.cfg.AllProxy,
		time.Duration(h.cfg.UpstreamTimeout)*time.Second,
	)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, message, kind string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(models.ErrorResponse{
		Error: message,
		Kind:  kind,
		Code:  code,
	})
}
