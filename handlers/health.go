// ABOUTME: Root welcome and health endpoints
// ABOUTME: Unauthenticated liveness and API discovery

package handlers

import (
	"net/http"

	"github.com/paveldurnev/garmin-connect-api/models"
)

// Root returns the welcome message served at /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	// The "/" pattern matches every path not claimed by another route
	if r.URL.Path != "/" {
		writeError(w, "Not found", models.KindBadRequest, http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", models.KindMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to Garmin Connect API",
	})
}

// Health reports process liveness and upstream configuration status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", models.KindMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	upstream := "not_configured"
	if h.cfg != nil && h.cfg.GarminUsername != "" && h.cfg.GarminPassword != "" {
		upstream = "configured"
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"upstream": upstream,
	})
}
