// ABOUTME: Protected data endpoints proxying Garmin Connect metrics
// ABOUTME: Validates date parameters, delegates upstream, and forwards payloads verbatim

package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/paveldurnev/garmin-connect-api/models"
	"github.com/paveldurnev/garmin-connect-api/services"
)

const dateLayout = "2006-01-02"

// fetchFunc issues one resource-specific call against a logged-in upstream client.
type fetchFunc func(ctx context.Context, client *services.GarminClient) ([]byte, error)

// proxy runs the gateway's delegation step: authenticate to Garmin Connect
// with the server-held configuration credentials, issue the fetch, and
// stream the upstream payload back without transformation. The caller's
// token has already been verified by middleware at this point.
func (h *Handler) proxy(w http.ResponseWriter, r *http.Request, fetch fetchFunc) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", models.KindMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	client := h.newUpstreamClient(h.cfg.GarminUsername, h.cfg.GarminPassword)
	if err := client.Login(r.Context()); err != nil {
		slog.Error("Upstream authentication failed", "path", r.URL.Path, "error", err)
		writeError(w, "Garmin Connect authentication failed", models.KindUpstream, http.StatusBadGateway)
		return
	}

	payload, err := fetch(r.Context(), client)
	if err != nil {
		slog.Error("Upstream fetch failed", "path", r.URL.Path, "error", err)
		writeError(w, "Garmin Connect request failed: "+err.Error(), models.KindUpstream, http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

// dateParam extracts and validates a YYYY-MM-DD query parameter.
func dateParam(r *http.Request, name string) (string, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return "", fmt.Errorf("missing required query parameter %q", name)
	}
	if _, err := time.Parse(dateLayout, value); err != nil {
		return "", fmt.Errorf("invalid date %q for parameter %q, expected YYYY-MM-DD", value, name)
	}
	return value, nil
}

// dateRangeParams extracts and validates start/end query parameters.
func dateRangeParams(r *http.Request) (string, string, error) {
	start, err := dateParam(r, "start")
	if err != nil {
		return "", "", err
	}
	end, err := dateParam(r, "end")
	if err != nil {
		return "", "", err
	}
	if end < start {
		return "", "", fmt.Errorf("end date %q precedes start date %q", end, start)
	}
	return start, end, nil
}

// UserProfile returns the account's profile document.
func (h *Handler) UserProfile(w http.ResponseWriter, r *http.Request) {
	h.proxy(w, r, func(ctx context.Context, client *services.GarminClient) ([]byte, error) {
		return client.GetUserProfile(ctx)
	})
}

// Stats returns the daily summary for a date.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, "date")
	if err != nil {
		writeError(w, err.Error(), models.KindBadRequest, http.StatusBadRequest)
		return
	}
	h.proxy(w, r, func(ctx context.Context, client *services.GarminClient) ([]byte, error) {
		return client.GetDailyStats(ctx, date)
	})
}

// Activities returns activities within a date range.
func (h *Handler) Activities(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRangeParams(r)
	if err != nil {
		writeError(w, err.Error(), models.KindBadRequest, http.StatusBadRequest)
		return
	}
	h.proxy(w, r, func(ctx context.Context, client *services.GarminClient) ([]byte, error) {
		return client.GetActivities(ctx, start, end)
	})
}

// BodyComposition returns body composition data for a date range.
func (h *Handler) BodyComposition(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRangeParams(r)
	if err != nil {
		writeError(w, err.Error(), models.KindBadRequest, http.StatusBadRequest)
		return
	}
	h.proxy(w, r, func(ctx context.Context, client *services.GarminClient) ([]byte, error) {
		return client.GetBodyComposition(ctx, start, end)
	})
}

// Steps returns the step series for a date.
func (h *Handler) Steps(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, "date")
	if err != nil {
		writeError(w, err.Error(), models.KindBadRequest, http.StatusBadRequest)
		return
	}
	h.proxy(w, r, func(ctx context.Context, client *services.GarminClient) ([]byte, error) {
		return client.GetSteps(ctx, date)
	})
}

// HeartRate returns the heart rate series for a date.
func (h *Handler) HeartRate(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, "date")
	if err != nil {
		writeError(w, err.Error(), models.KindBadRequest, http.StatusBadRequest)
		return
	}
	h.proxy(w, r, func(ctx context.Context, client *services.GarminClient) ([]byte, error) {
		return client.GetHeartRate(ctx, date)
	})
}

// Sleep returns sleep data for a date.
func (h *Handler) Sleep(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, "date")
	if err != nil {
		writeError(w, err.Error(), models.KindBadRequest, http.StatusBadRequest)
		return
	}
	h.proxy(w, r, func(ctx context.Context, client *services.GarminClient) ([]byte, error) {
		return client.GetSleep(ctx, date)
	})
}

// Stress returns the stress series for a date.
func (h *Handler) Stress(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, "date")
	if err != nil {
		writeError(w, err.Error(), models.KindBadRequest, http.StatusBadRequest)
		return
	}
	h.proxy(w, r, func(ctx context.Context, client *services.GarminClient) ([]byte, error) {
		return client.GetStress(ctx, date)
	})
}

// BodyBattery returns body battery reports for a date range.
func (h *Handler) BodyBattery(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRangeParams(r)
	if err != nil {
		writeError(w, err.Error(), models.KindBadRequest, http.StatusBadRequest)
		return
	}
	h.proxy(w, r, func(ctx context.Context, client *services.GarminClient) ([]byte, error) {
		return client.GetBodyBattery(ctx, start, end)
	})
}
