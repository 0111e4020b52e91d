package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/logger"
)

// RefreshTimeout bounds one full fetch-and-recompute cycle.
const RefreshTimeout = 60 * time.Second

// handleRefresh fetches the event window and rebuilds every aggregate.
// The optional days parameter narrows the window to the last N days; 0
// or absent keeps the server's default range.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	log := logger.Ctx(r.Context())

	rangeDays := s.rangeDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "days must be a non-negative integer")
			return
		}
		rangeDays = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), RefreshTimeout)
	defer cancel()

	snap, err := s.controller.Refresh(ctx, rangeDays)
	if err != nil {
		log.Error("refresh failed", "error", err)
		respondError(w, http.StatusBadGateway, "Failed to load events")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"events":      len(snap.Events),
		"range_days":  rangeDays,
		"computed_at": snap.ComputedAt,
	})
}

// handleLiveStart switches the dashboard into live mode: a background
// loop re-runs the refresh every 30 seconds until stopped.
func (s *Server) handleLiveStart(w http.ResponseWriter, r *http.Request) {
	// The loop must outlive this request, so it is anchored to the
	// background context, not r.Context().
	s.controller.StartLive(context.Background())
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"live": true,
	})
}

// handleLiveStop leaves live mode.
func (s *Server) handleLiveStop(w http.ResponseWriter, r *http.Request) {
	s.controller.StopLive()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"live": false,
	})
}
