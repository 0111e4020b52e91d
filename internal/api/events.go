package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/db"
	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/logger"
	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/models"
)

const (
	// MaxIngestBodySize caps the ingest request body (64 KB).
	MaxIngestBodySize = 64 * 1024
	// MaxFeedPageSize caps a client-chosen feed page.
	MaxFeedPageSize = 500
)

// ingestRequest is the wire shape the browser extension posts.
type ingestRequest struct {
	CreatedAt        time.Time              `json:"created_at"`
	UserEmail        string                 `json:"user_email"`
	UserName         string                 `json:"user_name"`
	ToolID           string                 `json:"tool_id"`
	ToolName         string                 `json:"tool_name"`
	Action           string                 `json:"action"`
	Status           string                 `json:"status"`
	TimeSavedMinutes float64                `json:"time_saved_minutes"`
	WebhookLatencyMs int64                  `json:"webhook_latency_ms"`
	FieldsUpdated    int                    `json:"fields_updated"`
	ProductName      string                 `json:"product_name"`
	PageURL          string                 `json:"page_url"`
	ExtensionVersion string                 `json:"extension_version"`
	RequestPayload   map[string]interface{} `json:"request_payload,omitempty"`
	ResponsePayload  map[string]interface{} `json:"response_payload,omitempty"`
	ErrorMessage     string                 `json:"error_message,omitempty"`
}

// handleIngestEvent records one usage event posted by the extension.
func (s *Server) handleIngestEvent(w http.ResponseWriter, r *http.Request) {
	log := logger.Ctx(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, MaxIngestBodySize)
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	event := models.Event{
		CreatedAt:        req.CreatedAt,
		UserEmail:        req.UserEmail,
		UserName:         req.UserName,
		ToolID:           req.ToolID,
		ToolName:         req.ToolName,
		Action:           models.ParseAction(req.Action),
		Status:           models.ParseStatus(req.Status),
		TimeSavedMinutes: req.TimeSavedMinutes,
		WebhookLatencyMs: req.WebhookLatencyMs,
		FieldsUpdated:    req.FieldsUpdated,
		ProductName:      req.ProductName,
		PageURL:          req.PageURL,
		ExtensionVersion: req.ExtensionVersion,
	}
	meta := models.EventMetadata{
		RequestPayload:  req.RequestPayload,
		ResponsePayload: req.ResponsePayload,
		ErrorMessage:    req.ErrorMessage,
	}
	if meta.HasContent() {
		event.Metadata = &meta
	}

	dbCtx, cancel := context.WithTimeout(r.Context(), DatabaseTimeout)
	defer cancel()

	stored, err := s.db.InsertEvent(dbCtx, event)
	if err != nil {
		if errors.Is(err, db.ErrInvalidEvent) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error("failed to insert event", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to record event")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"id": stored.ID.String(),
	})
}

// handleEventFeed returns one page of the most recent events from the
// current snapshot, newest first.
func (s *Server) handleEventFeed(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}

	q := r.URL.Query()
	page := 1
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		page = n
	}
	pageSize := 0 // snapshot default
	if raw := q.Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxFeedPageSize {
			respondError(w, http.StatusBadRequest, "page_size must be between 1 and 500")
			return
		}
		pageSize = n
	}

	events, totalPages := snap.Page(page-1, pageSize)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"events":      events,
		"page":        page,
		"total_pages": totalPages,
		"total":       len(snap.Events),
	})
}
