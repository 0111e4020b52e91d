package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/db"
	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/state"
	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/testutil"
)

func TestIngestRefreshSummaryFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	env := testutil.SetupTestEnvironment(t)
	controller := state.NewController(env.DB, state.Options{})
	server := NewServer(env.DB, controller, Options{})
	router := server.SetupRoutes()

	body := `{
		"user_email": "anna@shop.pl",
		"user_name": "Anna Kowalska",
		"tool_id": "desc",
		"tool_name": "Descriptions",
		"action": "generate",
		"status": "success",
		"time_saved_minutes": 12,
		"webhook_latency_ms": 340,
		"fields_updated": 4,
		"product_name": "Mug",
		"extension_version": "1.4.0",
		"request_payload": {"locale": "pl_PL"}
	}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var created map[string]string
	testutil.ParseJSONResponse(t, w, &created)
	if created["id"] == "" {
		t.Error("ingest response missing event id")
	}

	// An event rejected by validation must not reach the store.
	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/api/v1/events", strings.NewReader(`{"action": "click"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/refresh", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/summary", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var summary struct {
		KPIs struct {
			TotalUses        int     `json:"total_uses"`
			TimeSavedMinutes float64 `json:"time_saved_minutes"`
		} `json:"kpis"`
	}
	testutil.ParseJSONResponse(t, w, &summary)
	if summary.KPIs.TotalUses != 1 || summary.KPIs.TimeSavedMinutes != 12 {
		t.Errorf("summary KPIs = %+v, want 1 use saving 12 minutes", summary.KPIs)
	}

	events, err := env.DB.FetchEvents(context.Background(), db.EventFilter{})
	if err != nil {
		t.Fatalf("FetchEvents() error = %v", err)
	}
	if len(events) != 1 {
		t.Errorf("stored events = %d, want 1 (invalid event rejected)", len(events))
	}
}
