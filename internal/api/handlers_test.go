package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/db"
	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/export"
	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/models"
	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/state"
	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/testutil"
)

type staticSource struct {
	events []models.Event
}

func (s *staticSource) FetchEvents(ctx context.Context, filter db.EventFilter) ([]models.Event, error) {
	return s.events, nil
}

// newTestServer builds a router over a controller backed by fixed events.
// The database is nil; tests exercising ingest run against containers.
func newTestServer(t *testing.T, events []models.Event, refresh bool) (http.Handler, *state.Controller) {
	t.Helper()

	controller := state.NewController(&staticSource{events: events}, state.Options{})
	if refresh {
		if _, err := controller.Refresh(context.Background(), 0); err != nil {
			t.Fatalf("initial refresh failed: %v", err)
		}
	}
	server := NewServer(nil, controller, Options{})
	return server.SetupRoutes(), controller
}

func fixtureEvents() []models.Event {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	return []models.Event{
		testutil.Event("anna@shop.pl", "desc", base),
		testutil.Event("anna@shop.pl", "desc", base.Add(time.Hour)),
		testutil.Event("piotr@shop.pl", "seo", base.AddDate(0, 0, 1)),
	}
}

func TestReadEndpointsBeforeFirstRefresh(t *testing.T) {
	router, _ := newTestServer(t, nil, false)

	paths := []string{
		"/api/v1/summary",
		"/api/v1/daily",
		"/api/v1/tools",
		"/api/v1/users",
		"/api/v1/adoption",
		"/api/v1/patterns",
		"/api/v1/roi",
		"/api/v1/events",
		"/api/v1/export/users.csv",
	}
	for _, path := range paths {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("GET %s = %d before refresh, want 503", path, w.Code)
		}
	}
}

func TestHealth(t *testing.T) {
	router, _ := newTestServer(t, nil, false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	testutil.AssertStatus(t, w, http.StatusOK)
}

func TestSummary(t *testing.T) {
	router, _ := newTestServer(t, fixtureEvents(), true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/summary", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp struct {
		KPIs struct {
			TotalUses   int `json:"total_uses"`
			ActiveUsers int `json:"active_users"`
		} `json:"kpis"`
	}
	testutil.ParseJSONResponse(t, w, &resp)
	if resp.KPIs.TotalUses != 3 {
		t.Errorf("total_uses = %d, want 3", resp.KPIs.TotalUses)
	}
	if resp.KPIs.ActiveUsers != 2 {
		t.Errorf("active_users = %d, want 2", resp.KPIs.ActiveUsers)
	}
}

func TestToolsDerivedRates(t *testing.T) {
	events := fixtureEvents()
	events[1].WebhookLatencyMs = 241
	events[2].Status = models.StatusError
	router, _ := newTestServer(t, events, true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/tools", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var rows []struct {
		ToolID       string `json:"tool_id"`
		Uses         int    `json:"uses"`
		SuccessRate  int    `json:"success_rate"`
		AvgLatencyMs int64  `json:"avg_latency_ms"`
	}
	testutil.ParseJSONResponse(t, w, &rows)
	if len(rows) != 2 {
		t.Fatalf("got %d tools, want 2", len(rows))
	}
	// Sorted by tool ID: desc first.
	desc := rows[0]
	if desc.ToolID != "desc" || desc.Uses != 2 {
		t.Errorf("rows[0] = %+v, want desc with 2 uses", desc)
	}
	if desc.SuccessRate != 100 {
		t.Errorf("desc success_rate = %d, want 100", desc.SuccessRate)
	}
	// Mean of 120 and 241 rounds to 181 (whole milliseconds).
	if desc.AvgLatencyMs != 181 {
		t.Errorf("desc avg_latency_ms = %d, want 181", desc.AvgLatencyMs)
	}
	if rows[1].ToolID != "seo" || rows[1].SuccessRate != 0 {
		t.Errorf("rows[1] = %+v, want seo with 0%% success", rows[1])
	}
}

func TestUsersFilterAndSort(t *testing.T) {
	router, _ := newTestServer(t, fixtureEvents(), true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/users?q=piotr", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp struct {
		Users []struct {
			Email string `json:"email"`
		} `json:"users"`
		Total int    `json:"total"`
		Dir   string `json:"dir"`
	}
	testutil.ParseJSONResponse(t, w, &resp)
	if resp.Total != 1 || len(resp.Users) != 1 || resp.Users[0].Email != "piotr@shop.pl" {
		t.Errorf("filtered users = %+v, want only piotr@shop.pl", resp.Users)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/users?sort=uses&dir=asc", nil))
	testutil.ParseJSONResponse(t, w, &resp)
	if resp.Dir != "asc" {
		t.Errorf("dir = %q, want asc", resp.Dir)
	}
	if len(resp.Users) != 2 || resp.Users[0].Email != "piotr@shop.pl" {
		t.Errorf("ascending users = %+v, want least active first", resp.Users)
	}
}

func TestUserDetail(t *testing.T) {
	router, _ := newTestServer(t, fixtureEvents(), true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/users/anna@shop.pl", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var detail struct {
		User struct {
			Email string `json:"email"`
			Uses  int    `json:"uses"`
		} `json:"user"`
		FavoriteTool string `json:"favorite_tool"`
	}
	testutil.ParseJSONResponse(t, w, &detail)
	if detail.User.Uses != 2 || detail.FavoriteTool != "desc" {
		t.Errorf("detail = %+v, want 2 uses of desc", detail)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/users/nobody@shop.pl", nil))
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestROIQueryParams(t *testing.T) {
	router, _ := newTestServer(t, fixtureEvents(), true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/roi", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var report struct {
		Params struct {
			HourlyRate float64 `json:"hourly_rate"`
		} `json:"params"`
		TotalMoney int64 `json:"total_money"`
	}
	testutil.ParseJSONResponse(t, w, &report)
	if report.Params.HourlyRate != 100 {
		t.Errorf("default hourly_rate = %v, want 100", report.Params.HourlyRate)
	}
	// 3 uses x 5 minutes = 15 min = 0.25h at 100/h.
	if report.TotalMoney != 25 {
		t.Errorf("total_money = %d, want 25", report.TotalMoney)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/roi?hourly_rate=0", nil))
	testutil.ParseJSONResponse(t, w, &report)
	if report.TotalMoney != 0 {
		t.Errorf("total_money at zero rate = %d, want 0", report.TotalMoney)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/roi?hourly_rate=abc", nil))
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/roi?work_days=0", nil))
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestEventFeedPagination(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	var events []models.Event
	for i := 0; i < 60; i++ {
		events = append(events, testutil.Event("a@shop.pl", "desc", base.Add(time.Duration(i)*time.Minute)))
	}
	router, _ := newTestServer(t, events, true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/events", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp struct {
		Events     []models.Event `json:"events"`
		Page       int            `json:"page"`
		TotalPages int            `json:"total_pages"`
		Total      int            `json:"total"`
	}
	testutil.ParseJSONResponse(t, w, &resp)
	if len(resp.Events) != 50 || resp.TotalPages != 2 || resp.Total != 60 {
		t.Errorf("page 1 = %d events, %d pages, %d total; want 50, 2, 60",
			len(resp.Events), resp.TotalPages, resp.Total)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/events?page=2", nil))
	testutil.ParseJSONResponse(t, w, &resp)
	if len(resp.Events) != 10 {
		t.Errorf("page 2 = %d events, want 10", len(resp.Events))
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/events?page_size=25", nil))
	testutil.ParseJSONResponse(t, w, &resp)
	if len(resp.Events) != 25 || resp.TotalPages != 3 {
		t.Errorf("custom page size = %d events, %d pages; want 25, 3", len(resp.Events), resp.TotalPages)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/events?page=0", nil))
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/events?page_size=9999", nil))
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestRefreshEndpoint(t *testing.T) {
	router, controller := newTestServer(t, fixtureEvents(), false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/refresh?days=30", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp struct {
		Events    int `json:"events"`
		RangeDays int `json:"range_days"`
	}
	testutil.ParseJSONResponse(t, w, &resp)
	if resp.Events != 3 || resp.RangeDays != 30 {
		t.Errorf("refresh response = %+v, want 3 events over 30 days", resp)
	}
	if controller.RangeDays() != 30 {
		t.Errorf("controller.RangeDays() = %d, want 30", controller.RangeDays())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/refresh?days=-1", nil))
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestLiveEndpoints(t *testing.T) {
	router, controller := newTestServer(t, fixtureEvents(), true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/live/start", nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	if !controller.LiveRunning() {
		t.Error("live loop not running after /live/start")
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/live/stop", nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	if controller.LiveRunning() {
		t.Error("live loop still running after /live/stop")
	}
}

func TestExportUsersCSV(t *testing.T) {
	router, _ := newTestServer(t, fixtureEvents(), true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/export/users.csv", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "sylius-toolbox-users.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !strings.HasPrefix(w.Body.String(), export.BOM) {
		t.Error("download does not start with the UTF-8 BOM")
	}
}

func TestIngestInvalidBody(t *testing.T) {
	router, _ := newTestServer(t, nil, false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/events", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	testutil.AssertStatus(t, w, http.StatusBadRequest)
}
