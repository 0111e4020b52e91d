package testutil

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/models"
)

// ParseJSONResponse decodes JSON response body into v
func ParseJSONResponse(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v. Body: %s", err, w.Body.String())
	}
}

// AssertStatus checks HTTP status code matches expected
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()

	if w.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// Event builds a successful generate event with sensible defaults.
// Override fields on the returned value as needed.
func Event(email, tool string, at time.Time) models.Event {
	return models.Event{
		CreatedAt:        at,
		UserEmail:        email,
		UserName:         email,
		ToolID:           tool,
		ToolName:         tool,
		Action:           models.ActionGenerate,
		Status:           models.StatusSuccess,
		TimeSavedMinutes: 5,
		WebhookLatencyMs: 120,
		FieldsUpdated:    3,
		ExtensionVersion: "1.4.0",
	}
}
