// Package models defines the event record shared by the store,
// the aggregation engine, and the API layer.
package models

import (
	"time"

	"github.com/google/uuid"
)

// UnknownIdentity is the sentinel used when an event carries no usable
// user or tool identity. Aggregation groups such events under this key.
const UnknownIdentity = "unknown"

// Action classifies what the extension did. Unrecognized values map to
// ActionOther and are ignored by most aggregates.
type Action string

const (
	ActionGenerate Action = "generate"
	ActionUndo     Action = "undo"
	ActionOther    Action = "other"
)

// ParseAction normalizes a raw action string to a closed variant.
func ParseAction(raw string) Action {
	switch raw {
	case string(ActionGenerate):
		return ActionGenerate
	case string(ActionUndo):
		return ActionUndo
	default:
		return ActionOther
	}
}

// Status classifies the outcome of a generate action. It is meaningless
// for other actions.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusOther   Status = "other"
)

// ParseStatus normalizes a raw status string to a closed variant.
func ParseStatus(raw string) Status {
	switch raw {
	case string(StatusSuccess):
		return StatusSuccess
	case string(StatusError):
		return StatusError
	default:
		return StatusOther
	}
}

// EventMetadata is the opaque drill-down payload recorded alongside an
// event. It is surfaced as-is and never aggregated.
type EventMetadata struct {
	RequestPayload  map[string]any `json:"request_payload,omitempty"`
	ResponsePayload map[string]any `json:"response_payload,omitempty"`
	ErrorMessage    string         `json:"error_message,omitempty"`
}

// HasContent reports whether the metadata carries anything worth showing.
func (m *EventMetadata) HasContent() bool {
	if m == nil {
		return false
	}
	return len(m.RequestPayload) > 0 || len(m.ResponsePayload) > 0 || m.ErrorMessage != ""
}

// Event is one usage record from the browser extension. Events are
// immutable after ingestion; every derived aggregate is recomputed from
// the full event slice held in memory.
type Event struct {
	ID               uuid.UUID      `json:"id"`
	CreatedAt        time.Time      `json:"created_at"`
	UserEmail        string         `json:"user_email"`
	UserName         string         `json:"user_name"`
	ToolID           string         `json:"tool_id"`
	ToolName         string         `json:"tool_name"`
	Action           Action         `json:"action"`
	Status           Status         `json:"status"`
	TimeSavedMinutes float64        `json:"time_saved_minutes"`
	WebhookLatencyMs int64          `json:"webhook_latency_ms"`
	FieldsUpdated    int            `json:"fields_updated"`
	ProductName      string         `json:"product_name,omitempty"`
	PageURL          string         `json:"page_url,omitempty"`
	ExtensionVersion string         `json:"extension_version,omitempty"`
	Metadata         *EventMetadata `json:"metadata,omitempty"`
}

// UserKey returns the grouping key for per-user aggregates.
func (e *Event) UserKey() string {
	if e.UserEmail == "" {
		return UnknownIdentity
	}
	return e.UserEmail
}

// DisplayName returns the best available user label.
func (e *Event) DisplayName() string {
	if e.UserName != "" {
		return e.UserName
	}
	return e.UserKey()
}

// ToolKey returns the grouping key for per-tool aggregates: the tool ID,
// falling back to the tool name, then to the unknown sentinel.
func (e *Event) ToolKey() string {
	if e.ToolID != "" {
		return e.ToolID
	}
	if e.ToolName != "" {
		return e.ToolName
	}
	return UnknownIdentity
}

// ToolLabel returns the display name for the event's tool.
func (e *Event) ToolLabel() string {
	if e.ToolName != "" {
		return e.ToolName
	}
	return e.ToolKey()
}

// Day renders the calendar-day bucket for the event in loc.
func (e *Event) Day(loc *time.Location) string {
	return e.CreatedAt.In(loc).Format("2006-01-02")
}
