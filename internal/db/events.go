package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/models"
)

// MaxFetchEvents bounds a single fetch, matching the dashboard's query
// limit against the hosted backend.
const MaxFetchEvents = 10000

// EventFilter narrows a fetch. The zero value returns everything up to
// MaxFetchEvents.
type EventFilter struct {
	// Since keeps events created at or after this instant when non-zero.
	Since time.Time
	// Actions keeps only the listed actions when non-empty.
	Actions []models.Action
	// Limit caps the result; values outside (0, MaxFetchEvents] clamp to
	// MaxFetchEvents.
	Limit int
}

// FetchEvents returns events matching the filter, newest first. Failures
// are wrapped in ErrFetchFailed so callers can treat every transport or
// query problem uniformly.
func (db *DB) FetchEvents(ctx context.Context, filter EventFilter) ([]models.Event, error) {
	ctx, span := tracer.Start(ctx, "db.fetch_events",
		trace.WithAttributes(
			attribute.Bool("filter.has_since", !filter.Since.IsZero()),
			attribute.Int("filter.limit", filter.Limit),
		))
	defer span.End()

	limit := filter.Limit
	if limit <= 0 || limit > MaxFetchEvents {
		limit = MaxFetchEvents
	}

	actions := make([]string, 0, len(filter.Actions))
	for _, a := range filter.Actions {
		actions = append(actions, string(a))
	}

	query := `
		SELECT id, created_at, user_email, user_name, tool_id, tool_name,
		       action, status, time_saved_minutes, webhook_latency_ms,
		       fields_updated, product_name, page_url, extension_version, metadata
		FROM events
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		  AND (cardinality($2::text[]) = 0 OR action = ANY($2::text[]))
		ORDER BY created_at DESC
		LIMIT $3
	`

	var since sql.NullTime
	if !filter.Since.IsZero() {
		since = sql.NullTime{Time: filter.Since, Valid: true}
	}

	rows, err := db.conn.QueryContext(ctx, query, since, pq.Array(actions), limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	span.SetAttributes(attribute.Int("events.count", len(events)))
	return events, nil
}

// scanEvent reads one row, normalizing nullable fields to safe defaults
// so aggregation never has to deal with partial records.
func scanEvent(rows *sql.Rows) (models.Event, error) {
	var (
		e            models.Event
		userEmail    sql.NullString
		userName     sql.NullString
		toolID       sql.NullString
		toolName     sql.NullString
		action       string
		status       sql.NullString
		timeSaved    sql.NullFloat64
		latency      sql.NullInt64
		fields       sql.NullInt64
		productName  sql.NullString
		pageURL      sql.NullString
		extVersion   sql.NullString
		metadataJSON []byte
	)

	err := rows.Scan(
		&e.ID, &e.CreatedAt,
		&userEmail, &userName, &toolID, &toolName,
		&action, &status, &timeSaved, &latency, &fields,
		&productName, &pageURL, &extVersion, &metadataJSON,
	)
	if err != nil {
		return models.Event{}, err
	}

	e.UserEmail = userEmail.String
	e.UserName = userName.String
	e.ToolID = toolID.String
	e.ToolName = toolName.String
	e.Action = models.ParseAction(action)
	e.Status = models.ParseStatus(status.String)
	e.TimeSavedMinutes = timeSaved.Float64
	e.WebhookLatencyMs = latency.Int64
	e.FieldsUpdated = int(fields.Int64)
	e.ProductName = productName.String
	e.PageURL = pageURL.String
	e.ExtensionVersion = extVersion.String

	if len(metadataJSON) > 0 {
		var meta models.EventMetadata
		// Malformed metadata is display-only; drop it rather than fail
		// the whole fetch.
		if err := json.Unmarshal(metadataJSON, &meta); err == nil && meta.HasContent() {
			e.Metadata = &meta
		}
	}
	return e, nil
}

// InsertEvent stores one event from the extension. A zero ID is
// assigned; a zero CreatedAt is stamped with the current time.
func (db *DB) InsertEvent(ctx context.Context, e models.Event) (models.Event, error) {
	ctx, span := tracer.Start(ctx, "db.insert_event",
		trace.WithAttributes(
			attribute.String("event.action", string(e.Action)),
			attribute.String("event.tool_id", e.ToolID),
		))
	defer span.End()

	if e.Action == models.ActionOther {
		return models.Event{}, fmt.Errorf("%w: unrecognized action", ErrInvalidEvent)
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	var metadataJSON []byte
	if e.Metadata.HasContent() {
		var err error
		metadataJSON, err = json.Marshal(e.Metadata)
		if err != nil {
			return models.Event{}, fmt.Errorf("%w: metadata: %v", ErrInvalidEvent, err)
		}
	}

	query := `
		INSERT INTO events (
			id, created_at, user_email, user_name, tool_id, tool_name,
			action, status, time_saved_minutes, webhook_latency_ms,
			fields_updated, product_name, page_url, extension_version, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := db.conn.ExecContext(ctx, query,
		e.ID, e.CreatedAt, e.UserEmail, e.UserName, e.ToolID, e.ToolName,
		string(e.Action), string(e.Status), e.TimeSavedMinutes, e.WebhookLatencyMs,
		e.FieldsUpdated, e.ProductName, e.PageURL, e.ExtensionVersion, metadataJSON,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return models.Event{}, fmt.Errorf("failed to insert event: %w", err)
	}
	return e, nil
}
