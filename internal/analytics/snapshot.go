// Package analytics implements the in-memory aggregation engine: pure
// functions that transform a flat slice of events into the derived views
// the dashboard renders (KPIs, trends, rollups, adoption, time patterns,
// ROI). Nothing in this package performs I/O.
package analytics

import (
	"time"

	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/models"
)

// Snapshot holds every derived view for one event set. A snapshot is
// built in a single Compute call and never mutated afterwards; a refresh
// replaces it wholesale.
type Snapshot struct {
	Events []models.Event `json:"events"`

	KPIs   KPISummary `json:"kpis"`
	Trends Trends     `json:"trends"`

	Daily []DailyAggregate `json:"daily"`
	Tools []ToolAggregate  `json:"tools"`
	// Users is sorted descending by total uses.
	Users []UserAggregate `json:"users"`

	Adoption []AdoptionPoint `json:"adoption"`
	// RecentAdopters lists each user's very first event, newest first.
	RecentAdopters []models.Event `json:"recent_adopters"`

	Patterns TimePatterns `json:"patterns"`

	Products  []ProductAggregate        `json:"products"`
	ToolDaily map[string][]ToolDayPoint `json:"tool_daily"`

	TotalTimeSavedMinutes float64   `json:"total_time_saved_minutes"`
	ComputedAt            time.Time `json:"computed_at"`
}

// Compute runs the full aggregation pipeline over events. Day bucketing
// and time-of-day patterns use loc; pass time.UTC when the deployment has
// no meaningful local zone. The input slice is retained by the snapshot
// and must not be mutated by the caller afterwards.
func Compute(events []models.Event, loc *time.Location) *Snapshot {
	if loc == nil {
		loc = time.UTC
	}

	kpis := ComputeKPIs(events)
	adoption, recent := BuildAdoption(events, loc)

	return &Snapshot{
		Events:                events,
		KPIs:                  kpis,
		Trends:                ComputeTrends(events),
		Daily:                 BuildDaily(events, loc),
		Tools:                 BuildTools(events),
		Users:                 BuildUsers(events),
		Adoption:              adoption,
		RecentAdopters:        recent,
		Patterns:              BuildTimePatterns(events, loc),
		Products:              BuildProducts(events),
		ToolDaily:             BuildToolDaily(events, loc),
		TotalTimeSavedMinutes: kpis.TimeSavedMinutes,
		ComputedAt:            time.Now().UTC(),
	}
}

// Page returns one feed page of events (newest first, as fetched) plus
// the total page count. Page numbering starts at 0.
func (s *Snapshot) Page(page, pageSize int) ([]models.Event, int) {
	if pageSize <= 0 {
		pageSize = 50
	}
	totalPages := (len(s.Events) + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 0 {
		page = 0
	}
	start := page * pageSize
	if start >= len(s.Events) {
		return []models.Event{}, totalPages
	}
	end := start + pageSize
	if end > len(s.Events) {
		end = len(s.Events)
	}
	return s.Events[start:end], totalPages
}
