package analytics

import (
	"math"
	"time"

	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/models"
)

// TrendDirection classifies a period-over-period delta.
type TrendDirection string

const (
	TrendUp   TrendDirection = "up"
	TrendDown TrendDirection = "down"
	TrendFlat TrendDirection = "flat"
)

// Trend is the percentage change of the second half of the period
// relative to the first. HasData is false when both halves are zero, in
// which case the dashboard renders nothing for the delta.
type Trend struct {
	Pct       int            `json:"pct"`
	Direction TrendDirection `json:"direction"`
	HasData   bool           `json:"has_data"`
}

// Trends carries the period-over-period deltas for the three KPI cards
// that show them.
type Trends struct {
	Uses        Trend `json:"uses"`
	TimeSaved   Trend `json:"time_saved"`
	ActiveUsers Trend `json:"active_users"`
}

// halfMetrics are the per-half figures the trend deltas compare.
type halfMetrics struct {
	uses      int
	timeSaved float64
	users     int
}

// ComputeTrends splits the event set at the temporal midpoint (the
// arithmetic mean of the earliest and latest timestamps, not the index
// midpoint) and expresses each metric of the at-or-after-midpoint half
// relative to the before-midpoint half. The result depends only on the
// event multiset, not on input order.
func ComputeTrends(events []models.Event) Trends {
	if len(events) == 0 {
		return Trends{}
	}

	earliest := events[0].CreatedAt
	latest := events[0].CreatedAt
	for i := range events {
		ts := events[i].CreatedAt
		if ts.Before(earliest) {
			earliest = ts
		}
		if ts.After(latest) {
			latest = ts
		}
	}
	midpoint := time.UnixMilli((earliest.UnixMilli() + latest.UnixMilli()) / 2)

	var first, second halfMetrics
	firstUsers := make(map[string]struct{})
	secondUsers := make(map[string]struct{})
	for i := range events {
		e := &events[i]
		half := &second
		users := secondUsers
		if e.CreatedAt.Before(midpoint) {
			half = &first
			users = firstUsers
		}
		if e.UserEmail != "" {
			users[e.UserEmail] = struct{}{}
		}
		if e.Action == models.ActionGenerate {
			half.uses++
			if e.Status == models.StatusSuccess {
				half.timeSaved += e.TimeSavedMinutes
			}
		}
	}
	first.users = len(firstUsers)
	second.users = len(secondUsers)

	return Trends{
		Uses:        trendOf(float64(second.uses), float64(first.uses)),
		TimeSaved:   trendOf(second.timeSaved, first.timeSaved),
		ActiveUsers: trendOf(float64(second.users), float64(first.users)),
	}
}

// trendOf expresses current relative to previous. Both zero means no
// delta; a zero previous with a nonzero current reports +100%.
func trendOf(current, previous float64) Trend {
	if previous == 0 && current == 0 {
		return Trend{Direction: TrendFlat}
	}
	if previous == 0 {
		return Trend{Pct: 100, Direction: TrendUp, HasData: true}
	}
	pct := int(math.Round((current - previous) / previous * 100))
	dir := TrendFlat
	switch {
	case pct > 0:
		dir = TrendUp
	case pct < 0:
		dir = TrendDown
	}
	return Trend{Pct: pct, Direction: dir, HasData: true}
}
