package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/models"
)

// DailyAggregate is one calendar day of generate activity.
type DailyAggregate struct {
	Day              string  `json:"day"`
	Uses             int     `json:"uses"`
	TimeSavedMinutes float64 `json:"time_saved_minutes"`
}

// ToolAggregate is the per-tool rollup. Latency figures only include
// measured (positive) webhook latencies.
type ToolAggregate struct {
	ToolID           string  `json:"tool_id"`
	ToolName         string  `json:"tool_name"`
	Uses             int     `json:"uses"`
	Successes        int     `json:"successes"`
	Errors           int     `json:"errors"`
	Undos            int     `json:"undos"`
	TimeSavedMinutes float64 `json:"time_saved_minutes"`
	LatencySumMs     int64   `json:"-"`
	LatencyCount     int     `json:"-"`
}

// AvgLatencyMs returns the tool's mean measured latency, 0 if unmeasured.
func (t *ToolAggregate) AvgLatencyMs() int64 {
	if t.LatencyCount == 0 {
		return 0
	}
	return int64(math.Round(float64(t.LatencySumMs) / float64(t.LatencyCount)))
}

// SuccessRate returns round(successes/uses*100), 0 for an unused tool.
func (t *ToolAggregate) SuccessRate() int {
	return ratePct(t.Successes, t.Uses)
}

// UserAggregate is the per-user rollup. Every event updates LastActive
// and the drill-down event list; only generate actions update the
// counters and the used-tools set.
type UserAggregate struct {
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	Uses             int       `json:"uses"`
	Successes        int       `json:"successes"`
	Errors           int       `json:"errors"`
	TimeSavedMinutes float64   `json:"time_saved_minutes"`
	ToolsUsed        []string  `json:"tools_used"`
	LastActive       time.Time `json:"last_active"`

	toolSet map[string]struct{}
	// Events holds the user's full event list in fetch order (newest
	// first) for drill-down display.
	Events []models.Event `json:"-"`
}

// SuccessRate returns round(successes/uses*100), 0 for an idle user.
func (u *UserAggregate) SuccessRate() int {
	return ratePct(u.Successes, u.Uses)
}

// BuildDaily buckets generate events by calendar day in loc and returns
// the days in ascending order.
func BuildDaily(events []models.Event, loc *time.Location) []DailyAggregate {
	byDay := make(map[string]*DailyAggregate)
	for i := range events {
		e := &events[i]
		if e.Action != models.ActionGenerate {
			continue
		}
		day := e.Day(loc)
		agg := byDay[day]
		if agg == nil {
			agg = &DailyAggregate{Day: day}
			byDay[day] = agg
		}
		agg.Uses++
		agg.TimeSavedMinutes += e.TimeSavedMinutes
	}

	daily := make([]DailyAggregate, 0, len(byDay))
	for _, agg := range byDay {
		daily = append(daily, *agg)
	}
	sort.Slice(daily, func(i, j int) bool { return daily[i].Day < daily[j].Day })
	return daily
}

// BuildTools rolls generate events up per tool, then counts undo actions
// against tools that already have an entry. An undo for a tool that never
// generated anything in the window is dropped.
func BuildTools(events []models.Event) []ToolAggregate {
	byTool := make(map[string]*ToolAggregate)
	for i := range events {
		e := &events[i]
		if e.Action != models.ActionGenerate {
			continue
		}
		key := e.ToolKey()
		agg := byTool[key]
		if agg == nil {
			agg = &ToolAggregate{ToolID: key, ToolName: e.ToolLabel()}
			byTool[key] = agg
		}
		agg.Uses++
		switch e.Status {
		case models.StatusSuccess:
			agg.Successes++
			agg.TimeSavedMinutes += e.TimeSavedMinutes
		case models.StatusError:
			agg.Errors++
		}
		if e.WebhookLatencyMs > 0 {
			agg.LatencySumMs += e.WebhookLatencyMs
			agg.LatencyCount++
		}
	}
	for i := range events {
		e := &events[i]
		if e.Action != models.ActionUndo {
			continue
		}
		if agg, ok := byTool[e.ToolKey()]; ok {
			agg.Undos++
		}
	}

	tools := make([]ToolAggregate, 0, len(byTool))
	for _, agg := range byTool {
		tools = append(tools, *agg)
	}
	// Deterministic output for rendering and exports; the presentation
	// layer may re-sort.
	sort.Slice(tools, func(i, j int) bool { return tools[i].ToolID < tools[j].ToolID })
	return tools
}

// BuildUsers rolls every event up per user and returns the users sorted
// descending by total uses (stable on ties).
func BuildUsers(events []models.Event) []UserAggregate {
	byUser := make(map[string]*UserAggregate)
	var order []string
	for i := range events {
		e := &events[i]
		key := e.UserKey()
		agg := byUser[key]
		if agg == nil {
			agg = &UserAggregate{
				Email:      key,
				Name:       e.DisplayName(),
				LastActive: e.CreatedAt,
				toolSet:    make(map[string]struct{}),
			}
			byUser[key] = agg
			order = append(order, key)
		}
		agg.Events = append(agg.Events, *e)
		if e.CreatedAt.After(agg.LastActive) {
			agg.LastActive = e.CreatedAt
		}
		if e.Action != models.ActionGenerate {
			continue
		}
		agg.Uses++
		switch e.Status {
		case models.StatusSuccess:
			agg.Successes++
			agg.TimeSavedMinutes += e.TimeSavedMinutes
		case models.StatusError:
			agg.Errors++
		}
		agg.toolSet[e.ToolKey()] = struct{}{}
	}

	users := make([]UserAggregate, 0, len(byUser))
	for _, key := range order {
		agg := byUser[key]
		agg.ToolsUsed = make([]string, 0, len(agg.toolSet))
		for tool := range agg.toolSet {
			agg.ToolsUsed = append(agg.ToolsUsed, tool)
		}
		sort.Strings(agg.ToolsUsed)
		users = append(users, *agg)
	}
	sort.SliceStable(users, func(i, j int) bool { return users[i].Uses > users[j].Uses })
	return users
}
