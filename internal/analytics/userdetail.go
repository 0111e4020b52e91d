package analytics

import (
	"sort"
	"time"

	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/models"
)

// recentEventLimit caps the drill-down event table.
const recentEventLimit = 30

// UserDetail is the drill-down view for one user.
type UserDetail struct {
	User         UserAggregate  `json:"user"`
	SuccessRate  int            `json:"success_rate"`
	FavoriteTool string         `json:"favorite_tool"`
	// DailyTimeline is the user's generate count per day, ascending.
	DailyTimeline []DailyAggregate `json:"daily_timeline"`
	RecentEvents  []models.Event   `json:"recent_events"`
}

// BuildUserDetail derives the drill-down view from a user aggregate.
// The favorite tool is the one with the most generate uses, by display
// label; empty when the user never generated anything.
func BuildUserDetail(user UserAggregate, loc *time.Location) UserDetail {
	toolCounts := make(map[string]int)
	dayCounts := make(map[string]*DailyAggregate)
	for i := range user.Events {
		e := &user.Events[i]
		if e.Action != models.ActionGenerate {
			continue
		}
		toolCounts[e.ToolLabel()]++
		day := e.Day(loc)
		agg := dayCounts[day]
		if agg == nil {
			agg = &DailyAggregate{Day: day}
			dayCounts[day] = agg
		}
		agg.Uses++
		if e.Status == models.StatusSuccess {
			agg.TimeSavedMinutes += e.TimeSavedMinutes
		}
	}

	favorite := ""
	favoriteCount := 0
	labels := make([]string, 0, len(toolCounts))
	for label := range toolCounts {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		if toolCounts[label] > favoriteCount {
			favorite = label
			favoriteCount = toolCounts[label]
		}
	}

	timeline := make([]DailyAggregate, 0, len(dayCounts))
	for _, agg := range dayCounts {
		timeline = append(timeline, *agg)
	}
	sort.Slice(timeline, func(i, j int) bool { return timeline[i].Day < timeline[j].Day })

	recent := user.Events
	if len(recent) > recentEventLimit {
		recent = recent[:recentEventLimit]
	}

	return UserDetail{
		User:          user,
		SuccessRate:   user.SuccessRate(),
		FavoriteTool:  favorite,
		DailyTimeline: timeline,
		RecentEvents:  recent,
	}
}
