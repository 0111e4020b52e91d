package analytics

import (
	"sort"
	"time"

	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/models"
)

// AdoptionPoint is one day of the adoption timeline: how many users had
// their first-ever event that day, plus the running total.
type AdoptionPoint struct {
	Day             string `json:"day"`
	NewUsers        int    `json:"new_users"`
	CumulativeUsers int    `json:"cumulative_users"`
}

// BuildAdoption determines each distinct user's first event (any action),
// buckets first-seen timestamps by day, and returns the ascending
// timeline with cumulative totals, plus the first events themselves
// sorted newest-first for the "recent adopters" table.
func BuildAdoption(events []models.Event, loc *time.Location) ([]AdoptionPoint, []models.Event) {
	firstSeen := make(map[string]models.Event)
	for i := range events {
		e := events[i]
		key := e.UserKey()
		cur, ok := firstSeen[key]
		if !ok || e.CreatedAt.Before(cur.CreatedAt) {
			firstSeen[key] = e
		}
	}

	newPerDay := make(map[string]int)
	recent := make([]models.Event, 0, len(firstSeen))
	for _, e := range firstSeen {
		newPerDay[e.Day(loc)]++
		recent = append(recent, e)
	}

	days := make([]string, 0, len(newPerDay))
	for day := range newPerDay {
		days = append(days, day)
	}
	sort.Strings(days)

	timeline := make([]AdoptionPoint, 0, len(days))
	cumulative := 0
	for _, day := range days {
		cumulative += newPerDay[day]
		timeline = append(timeline, AdoptionPoint{
			Day:             day,
			NewUsers:        newPerDay[day],
			CumulativeUsers: cumulative,
		})
	}

	sort.Slice(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	return timeline, recent
}
