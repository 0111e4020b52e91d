package analytics

import (
	"strconv"

	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/models"
)

// FormatHours renders saved minutes as the dashboard's hour figure, one
// decimal place with an "h" suffix (20 minutes -> "0.3h").
func FormatHours(minutes float64) string {
	return strconv.FormatFloat(minutes/60, 'f', 1, 64) + "h"
}

// FormatPct renders a rounded percentage with a "%" suffix.
func FormatPct(pct int) string {
	return strconv.Itoa(pct) + "%"
}

// ReportSummary is the period recap shown on the ROI tab and exported in
// the combined report.
type ReportSummary struct {
	FirstDay         string  `json:"first_day"`
	LastDay          string  `json:"last_day"`
	GenerateCount    int     `json:"generate_count"`
	SuccessCount     int     `json:"success_count"`
	SuccessRate      int     `json:"success_rate"`
	UndoCount        int     `json:"undo_count"`
	ActiveUsers      int     `json:"active_users"`
	TimeSavedMinutes float64 `json:"time_saved_minutes"`
	ToolCount        int     `json:"tool_count"`
}

// Summary derives the report recap from the snapshot.
func (s *Snapshot) Summary() ReportSummary {
	summary := ReportSummary{
		GenerateCount:    s.KPIs.TotalUses,
		SuccessCount:     s.KPIs.Successes,
		SuccessRate:      s.KPIs.SuccessRate,
		ActiveUsers:      len(s.Users),
		TimeSavedMinutes: s.TotalTimeSavedMinutes,
		ToolCount:        len(s.Tools),
	}
	for i := range s.Events {
		if s.Events[i].Action == models.ActionUndo {
			summary.UndoCount++
		}
	}
	if len(s.Daily) > 0 {
		summary.FirstDay = s.Daily[0].Day
		summary.LastDay = s.Daily[len(s.Daily)-1].Day
	}
	return summary
}
