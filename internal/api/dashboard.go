package api

import (
	"net/http"
	"strconv"

	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/analytics"
)

// handleSummary returns the KPI block with its period-over-period trends.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"kpis":        snap.KPIs,
		"trends":      snap.Trends,
		"range_days":  s.controller.RangeDays(),
		"computed_at": snap.ComputedAt,
	})
}

// handleDaily returns the per-day usage series.
func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, snap.Daily)
}

// handleTools returns the per-tool rollup with derived rates attached,
// since methods do not survive JSON encoding.
func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}

	type toolRow struct {
		analytics.ToolAggregate
		SuccessRate  int   `json:"success_rate"`
		AvgLatencyMs int64 `json:"avg_latency_ms"`
	}
	rows := make([]toolRow, len(snap.Tools))
	for i, t := range snap.Tools {
		rows[i] = toolRow{
			ToolAggregate: t,
			SuccessRate:   t.SuccessRate(),
			AvgLatencyMs:  t.AvgLatencyMs(),
		}
	}
	respondJSON(w, http.StatusOK, rows)
}

// handleToolDaily returns each tool's daily usage series, keyed by tool label.
func (s *Server) handleToolDaily(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, snap.ToolDaily)
}

// handleProducts returns the most-edited products leaderboard.
func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, snap.Products)
}

// handleAdoption returns the cumulative adoption timeline and the most
// recent first-time users.
func (s *Server) handleAdoption(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"timeline":        snap.Adoption,
		"recent_adopters": snap.RecentAdopters,
	})
}

// handlePatterns returns hour-of-day and day-of-week usage distributions
// plus the dense weekday x hour heatmap.
func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"by_hour":    snap.Patterns.ByHour,
		"by_weekday": snap.Patterns.ByWeekday,
		"heatmap":    snap.Patterns.HeatmapRows(),
		"max_cell":   snap.Patterns.MaxCell,
	})
}

// handleROI projects money and FTE savings. Absent parameters fall back
// to the defaults; hourly_rate=0 is honored and yields zero money.
func (s *Server) handleROI(w http.ResponseWriter, r *http.Request) {
	params := analytics.ROIParams{
		HourlyRate:       analytics.DefaultHourlyRate,
		WorkDaysPerMonth: analytics.DefaultWorkDaysPerMonth,
	}

	q := r.URL.Query()
	if raw := q.Get("hourly_rate"); raw != "" {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil || rate < 0 {
			respondError(w, http.StatusBadRequest, "hourly_rate must be a non-negative number")
			return
		}
		params.HourlyRate = rate
	}
	if raw := q.Get("work_days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 1 {
			respondError(w, http.StatusBadRequest, "work_days must be a positive integer")
			return
		}
		params.WorkDaysPerMonth = days
	}

	report, err := s.controller.ROI(params)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "No data loaded yet. Trigger a refresh first.")
		return
	}
	respondJSON(w, http.StatusOK, report)
}
