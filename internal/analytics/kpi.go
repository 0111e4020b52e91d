package analytics

import (
	"math"

	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/models"
)

// KPISummary is the headline card row of the dashboard.
type KPISummary struct {
	// TotalUses counts generate actions regardless of outcome.
	TotalUses int `json:"total_uses"`
	Successes int `json:"successes"`
	Errors    int `json:"errors"`
	// SuccessRate is round(successes/uses*100), 0 when there are no uses.
	SuccessRate int `json:"success_rate"`
	// ActiveUsers counts distinct emails; events without an email are
	// excluded here (they still appear in the user rollup as "unknown").
	ActiveUsers int `json:"active_users"`
	// TimeSavedMinutes sums time saved over successful generate events.
	TimeSavedMinutes float64 `json:"time_saved_minutes"`
	// AvgLatencyMs is the mean of positive webhook latencies across
	// generate events, 0 when none were measured.
	AvgLatencyMs int64 `json:"avg_latency_ms"`
}

// ComputeKPIs produces the KPI summary for the full event set.
func ComputeKPIs(events []models.Event) KPISummary {
	var k KPISummary
	emails := make(map[string]struct{})
	var latencySum int64
	var latencyCount int64

	for i := range events {
		e := &events[i]
		if e.UserEmail != "" {
			emails[e.UserEmail] = struct{}{}
		}
		if e.Action != models.ActionGenerate {
			continue
		}
		k.TotalUses++
		switch e.Status {
		case models.StatusSuccess:
			k.Successes++
			k.TimeSavedMinutes += e.TimeSavedMinutes
		case models.StatusError:
			k.Errors++
		}
		if e.WebhookLatencyMs > 0 {
			latencySum += e.WebhookLatencyMs
			latencyCount++
		}
	}

	k.ActiveUsers = len(emails)
	k.SuccessRate = ratePct(k.Successes, k.TotalUses)
	if latencyCount > 0 {
		k.AvgLatencyMs = int64(math.Round(float64(latencySum) / float64(latencyCount)))
	}
	return k
}

// ratePct returns round(part/total*100), or 0 for an empty total.
func ratePct(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
