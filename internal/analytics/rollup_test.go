package analytics

import (
	"testing"
	"time"

	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/models"
)

func TestBuildDaily(t *testing.T) {
	base := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)
	events := []models.Event{
		event("a@shop.pl", "desc", models.ActionGenerate, models.StatusSuccess, 10, base),
		event("a@shop.pl", "desc", models.ActionGenerate, models.StatusError, 0, base.Add(time.Hour)), // next day
		event("b@shop.pl", "desc", models.ActionUndo, models.StatusSuccess, 0, base),                  // not counted
	}

	daily := BuildDaily(events, time.UTC)

	if len(daily) != 2 {
		t.Fatalf("len(daily) = %d, want 2", len(daily))
	}
	if daily[0].Day != "2025-03-10" || daily[1].Day != "2025-03-11" {
		t.Errorf("days = %q, %q, want ascending 2025-03-10, 2025-03-11", daily[0].Day, daily[1].Day)
	}

	totalUses := 0
	for _, d := range daily {
		totalUses += d.Uses
	}
	if totalUses != 2 {
		t.Errorf("summed daily uses = %d, want 2 (every generate lands in exactly one day)", totalUses)
	}
}

func TestBuildDailyTimezone(t *testing.T) {
	warsaw, err := time.LoadLocation("Europe/Warsaw")
	if err != nil {
		t.Fatalf("failed to load zone: %v", err)
	}

	// 23:30 UTC on March 10 is 00:30 on March 11 in Warsaw (UTC+1).
	at := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)
	events := []models.Event{
		event("a@shop.pl", "desc", models.ActionGenerate, models.StatusSuccess, 10, at),
	}

	daily := BuildDaily(events, warsaw)
	if len(daily) != 1 || daily[0].Day != "2025-03-11" {
		t.Errorf("daily = %+v, want one bucket on 2025-03-11", daily)
	}
}

func TestBuildToolsUndoAccounting(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	events := []models.Event{
		event("a@shop.pl", "desc", models.ActionGenerate, models.StatusSuccess, 10, base),
		event("a@shop.pl", "desc", models.ActionUndo, models.StatusSuccess, 0, base.Add(time.Minute)),
		// Undo for a tool with no generate entry in the window: dropped.
		event("a@shop.pl", "seo", models.ActionUndo, models.StatusSuccess, 0, base.Add(2*time.Minute)),
	}

	tools := BuildTools(events)

	if len(tools) != 1 {
		t.Fatalf("len(tools) = %d, want 1", len(tools))
	}
	if tools[0].ToolID != "desc" {
		t.Errorf("ToolID = %q, want %q", tools[0].ToolID, "desc")
	}
	if tools[0].Undos != 1 {
		t.Errorf("Undos = %d, want 1", tools[0].Undos)
	}
}

func TestBuildToolsLatency(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	events := []models.Event{
		event("a@shop.pl", "desc", models.ActionGenerate, models.StatusSuccess, 10, base),
		event("a@shop.pl", "desc", models.ActionGenerate, models.StatusSuccess, 10, base),
	}
	events[0].WebhookLatencyMs = 300
	// events[1] unmeasured

	tools := BuildTools(events)
	if got := tools[0].AvgLatencyMs(); got != 300 {
		t.Errorf("AvgLatencyMs = %d, want 300 (unmeasured events excluded)", got)
	}
}

func TestBuildUsers(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	events := []models.Event{
		event("busy@shop.pl", "desc", models.ActionGenerate, models.StatusSuccess, 10, base),
		event("busy@shop.pl", "seo", models.ActionGenerate, models.StatusSuccess, 5, base.Add(time.Hour)),
		event("quiet@shop.pl", "desc", models.ActionGenerate, models.StatusError, 0, base.Add(2*time.Hour)),
	}

	users := BuildUsers(events)

	if len(users) != 2 {
		t.Fatalf("len(users) = %d, want 2", len(users))
	}
	if users[0].Email != "busy@shop.pl" {
		t.Errorf("users[0].Email = %q, want busiest user first", users[0].Email)
	}
	if len(users[0].ToolsUsed) != 2 {
		t.Errorf("ToolsUsed = %v, want 2 distinct tools", users[0].ToolsUsed)
	}
	if !users[0].LastActive.Equal(base.Add(time.Hour)) {
		t.Errorf("LastActive = %v, want %v", users[0].LastActive, base.Add(time.Hour))
	}
	if users[1].SuccessRate() != 0 {
		t.Errorf("SuccessRate = %d, want 0", users[1].SuccessRate())
	}
}

func TestBuildUsersUnknownIdentity(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	e := event("", "desc", models.ActionGenerate, models.StatusSuccess, 10, base)
	e.UserName = ""

	users := BuildUsers([]models.Event{e})

	if len(users) != 1 {
		t.Fatalf("len(users) = %d, want 1", len(users))
	}
	if users[0].Email != models.UnknownIdentity {
		t.Errorf("Email = %q, want %q", users[0].Email, models.UnknownIdentity)
	}
}
