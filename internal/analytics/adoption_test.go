package analytics

import (
	"testing"
	"time"

	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/models"
)

func TestBuildAdoption(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	events := []models.Event{
		event("first@shop.pl", "desc", models.ActionGenerate, models.StatusSuccess, 10, base),
		event("first@shop.pl", "desc", models.ActionGenerate, models.StatusSuccess, 10, base.AddDate(0, 0, 5)),
		event("second@shop.pl", "desc", models.ActionGenerate, models.StatusSuccess, 10, base.AddDate(0, 0, 1)),
		event("third@shop.pl", "seo", models.ActionUndo, models.StatusSuccess, 0, base.AddDate(0, 0, 1)),
	}

	timeline, recent := BuildAdoption(events, time.UTC)

	if len(timeline) != 2 {
		t.Fatalf("len(timeline) = %d, want 2", len(timeline))
	}
	if timeline[0].Day != "2025-03-10" || timeline[0].NewUsers != 1 {
		t.Errorf("timeline[0] = %+v, want 1 new user on 2025-03-10", timeline[0])
	}
	if timeline[1].Day != "2025-03-11" || timeline[1].NewUsers != 2 {
		t.Errorf("timeline[1] = %+v, want 2 new users on 2025-03-11", timeline[1])
	}
	if timeline[len(timeline)-1].CumulativeUsers != 3 {
		t.Errorf("final cumulative = %d, want 3 (one per distinct user)",
			timeline[len(timeline)-1].CumulativeUsers)
	}

	if len(recent) != 3 {
		t.Fatalf("len(recent) = %d, want 3", len(recent))
	}
	for i := 1; i < len(recent); i++ {
		if recent[i].CreatedAt.After(recent[i-1].CreatedAt) {
			t.Errorf("recent adopters not sorted newest-first at index %d", i)
		}
	}
	// A returning user's first event, not the latest, defines adoption.
	for _, e := range recent {
		if e.UserKey() == "first@shop.pl" && !e.CreatedAt.Equal(base) {
			t.Errorf("first@shop.pl adoption event at %v, want first-ever %v", e.CreatedAt, base)
		}
	}
}

func TestBuildAdoptionFirstEventUnordered(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	// Fetch order is newest-first; adoption must still pick the earliest.
	events := []models.Event{
		event("a@shop.pl", "desc", models.ActionGenerate, models.StatusSuccess, 10, base.AddDate(0, 0, 3)),
		event("a@shop.pl", "desc", models.ActionGenerate, models.StatusSuccess, 10, base),
	}

	timeline, _ := BuildAdoption(events, time.UTC)

	if len(timeline) != 1 || timeline[0].Day != "2025-03-10" {
		t.Errorf("timeline = %+v, want single adoption on 2025-03-10", timeline)
	}
}
