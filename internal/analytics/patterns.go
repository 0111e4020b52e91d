package analytics

import (
	"time"

	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/models"
)

// HeatmapCell addresses one weekday/hour slot. Weekday follows
// time.Weekday numbering: 0=Sunday .. 6=Saturday.
type HeatmapCell struct {
	Weekday int `json:"weekday"`
	Hour    int `json:"hour"`
}

// TimePatterns buckets generate events by local hour-of-day and weekday.
// ByHour and ByWeekday are dense zero-filled arrays; Heatmap is sparse
// and consulted with a zero default.
type TimePatterns struct {
	ByHour    [24]int             `json:"by_hour"`
	ByWeekday [7]int              `json:"by_weekday"`
	Heatmap   map[HeatmapCell]int `json:"-"`
	// MaxCell is the largest heatmap value, 0 when there is no activity.
	MaxCell int `json:"max_cell"`
}

// Cell returns the count for a weekday/hour slot, 0 when unset.
func (p *TimePatterns) Cell(weekday, hour int) int {
	return p.Heatmap[HeatmapCell{Weekday: weekday, Hour: hour}]
}

// CellOpacity maps a cell value into the fixed opacity range used by the
// heatmap rendering: 0 for empty cells (neutral background, no label),
// otherwise 0.15 plus a linear share of 0.85 scaled by the max value.
func (p *TimePatterns) CellOpacity(weekday, hour int) float64 {
	v := p.Cell(weekday, hour)
	if v == 0 || p.MaxCell == 0 {
		return 0
	}
	return 0.15 + float64(v)/float64(p.MaxCell)*0.85
}

// BuildTimePatterns buckets generate events by hour and weekday in loc.
func BuildTimePatterns(events []models.Event, loc *time.Location) TimePatterns {
	p := TimePatterns{Heatmap: make(map[HeatmapCell]int)}
	for i := range events {
		e := &events[i]
		if e.Action != models.ActionGenerate {
			continue
		}
		local := e.CreatedAt.In(loc)
		hour := local.Hour()
		weekday := int(local.Weekday())
		p.ByHour[hour]++
		p.ByWeekday[weekday]++
		cell := HeatmapCell{Weekday: weekday, Hour: hour}
		p.Heatmap[cell]++
		if p.Heatmap[cell] > p.MaxCell {
			p.MaxCell = p.Heatmap[cell]
		}
	}
	return p
}

// HeatmapRows flattens the sparse heatmap into a dense 7x24 matrix for
// JSON serialization, row index = weekday.
func (p *TimePatterns) HeatmapRows() [7][24]int {
	var rows [7][24]int
	for cell, count := range p.Heatmap {
		if cell.Weekday >= 0 && cell.Weekday < 7 && cell.Hour >= 0 && cell.Hour < 24 {
			rows[cell.Weekday][cell.Hour] = count
		}
	}
	return rows
}
