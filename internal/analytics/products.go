package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/models"
)

// maxProducts caps the product table at the top entries by count.
const maxProducts = 20

// ProductAggregate counts generate events against a shop product.
type ProductAggregate struct {
	Name     string    `json:"name"`
	PageURL  string    `json:"page_url"`
	Count    int       `json:"count"`
	LastUsed time.Time `json:"last_used"`
}

// BuildProducts rolls generate events up per product name and returns
// the top entries sorted descending by count. Events without a product
// name are skipped.
func BuildProducts(events []models.Event) []ProductAggregate {
	byName := make(map[string]*ProductAggregate)
	for i := range events {
		e := &events[i]
		if e.Action != models.ActionGenerate || e.ProductName == "" {
			continue
		}
		agg := byName[e.ProductName]
		if agg == nil {
			agg = &ProductAggregate{Name: e.ProductName, PageURL: e.PageURL, LastUsed: e.CreatedAt}
			byName[e.ProductName] = agg
		}
		agg.Count++
		if e.CreatedAt.After(agg.LastUsed) {
			agg.LastUsed = e.CreatedAt
		}
	}

	products := make([]ProductAggregate, 0, len(byName))
	for _, agg := range byName {
		products = append(products, *agg)
	}
	sort.SliceStable(products, func(i, j int) bool {
		if products[i].Count != products[j].Count {
			return products[i].Count > products[j].Count
		}
		return products[i].Name < products[j].Name
	})
	if len(products) > maxProducts {
		products = products[:maxProducts]
	}
	return products
}

// ToolDayPoint is one day of a single tool's usage series.
type ToolDayPoint struct {
	Day          string `json:"day"`
	Count        int    `json:"count"`
	// AvgLatencyMs is 0 when no latency was measured that day.
	AvgLatencyMs int64 `json:"avg_latency_ms"`
}

// BuildToolDaily produces, per tool label, an ascending daily series of
// generate counts and average measured latency. It backs the tools-over-
// time and latency charts.
func BuildToolDaily(events []models.Event, loc *time.Location) map[string][]ToolDayPoint {
	type cell struct {
		count      int
		latencySum int64
		latencyN   int
	}
	perTool := make(map[string]map[string]*cell)
	for i := range events {
		e := &events[i]
		if e.Action != models.ActionGenerate {
			continue
		}
		label := e.ToolLabel()
		days := perTool[label]
		if days == nil {
			days = make(map[string]*cell)
			perTool[label] = days
		}
		day := e.Day(loc)
		c := days[day]
		if c == nil {
			c = &cell{}
			days[day] = c
		}
		c.count++
		if e.WebhookLatencyMs > 0 {
			c.latencySum += e.WebhookLatencyMs
			c.latencyN++
		}
	}

	series := make(map[string][]ToolDayPoint, len(perTool))
	for label, days := range perTool {
		keys := make([]string, 0, len(days))
		for day := range days {
			keys = append(keys, day)
		}
		sort.Strings(keys)
		points := make([]ToolDayPoint, 0, len(keys))
		for _, day := range keys {
			c := days[day]
			point := ToolDayPoint{Day: day, Count: c.count}
			if c.latencyN > 0 {
				point.AvgLatencyMs = int64(math.Round(float64(c.latencySum) / float64(c.latencyN)))
			}
			points = append(points, point)
		}
		series[label] = points
	}
	return series
}
