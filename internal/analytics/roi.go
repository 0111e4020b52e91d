package analytics

import (
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Default ROI inputs, applied when the request omits or zeroes them.
const (
	DefaultHourlyRate       = 100.0
	DefaultWorkDaysPerMonth = 21
)

// ROIParams are the projection inputs.
type ROIParams struct {
	// HourlyRate is the money value of one saved hour.
	HourlyRate float64 `json:"hourly_rate"`
	// WorkDaysPerMonth sizes the FTE denominator (8h days).
	WorkDaysPerMonth int `json:"work_days_per_month"`
	// RangeDays is the active date-range length; 0 means "all time", in
	// which case the month count is derived from the daily series span.
	RangeDays int `json:"range_days"`
}

// withDefaults fills non-positive inputs with the defaults.
func (p ROIParams) withDefaults() ROIParams {
	if p.HourlyRate < 0 {
		p.HourlyRate = DefaultHourlyRate
	}
	if p.WorkDaysPerMonth <= 0 {
		p.WorkDaysPerMonth = DefaultWorkDaysPerMonth
	}
	if p.RangeDays < 0 {
		p.RangeDays = 0
	}
	return p
}

// SavingsPoint is one day of the cumulative savings series.
type SavingsPoint struct {
	Day             string `json:"day"`
	CumulativeMoney int64  `json:"cumulative_money"`
}

// ToolSavings is one tool's independent (non-cumulative) money value.
type ToolSavings struct {
	ToolID   string `json:"tool_id"`
	ToolName string `json:"tool_name"`
	Money    int64  `json:"money"`
}

// ROIReport is the full projection.
type ROIReport struct {
	Params          ROIParams      `json:"params"`
	TotalHours      float64        `json:"total_hours"`
	TotalMoney      int64          `json:"total_money"`
	Months          float64        `json:"months"`
	MonthlyAvgMoney int64          `json:"monthly_avg_money"`
	// FTEEquivalent is formatted to two decimals, "0" when the work-hour
	// denominator is non-positive.
	FTEEquivalent string         `json:"fte_equivalent"`
	Cumulative    []SavingsPoint `json:"cumulative"`
	ByTool        []ToolSavings  `json:"by_tool"`
}

// ComputeROI projects money and FTE figures from the snapshot's totals,
// daily series, and tool rollup.
func ComputeROI(totalTimeSavedMinutes float64, daily []DailyAggregate, tools []ToolAggregate, params ROIParams) ROIReport {
	params = params.withDefaults()
	rate := decimal.NewFromFloat(params.HourlyRate)

	hours := totalTimeSavedMinutes / 60
	totalMoney := moneyFor(totalTimeSavedMinutes, rate)

	months := monthsSpanned(params.RangeDays, daily)
	monthlyAvg := int64(0)
	if months > 0 {
		monthlyAvg = decimal.NewFromInt(totalMoney).
			Div(decimal.NewFromFloat(months)).
			Round(0).IntPart()
	}

	fte := "0"
	monthlyWorkHours := float64(params.WorkDaysPerMonth) * 8
	if monthlyWorkHours > 0 && months > 0 {
		fte = strconv.FormatFloat(hours/months/monthlyWorkHours, 'f', 2, 64)
	}

	cumulative := make([]SavingsPoint, 0, len(daily))
	running := decimal.Zero
	for _, d := range daily {
		running = running.Add(decimal.NewFromFloat(d.TimeSavedMinutes / 60).Mul(rate))
		cumulative = append(cumulative, SavingsPoint{
			Day:             d.Day,
			CumulativeMoney: running.Round(0).IntPart(),
		})
	}

	byTool := make([]ToolSavings, 0, len(tools))
	for i := range tools {
		t := &tools[i]
		byTool = append(byTool, ToolSavings{
			ToolID:   t.ToolID,
			ToolName: t.ToolName,
			Money:    moneyFor(t.TimeSavedMinutes, rate),
		})
	}

	return ROIReport{
		Params:          params,
		TotalHours:      hours,
		TotalMoney:      totalMoney,
		Months:          months,
		MonthlyAvgMoney: monthlyAvg,
		FTEEquivalent:   fte,
		Cumulative:      cumulative,
		ByTool:          byTool,
	}
}

// moneyFor converts saved minutes to rounded money at rate per hour.
func moneyFor(minutes float64, rate decimal.Decimal) int64 {
	return decimal.NewFromFloat(minutes / 60).Mul(rate).Round(0).IntPart()
}

// monthsSpanned derives the month denominator: an explicit range maps
// straight to days/30; otherwise the span between the first and last
// aggregated day is used, with a floor of one month.
func monthsSpanned(rangeDays int, daily []DailyAggregate) float64 {
	if rangeDays > 0 {
		return float64(rangeDays) / 30
	}
	if len(daily) == 0 {
		return 1
	}
	first, errFirst := time.Parse("2006-01-02", daily[0].Day)
	last, errLast := time.Parse("2006-01-02", daily[len(daily)-1].Day)
	if errFirst != nil || errLast != nil {
		return 1
	}
	spanDays := last.Sub(first).Hours() / 24
	return math.Max(1, math.Ceil(spanDays/30))
}
