// Package export serializes aggregates to the semicolon-delimited text
// reports the dashboard offers for download. Files start with a UTF-8
// byte-order marker so spreadsheet tools detect the encoding.
package export

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/analytics"
	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/models"
)

const (
	// BOM is the UTF-8 byte-order marker prefixed to every report.
	BOM = "\ufeff"

	delimiter = ";"
)

// writer accumulates delimited rows.
type writer struct {
	buf bytes.Buffer
}

func newWriter() *writer {
	w := &writer{}
	w.buf.WriteString(BOM)
	return w
}

func (w *writer) row(fields ...string) {
	for i, f := range fields {
		if i > 0 {
			w.buf.WriteString(delimiter)
		}
		w.buf.WriteString(sanitize(f))
	}
	w.buf.WriteByte('\n')
}

func (w *writer) bytes() []byte {
	return w.buf.Bytes()
}

// sanitize keeps the format parseable: the delimiter and line breaks
// cannot appear inside a field.
func sanitize(field string) string {
	field = strings.ReplaceAll(field, delimiter, ",")
	field = strings.ReplaceAll(field, "\n", " ")
	return strings.ReplaceAll(field, "\r", " ")
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func minutes(m float64) string {
	return strconv.FormatFloat(m, 'f', -1, 64)
}

// UsersCSV renders the user roster report.
func UsersCSV(users []analytics.UserAggregate) []byte {
	w := newWriter()
	w.row("User", "Email", "Uses", "Time saved (min)", "Success %", "Tools", "Last active")
	for i := range users {
		u := &users[i]
		w.row(
			u.Name,
			u.Email,
			itoa(u.Uses),
			minutes(u.TimeSavedMinutes),
			itoa(u.SuccessRate()),
			itoa(len(u.ToolsUsed)),
			u.LastActive.UTC().Format(time.RFC3339),
		)
	}
	return w.bytes()
}

// EventsCSV renders the raw event feed report.
func EventsCSV(events []models.Event) []byte {
	w := newWriter()
	w.row("Date", "User", "Email", "Tool", "Action", "Status", "Product", "Fields", "Latency (ms)", "Version")
	for i := range events {
		e := &events[i]
		latency := ""
		if e.WebhookLatencyMs > 0 {
			latency = strconv.FormatInt(e.WebhookLatencyMs, 10)
		}
		w.row(
			e.CreatedAt.UTC().Format(time.RFC3339),
			e.UserName,
			e.UserEmail,
			e.ToolLabel(),
			string(e.Action),
			string(e.Status),
			e.ProductName,
			itoa(e.FieldsUpdated),
			latency,
			e.ExtensionVersion,
		)
	}
	return w.bytes()
}

// ReportCSV renders the combined multi-section report: KPIs with ROI
// figures, then the user roster, then the tool rollup.
func ReportCSV(snap *analytics.Snapshot, roi analytics.ROIReport) []byte {
	summary := snap.Summary()

	w := newWriter()
	w.row("=== SYLIUS TOOLBOX REPORT ===")
	w.row("Exported: " + time.Now().UTC().Format(time.RFC3339))
	w.row()
	w.row("--- KPI ---")
	w.row("Period", summary.FirstDay+" - "+summary.LastDay)
	w.row("Total uses (generate)", itoa(summary.GenerateCount))
	w.row("Successes", itoa(summary.SuccessCount)+" ("+analytics.FormatPct(summary.SuccessRate)+")")
	w.row("Undos", itoa(summary.UndoCount))
	w.row("Active users", itoa(summary.ActiveUsers))
	w.row("Time saved (min)", minutes(summary.TimeSavedMinutes))
	w.row("Time saved", analytics.FormatHours(summary.TimeSavedMinutes))
	w.row("Money saved", humanize.Comma(roi.TotalMoney))
	w.row("Monthly average", humanize.Comma(roi.MonthlyAvgMoney))
	w.row("FTE equivalent", roi.FTEEquivalent)
	w.row("Tools in use", itoa(summary.ToolCount))

	w.row()
	w.row("--- USERS ---")
	w.row("Name", "Email", "Uses", "Time (min)", "Success %")
	for i := range snap.Users {
		u := &snap.Users[i]
		w.row(u.Name, u.Email, itoa(u.Uses), minutes(u.TimeSavedMinutes), itoa(u.SuccessRate()))
	}

	w.row()
	w.row("--- TOOLS ---")
	w.row("Tool", "Uses", "Successes", "Errors", "Undos", "Time (min)")
	for i := range snap.Tools {
		t := &snap.Tools[i]
		w.row(t.ToolName, itoa(t.Uses), itoa(t.Successes), itoa(t.Errors), itoa(t.Undos), minutes(t.TimeSavedMinutes))
	}

	return w.bytes()
}
