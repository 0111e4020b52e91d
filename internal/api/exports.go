package api

import (
	"net/http"

	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/analytics"
	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/export"
	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/logger"
)

// handleExportUsers downloads the user roster report.
func (s *Server) handleExportUsers(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	s.serveCSV(w, r, "users", export.UsersCSV(snap.Users))
}

// handleExportEvents downloads the raw event feed report.
func (s *Server) handleExportEvents(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	s.serveCSV(w, r, "events", export.EventsCSV(snap.Events))
}

// handleExportReport downloads the combined KPI/users/tools report. ROI
// figures use the default rate; the report is a fixed-format artifact.
func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	roi, err := s.controller.ROI(analytics.ROIParams{
		HourlyRate:       analytics.DefaultHourlyRate,
		WorkDaysPerMonth: analytics.DefaultWorkDaysPerMonth,
	})
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "No data loaded yet. Trigger a refresh first.")
		return
	}
	s.serveCSV(w, r, "report", export.ReportCSV(snap, roi))
}

// serveCSV writes one report as a download and, when archival is
// configured, stores a copy. Archival failures are logged, never
// surfaced: the download is the product.
func (s *Server) serveCSV(w http.ResponseWriter, r *http.Request, name string, content []byte) {
	if s.reports != nil {
		if key, err := s.reports.Archive(r.Context(), name, content); err != nil {
			logger.Ctx(r.Context()).Warn("report archival failed", "report", name, "error", err)
		} else {
			w.Header().Set("X-Archive-Key", key)
		}
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="sylius-toolbox-`+name+`.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}
