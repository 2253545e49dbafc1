package http

import (
	"bytes"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/log"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ref, err := ParseMonthRef(r.URL.Query(), s.now(), s.finance.Location())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	d, err := s.finance.Dashboard(r.Context(), ref)
	if err != nil {
		writeServiceError(w, r, err, reportsResource, verbLoad)
		return
	}
	d.ByCategory = orEmpty(d.ByCategory)
	d.Recent = orEmpty(d.Recent)
	NewResponse().JSON(d).Write(w)
}

// reportArgs reads ?period=&year=&month=.
func (s *Server) reportArgs(r *http.Request) (core.ReportPeriod, time.Time, error) {
	period, err := ParseReportPeriod(r.URL.Query())
	if err != nil {
		return "", time.Time{}, err
	}
	at, err := ParseMonthRef(r.URL.Query(), s.now(), s.finance.Location())
	if err != nil {
		return "", time.Time{}, err
	}
	return period, at, nil
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	period, at, err := s.reportArgs(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	report, err := s.finance.Report(r.Context(), period, at)
	if err != nil {
		writeServiceError(w, r, err, reportsResource, verbLoad)
		return
	}
	report.ByCategory = orEmpty(report.ByCategory)
	NewResponse().JSON(report).Write(w)
}

// handleReportCSV downloads the report's transactions, oldest first.
func (s *Server) handleReportCSV(w http.ResponseWriter, r *http.Request) {
	period, at, err := s.reportArgs(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	data, err := s.finance.ReportData(r.Context(), period, at)
	if err != nil {
		writeServiceError(w, r, err, reportsResource, verbLoad)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, export.Rows(data, s.format)); err != nil {
		writeServiceError(w, r, err, reportsResource, verbLoad)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Report exported",
		log.FieldOperation, log.OpExport,
		"label", data.Label,
		"rows", len(data.Transactions))

	NewResponse().
		Attachment(export.ReportFilename(data.Label)).
		Body("text/csv; charset=utf-8", buf.Bytes()).
		Write(w)
}

// handleExport downloads every table as one JSON document.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap, err := s.finance.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, r, err, reportsResource, verbLoad)
		return
	}
	NewResponse().
		Attachment(export.SnapshotFilename(snap.ExportDate)).
		JSON(snap).
		Write(w)
}

// handleIcon resolves a symbolic icon name; unknown names resolve to the
// fallback icon rather than failing.
func handleIcon(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	icon := core.ResolveIcon(name)
	NewResponse().JSON(map[string]any{
		"name":  name,
		"icon":  icon,
		"known": icon != core.IconUnknown,
	}).Write(w)
}
