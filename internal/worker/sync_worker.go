// Package worker keeps the report spreadsheet in step with the store.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/sheets"
)

// ReportSource renders the rows behind a report.
type ReportSource interface {
	ReportData(ctx context.Context, period core.ReportPeriod, ref time.Time) (export.ReportData, error)
}

// SyncWorker rewrites the yearly report sheet whenever change messages say
// its transactions may differ.
type SyncWorker struct {
	source ReportSource
	sheets sheets.ReportWriter
	format export.RowFormat
	now    func() time.Time
}

func NewSyncWorker(source ReportSource, writer sheets.ReportWriter, format export.RowFormat) *SyncWorker {
	if format.Location == nil {
		format.Location = time.Local
	}
	return &SyncWorker{source: source, sheets: writer, format: format, now: time.Now}
}

// HandleChange syncs the year a message affects. Transaction messages name
// their month; category changes rename rows, so the current year is
// rewritten. Budgets never appear in the sheet and are acknowledged as is.
func (w *SyncWorker) HandleChange(ctx context.Context, msg *amqp.ChangeMessage) error {
	switch msg.Table {
	case amqp.TableBudgets:
		slog.DebugContext(ctx, "Ignoring budget change", "entity_id", msg.EntityID)
		return nil
	case amqp.TableTransactions:
		if msg.HasMonth() {
			ref := time.Date(msg.Year, time.Month(msg.Month), 1, 0, 0, 0, 0, w.format.Location)
			return w.SyncYear(ctx, ref)
		}
	}
	return w.SyncYear(ctx, w.now())
}

// SyncYear rewrites the sheet for the year containing ref.
func (w *SyncWorker) SyncYear(ctx context.Context, ref time.Time) error {
	data, err := w.source.ReportData(ctx, core.ReportYear, ref)
	if err != nil {
		return fmt.Errorf("load report rows: %w", err)
	}
	rows := export.Rows(data, w.format)
	rng, err := w.sheets.WriteReport(ctx, data.Year, rows)
	if err != nil {
		return fmt.Errorf("write report sheet: %w", err)
	}
	slog.InfoContext(ctx, "Synced report to sheet",
		"year", data.Year,
		"rows", len(rows)-1,
		"range", rng)
	return nil
}
