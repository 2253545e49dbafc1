// Package sheets defines the spreadsheet ports the sync worker writes through.
package sheets

import "context"

// ReportWriter replaces the report sheet of one year with rows. Rows are
// plain strings, header first.
type ReportWriter interface {
	WriteReport(ctx context.Context, year int, rows [][]string) (rangeRef string, err error)
}
