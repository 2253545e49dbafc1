package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"fintrack/internal/core"
)

// DefaultDateLayout renders dates the way an en-US locale does, e.g. 3/7/2024.
const DefaultDateLayout = "1/2/2006"

// Header is the first CSV row.
var Header = []string{"Date", "Type", "Category", "Description", "Amount", "Notes"}

// ReportData is the transaction set behind one report.
type ReportData struct {
	Label        string
	Year         int
	Transactions []core.Transaction
	Categories   []core.Category
}

// RowFormat controls how dates are rendered.
type RowFormat struct {
	DateLayout string
	Location   *time.Location
}

// Rows renders data as CSV records, header first. Commas in free text become
// spaces so that every record keeps six plain fields.
func Rows(data ReportData, format RowFormat) [][]string {
	if format.DateLayout == "" {
		format.DateLayout = DefaultDateLayout
	}
	if format.Location == nil {
		format.Location = time.UTC
	}

	names := make(map[int64]string, len(data.Categories))
	for _, c := range data.Categories {
		names[c.ID] = c.Name
	}

	rows := make([][]string, 0, len(data.Transactions)+1)
	rows = append(rows, append([]string(nil), Header...))
	for _, t := range data.Transactions {
		category, ok := names[t.CategoryID]
		if !ok {
			category = core.UnknownCategoryName
		}
		rows = append(rows, []string{
			t.Date.In(format.Location).Format(format.DateLayout),
			string(t.Type),
			stripCommas(category),
			stripCommas(t.Description),
			t.Amount.String(),
			stripCommas(t.Notes),
		})
	}
	return rows
}

// WriteCSV writes rows to w.
func WriteCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// ReportFilename is finance-report-<label>.csv with spaces in the label
// replaced by dashes.
func ReportFilename(label string) string {
	return "finance-report-" + strings.ReplaceAll(strings.TrimSpace(label), " ", "-") + ".csv"
}

func stripCommas(s string) string {
	return strings.ReplaceAll(s, ",", " ")
}
