package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"
	"fintrack/internal/store/memory"
)

func TestRows(t *testing.T) {
	data := ReportData{
		Label: "March 2024",
		Transactions: []core.Transaction{
			{Type: core.Expense, CategoryID: 5, Date: time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC), Description: "Dinner, with friends", Amount: core.Money{Cents: 4250}, Notes: "split, 3 ways"},
			{Type: core.Income, CategoryID: 99, Date: time.Date(2024, 3, 25, 8, 0, 0, 0, time.UTC), Description: "Refund", Amount: core.Money{Cents: 1000}},
		},
		Categories: []core.Category{{ID: 5, Name: "Food & Dining"}},
	}

	got := Rows(data, RowFormat{})
	want := [][]string{
		Header,
		{"3/7/2024", "expense", "Food & Dining", "Dinner  with friends", "42.50", "split  3 ways"},
		{"3/25/2024", "income", "Unknown", "Refund", "10.00", ""},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Rows() = %q\nwant %q", got, want)
	}
}

func TestRowsLayoutAndLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	data := ReportData{Transactions: []core.Transaction{
		{Type: core.Expense, Date: time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC), Description: "late", Amount: core.Money{Cents: 1}},
	}}
	rows := Rows(data, RowFormat{DateLayout: "2006-01-02", Location: loc})
	if rows[1][0] != "2024-04-01" {
		t.Errorf("date = %q, want 2024-04-01", rows[1][0])
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	rows := [][]string{Header, {"1/2/2024", "expense", "Rent", "Flat", "800.00", ""}}
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	want := "Date,Type,Category,Description,Amount,Notes\n1/2/2024,expense,Rent,Flat,800.00,\n"
	if buf.String() != want {
		t.Errorf("WriteCSV() = %q, want %q", buf.String(), want)
	}
}

func TestFilenames(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"report month", ReportFilename("January 2024"), "finance-report-January-2024.csv"},
		{"report year", ReportFilename("2024"), "finance-report-2024.csv"},
		{"snapshot", SnapshotFilename(time.Date(2024, 5, 6, 23, 59, 0, 0, time.UTC)), "finance-tracker-export-2024-05-06.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("filename = %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestBuildSnapshot(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	if err := st.Init(ctx); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if _, err := st.AddTransaction(ctx, core.Transaction{Type: core.Expense, CategoryID: 5, Date: time.Now(), Description: "bread", Amount: core.Money{Cents: 350}}); err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}

	now := time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)
	snap, err := BuildSnapshot(ctx, st, now)
	if err != nil {
		t.Fatalf("BuildSnapshot() error = %v", err)
	}
	if len(snap.Transactions) != 1 || len(snap.Categories) != 12 || snap.Budgets == nil {
		t.Errorf("BuildSnapshot() = %d transactions, %d categories, budgets %v", len(snap.Transactions), len(snap.Categories), snap.Budgets)
	}

	body, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, key := range []string{`"transactions":[`, `"categories":[`, `"budgets":[]`, `"exportDate":"2024-05-06T12:00:00Z"`, `"amount":3.50`} {
		if !strings.Contains(string(body), key) {
			t.Errorf("snapshot JSON missing %s", key)
		}
	}
}

type failingSource struct{ *memory.Store }

func (failingSource) ListBudgets(context.Context, store.BudgetFilter) ([]core.Budget, error) {
	return nil, errors.New("disk I/O error")
}

func TestBuildSnapshotError(t *testing.T) {
	src := failingSource{Store: memory.New()}
	if _, err := BuildSnapshot(context.Background(), src, time.Now()); err == nil || !strings.Contains(err.Error(), "export budgets") {
		t.Errorf("BuildSnapshot() error = %v, want export budgets failure", err)
	}
}
