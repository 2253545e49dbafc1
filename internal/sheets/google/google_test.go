package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{CredentialsJSON: "{}"})
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("New() error = %v, want missing GOOGLE_SPREADSHEET_ID", err)
	}
}

func TestNew_MissingServiceAccountFile(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "sheet", CredentialsFile: "/nonexistent/sa.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Errorf("New() error = %v, want read failure", err)
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		year int
		want string
	}{
		{"Report", 2024, "2024 Report"},
		{"  Report ", 2025, "2025 Report"},
		{"2023 Report", 2024, "2023 Report"},
		{"", 2024, ""},
		{"12345", 2024, "2024 12345"},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			if got := yearPrefixedName(tt.base, tt.year); got != tt.want {
				t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.want)
			}
		})
	}
}

func TestQuoteSheet(t *testing.T) {
	if got := quoteSheet("2024 Bob's"); got != "'2024 Bob''s'" {
		t.Errorf("quoteSheet() = %q", got)
	}
}

type fakeSheets struct {
	mu       sync.Mutex
	titles   []string
	calls    []string
	lastBody map[string]any
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet && !strings.Contains(path, "/values/"):
		f.calls = append(f.calls, "get")
		sheets := make([]map[string]any, 0, len(f.titles))
		for _, title := range f.titles {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"title": title}})
		}
		json.NewEncoder(w).Encode(map[string]any{"sheets": sheets})
		return
	case strings.HasSuffix(path, ":batchUpdate"):
		f.calls = append(f.calls, "add")
	case strings.HasSuffix(path, ":clear"):
		f.calls = append(f.calls, "clear")
	case r.Method == http.MethodPut:
		f.calls = append(f.calls, "update")
		body, _ := io.ReadAll(r.Body)
		f.lastBody = map[string]any{}
		json.Unmarshal(body, &f.lastBody)
	default:
		f.calls = append(f.calls, r.Method+" "+path)
	}
	w.Write([]byte(`{}`))
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return NewWithService(svc, "spreadsheet-1", "")
}

func TestWriteReport(t *testing.T) {
	rows := [][]string{
		{"Date", "Type", "Category", "Description", "Amount", "Notes"},
		{"1/5/2024", "expense", "Food & Dining", "Groceries", "30.00", ""},
	}

	tests := []struct {
		name      string
		titles    []string
		wantCalls []string
	}{
		{"existing sheet", []string{"2024 Report"}, []string{"get", "clear", "update"}},
		{"missing sheet", []string{"2023 Report"}, []string{"get", "add", "clear", "update"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeSheets{titles: tt.titles}
			c := newTestClient(t, fake)

			ref, err := c.WriteReport(context.Background(), 2024, rows)
			if err != nil {
				t.Fatalf("WriteReport() error = %v", err)
			}
			if ref != "'2024 Report'!A1:F2" {
				t.Errorf("WriteReport() ref = %q", ref)
			}
			if strings.Join(fake.calls, ",") != strings.Join(tt.wantCalls, ",") {
				t.Errorf("calls = %v, want %v", fake.calls, tt.wantCalls)
			}
			values, _ := fake.lastBody["values"].([]any)
			if len(values) != 2 {
				t.Errorf("update sent %d rows, want 2", len(values))
			}
		})
	}
}

func TestWriteReport_NoService(t *testing.T) {
	c := &Client{spreadsheetID: "x", reportBase: "Report"}
	if _, err := c.WriteReport(context.Background(), 2024, nil); err == nil {
		t.Error("WriteReport() should fail without a service")
	}
}
