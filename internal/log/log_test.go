package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"INFO", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLogger_Component(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Output: &buf}).WithComponent(ComponentWorker)
	logger.Info("synced", FieldYear, 2024)
	logger.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "component=worker") || !strings.Contains(out, "year=2024") {
		t.Errorf("output = %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record logged at info level: %q", out)
	}
}

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{"ok", http.StatusOK, "level=INFO"},
		{"client error", http.StatusNotFound, "level=WARN"},
		{"server error", http.StatusInternalServerError, "level=ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(Config{Level: slog.LevelInfo, Output: &buf})
			var inner *Logger
			h := Middleware(logger, func(context.Context) string { return "req-1" })(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					inner = FromContext(r.Context())
					w.WriteHeader(tt.status)
				}))

			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/budgets?x=1", nil))

			if inner == nil || inner.Component() != ComponentHTTP {
				t.Fatalf("request logger = %+v", inner)
			}
			out := buf.String()
			for _, want := range []string{tt.wantLevel, "request_id=req-1", "path=/api/budgets", "status_code="} {
				if !strings.Contains(out, want) {
					t.Errorf("output %q missing %q", out, want)
				}
			}
		})
	}
}

func TestFromContext_Default(t *testing.T) {
	if got := FromContext(context.Background()); got.Component() != "unknown" || got.Logger == nil {
		t.Errorf("FromContext() = %+v", got)
	}
}

func TestLogFields_SkipsEmptyValues(t *testing.T) {
	f := NewFields().WithRequestID("").WithError(nil)
	if len(f) != 0 {
		t.Errorf("empty request id and nil error added fields: %v", f)
	}
	f = NewFields().WithRequestID("req-7").WithError(errors.New("disk full"))
	if f[FieldRequestID] != "req-7" || f[FieldError] != "disk full" {
		t.Errorf("fields = %v", f)
	}
}
