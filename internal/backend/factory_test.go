package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"fintrack/internal/config"
	"fintrack/internal/core"
)

func TestFromAppConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.Config
		want    BackendType
		wantErr bool
	}{
		{"nil config", nil, "", true},
		{"sqlite", &config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db"}, SQLiteBackend, false},
		{"memory", &config.Config{DataBackend: "memory"}, MemoryBackend, false},
		{"sheets is gone", &config.Config{DataBackend: "sheets"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAppConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromAppConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got.Type != tt.want {
				t.Errorf("FromAppConfig() type = %q, want %q", got.Type, tt.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := (Config{Type: SQLiteBackend}).Validate(); err == nil || !strings.Contains(err.Error(), "SQLite database path") {
		t.Errorf("Validate() error = %v", err)
	}
	if err := (Config{Type: MemoryBackend}).Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if err := (Config{Type: "csv"}).Validate(); err == nil {
		t.Error("Validate() accepted unknown type")
	}
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	configs := []Config{
		{Type: MemoryBackend},
		{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "nested", "fintrack.db")},
	}
	for _, cfg := range configs {
		t.Run(cfg.Type.String(), func(t *testing.T) {
			res, err := NewFactory(nil).CreateBackend(ctx, cfg)
			if err != nil {
				t.Fatalf("CreateBackend() error = %v", err)
			}
			defer res.Cleanup()

			cats, err := res.Store.ListCategories(ctx, "")
			if err != nil {
				t.Fatalf("ListCategories() error = %v", err)
			}
			if len(cats) != len(core.DefaultCategories()) {
				t.Errorf("seeded %d categories, want %d", len(cats), len(core.DefaultCategories()))
			}
		})
	}
}
