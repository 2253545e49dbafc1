package memory

import (
	"context"
	"testing"
)

func TestWriterReplacesSheet(t *testing.T) {
	w := New()
	ctx := context.Background()
	rows := [][]string{{"Date", "Type"}, {"1/2/2024", "expense"}}

	ref, err := w.WriteReport(ctx, 2024, rows)
	if err != nil || ref != "mem:2024!A1:F2" {
		t.Fatalf("WriteReport() = %q, %v", ref, err)
	}
	rows[1][1] = "mutated"
	if _, err := w.WriteReport(ctx, 2024, rows[:1]); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}

	got, ok := w.Sheet(2024)
	if !ok || len(got) != 1 {
		t.Errorf("Sheet(2024) = %v, %v; want header only", got, ok)
	}
	if _, ok := w.Sheet(2023); ok {
		t.Error("Sheet(2023) should be absent")
	}
	if w.Writes() != 2 {
		t.Errorf("Writes() = %d, want 2", w.Writes())
	}
}
