package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

func TestResponseBuilder(t *testing.T) {
	rr := httptest.NewRecorder()
	NewResponse().
		Status(http.StatusCreated).
		Header("X-Test", "1").
		JSON(map[string]int{"id": 7}).
		Write(rr)

	if rr.Code != http.StatusCreated {
		t.Errorf("status = %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	if rr.Header().Get("X-Test") != "1" || rr.Body.String() != "{\"id\":7}\n" {
		t.Errorf("response = %v %q", rr.Header(), rr.Body.String())
	}
}

func TestResponseBuilder_EncodeFailure(t *testing.T) {
	rr := httptest.NewRecorder()
	NewResponse().JSON(map[string]any{"bad": make(chan int)}).Write(rr)
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", core.NewValidationError("amount", core.ErrInvalidAmount), http.StatusUnprocessableEntity},
		{"wrapped validation", fmt.Errorf("create: %w", core.NewValidationError("name", core.ErrEmptyName)), http.StatusUnprocessableEntity},
		{"in use", &core.CategoryInUseError{CategoryID: 5, Count: 3}, http.StatusConflict},
		{"not found", store.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", store.ErrNotFound), http.StatusNotFound},
		{"storage", errors.New("disk I/O error"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusFor(tt.err); got != tt.want {
				t.Errorf("StatusFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWriteServiceError_Storage(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/transactions", nil)
	writeServiceError(rr, req, errors.New("database is locked"), transactionsResource, verbSave)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := decode[ErrorBody](t, rr).Error; got != "Error saving transaction. Please try again." {
		t.Errorf("message = %q", got)
	}
}
