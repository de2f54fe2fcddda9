package entity_test

import (
	"errors"
	"testing"
	"time"

	"github.com/http_traffic_log_service/internal/domain/entity"
)

func TestCategorizeStatusCode(t *testing.T) {
	tests := []struct {
		code int
		want entity.StatusCategory
	}{
		{100, entity.StatusInformational},
		{101, entity.StatusInformational},
		{200, entity.StatusSuccess},
		{204, entity.StatusSuccess},
		{301, entity.StatusRedirect},
		{304, entity.StatusRedirect},
		{400, entity.StatusClientError},
		{404, entity.StatusClientError},
		{418, entity.StatusClientError},
		{500, entity.StatusServerError},
		{503, entity.StatusServerError},
		{0, entity.StatusUnknown},
		{99, entity.StatusUnknown},
		{600, entity.StatusUnknown},
	}

	for _, tt := range tests {
		if got := entity.CategorizeStatusCode(tt.code); got != tt.want {
			t.Errorf("CategorizeStatusCode(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func validEntry() entity.HTTPLogEntry {
	return entity.HTTPLogEntry{
		ID:        "id-1",
		Timestamp: time.Now(),
		Method:    "GET",
		URL:       "https://example.com/health",
		SessionID: "session-1",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*entity.HTTPLogEntry)
		wantErr error
	}{
		{"valid", func(*entity.HTTPLogEntry) {}, nil},
		{"blank id", func(e *entity.HTTPLogEntry) { e.ID = "" }, entity.ErrBlankID},
		{"blank method", func(e *entity.HTTPLogEntry) { e.Method = "" }, entity.ErrBlankMethod},
		{"blank url", func(e *entity.HTTPLogEntry) { e.URL = "" }, entity.ErrBlankURL},
		{"blank session", func(e *entity.HTTPLogEntry) { e.SessionID = "" }, entity.ErrBlankSessionID},
		{"zero timestamp", func(e *entity.HTTPLogEntry) { e.Timestamp = time.Time{} }, entity.ErrZeroTimestamp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := validEntry()
			tt.mutate(&entry)
			if err := entry.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in   int64
		want int64
	}{
		{-1, entity.DefaultQueryLimit},
		{0, entity.DefaultQueryLimit},
		{1, 1},
		{42, 42},
		{entity.MaxQueryLimit, entity.MaxQueryLimit},
		{entity.MaxQueryLimit + 1, entity.MaxQueryLimit},
	}

	for _, tt := range tests {
		if got := entity.ClampLimit(tt.in); got != tt.want {
			t.Errorf("ClampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestExpiresAt(t *testing.T) {
	entry := validEntry()
	entry.Timestamp = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entry.RetentionDays = 30

	want := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	if got := entry.ExpiresAt(); !got.Equal(want) {
		t.Errorf("ExpiresAt() = %v, want %v", got, want)
	}
}
