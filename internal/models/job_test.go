package models

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"rfc3339", "2025-03-01T10:20:30Z", time.Date(2025, 3, 1, 10, 20, 30, 0, time.UTC)},
		{"offset", "2025-03-01T12:20:30+02:00", time.Date(2025, 3, 1, 10, 20, 30, 0, time.UTC)},
		{"micro without zone", "2025-03-01T10:20:30.000500", time.Date(2025, 3, 1, 10, 20, 30, 500000, time.UTC)},
		{"empty", "", time.Time{}},
		{"garbage", "yesterday", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseTimestamp(tt.in); !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestJobStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{JobStatusCompleted, true},
		{JobStatusFailed, true},
		{JobStatusExecuting, false},
		{JobStatusQueued, false},
		{"", false},
	}

	for _, tt := range tests {
		if got := (JobStatusContent{Status: tt.status}).IsTerminal(); got != tt.want {
			t.Errorf("IsTerminal(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
