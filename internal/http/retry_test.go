package http

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		code int
		want ErrorType
	}{
		{200, ErrorTypeSuccess},
		{401, ErrorTypeCredential},
		{403, ErrorTypeCredential},
		{404, ErrorTypeFatal},
		{408, ErrorTypeRetryable},
		{429, ErrorTypeRetryable},
		{502, ErrorTypeRetryable},
	}
	for _, tt := range tests {
		if got := ClassifyStatus(tt.code); got != tt.want {
			t.Errorf("ClassifyStatus(%d) = %s, want %s", tt.code, ErrorTypeName(got), ErrorTypeName(tt.want))
		}
	}
}

func TestCheckRetry(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		resp *http.Response
		err  error
		want bool
	}{
		{"ok", &http.Response{StatusCode: 200}, nil, false},
		{"unauthorized", &http.Response{StatusCode: 401}, nil, false},
		{"not found", &http.Response{StatusCode: 404}, nil, false},
		{"throttled", &http.Response{StatusCode: 429}, nil, true},
		{"bad gateway", &http.Response{StatusCode: 502}, nil, true},
		{"connection reset", nil, errors.New("connection reset by peer"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := CheckRetry(ctx, tt.resp, tt.err)
			if got != tt.want {
				t.Errorf("CheckRetry() = %v, want %v", got, tt.want)
			}
		})
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if retry, err := CheckRetry(cancelled, &http.Response{StatusCode: 503}, nil); retry || err == nil {
		t.Error("cancelled context must stop retries")
	}
}

func TestBackoff(t *testing.T) {
	resp := &http.Response{StatusCode: 429, Header: http.Header{"Retry-After": []string{"7"}}}
	if got := Backoff(time.Second, 30*time.Second, 1, resp); got != 7*time.Second {
		t.Errorf("Retry-After should win, got %v", got)
	}

	for attempt := 1; attempt < 10; attempt++ {
		got := Backoff(time.Second, 30*time.Second, attempt, nil)
		if got < time.Second || got > 30*time.Second {
			t.Errorf("attempt %d: backoff %v outside [1s, 30s]", attempt, got)
		}
	}
}

func TestCalculateBackoff(t *testing.T) {
	if got := CalculateBackoff(0, time.Second, time.Minute); got != 0 {
		t.Errorf("attempt 0 should not wait, got %v", got)
	}
	for i := 0; i < 50; i++ {
		if got := CalculateBackoff(40, time.Second, 5*time.Second); got >= 5*time.Second {
			t.Fatalf("backoff %v exceeds cap", got)
		}
	}
}
