package fetch

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestRetryWait(t *testing.T) {
	tests := []struct {
		attempt    int
		retryAfter time.Duration
		want       time.Duration
	}{
		{1, 0, 2 * time.Second},
		{2, 0, 4 * time.Second},
		{3, 0, 6 * time.Second},
		{0, 0, 2 * time.Second},
		{1, 30 * time.Second, 30 * time.Second}, // server hint wins
		{3, time.Second, time.Second},
	}
	for _, tt := range tests {
		got := RetryWait(tt.attempt, tt.retryAfter)
		if got != tt.want {
			t.Errorf("RetryWait(%d, %v) = %v, want %v", tt.attempt, tt.retryAfter, got, tt.want)
		}
	}
}

func TestRetryAfterHint(t *testing.T) {
	tests := []struct {
		header string
		want   time.Duration
	}{
		{"", 0},
		{"7", 7 * time.Second},
		{"0", 0},
		{"-3", 0},
		{"Wed, 21 Oct 2026 07:28:00 GMT", 0}, // only integer-seconds form
		{"soon", 0},
	}
	for _, tt := range tests {
		resp := &http.Response{Header: http.Header{}}
		if tt.header != "" {
			resp.Header.Set("Retry-After", tt.header)
		}
		got := retryAfterHint(resp)
		if got != tt.want {
			t.Errorf("retryAfterHint(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name   string
		status int
		err    error
		want   bool
	}{
		{"network error", 0, errors.New("connection refused"), true},
		{"rate limited", http.StatusTooManyRequests, nil, true},
		{"server error", http.StatusInternalServerError, nil, true},
		{"bad gateway", http.StatusBadGateway, nil, true},
		{"not found", http.StatusNotFound, nil, false},
		{"forbidden", http.StatusForbidden, nil, false},
		{"ok", http.StatusOK, nil, false},
	}
	for _, tt := range tests {
		var resp *http.Response
		if tt.status != 0 {
			resp = &http.Response{StatusCode: tt.status}
		}
		if got := shouldRetry(resp, tt.err); got != tt.want {
			t.Errorf("%s: shouldRetry = %v, want %v", tt.name, got, tt.want)
		}
	}
}
