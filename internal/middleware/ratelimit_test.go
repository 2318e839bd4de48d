package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/qrsurvey/qrs-api/internal/pkg/ratelimit"
)

func limitedHandler() http.Handler {
	limiter := ratelimit.NewMemory(1, 1, time.Minute)
	return RateLimitByIP(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
}

func sendFrom(h http.Handler, remoteAddr, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodPost, "/s/abc12345", nil)
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitByIP(t *testing.T) {
	h := limitedHandler()

	if code := sendFrom(h, "203.0.113.1:4000", ""); code != http.StatusNoContent {
		t.Fatalf("first request: %d", code)
	}
	if code := sendFrom(h, "203.0.113.1:4001", ""); code != http.StatusTooManyRequests {
		t.Fatalf("same ip on another port: %d", code)
	}
	if code := sendFrom(h, "198.51.100.7:4000", ""); code != http.StatusNoContent {
		t.Fatalf("other ip: %d", code)
	}
}

func TestRateLimitByIPIgnoresForwardedFor(t *testing.T) {
	h := limitedHandler()

	codes := []int{
		sendFrom(h, "203.0.113.1:4000", "10.0.0.1"),
		sendFrom(h, "203.0.113.1:4000", "10.0.0.2"),
		sendFrom(h, "203.0.113.1:4000", "10.0.0.3"),
	}
	if codes[0] != http.StatusNoContent {
		t.Fatalf("first request: %d", codes[0])
	}
	for i, code := range codes[1:] {
		if code != http.StatusTooManyRequests {
			t.Fatalf("request %d with rotated header: %d, want 429", i+2, code)
		}
	}
}

func TestRemoteIP(t *testing.T) {
	tests := []struct {
		remoteAddr string
		want       string
	}{
		{"203.0.113.1:4000", "203.0.113.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"203.0.113.9", "203.0.113.9"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remoteAddr
		if got := RemoteIP(req); got != tt.want {
			t.Errorf("RemoteIP(%q) = %q, want %q", tt.remoteAddr, got, tt.want)
		}
	}
}
