package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterAllowWindow(t *testing.T) {
	rl := NewRateLimiter(2, time.Hour)

	if !rl.allow("1.2.3.4") || !rl.allow("1.2.3.4") {
		t.Fatal("first two requests must pass")
	}
	if rl.allow("1.2.3.4") {
		t.Fatal("third request in the window must be rejected")
	}
	if !rl.allow("5.6.7.8") {
		t.Fatal("other clients must not share the counter")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:51234"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("first request: got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: got %d, want 429", rec.Code)
	}
}

func TestClientKeyPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:51234"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	if got := clientKey(req); got != "203.0.113.9" {
		t.Fatalf("clientKey = %q, want first forwarded address", got)
	}

	req.Header.Del("X-Forwarded-For")
	if got := clientKey(req); got != "10.0.0.1" {
		t.Fatalf("clientKey = %q, want remote host", got)
	}
}
