package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func corsHandler(p CORSPolicy) http.Handler {
	return WithCORS(p)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestWithCORSNoOriginsIsNoOp(t *testing.T) {
	h := corsHandler(CORSPolicy{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("empty policy must not emit CORS headers, got %q", got)
	}
}

func TestWithCORSPreflight(t *testing.T) {
	h := corsHandler(CORSPolicy{
		AllowedOrigins: []string{"https://app.example.com"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type", "Idempotency-Key"},
		MaxAge:         10 * time.Minute,
	})
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/interviews/schedule", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("allow-origin = %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST" {
		t.Fatalf("allow-methods = %q", got)
	}
	if got := rr.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Fatalf("max-age = %q", got)
	}
}

func TestWithCORSUnknownOriginPassesThrough(t *testing.T) {
	h := corsHandler(CORSPolicy{AllowedOrigins: []string{"https://app.example.com"}})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unknown origin must not be allowed, got %q", got)
	}
	if rr.Code != http.StatusNoContent {
		t.Fatalf("request must still reach the handler, status = %d", rr.Code)
	}
}

func TestWithCORSWildcard(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")

	rr := httptest.NewRecorder()
	corsHandler(CORSPolicy{AllowedOrigins: []string{"*"}}).ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("wildcard without credentials = %q, want *", got)
	}

	rr = httptest.NewRecorder()
	corsHandler(CORSPolicy{AllowedOrigins: []string{"*"}, AllowCredentials: true}).ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://anywhere.example.com" {
		t.Fatalf("credentialed wildcard must echo the origin, got %q", got)
	}
}
