package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/schederr"
)

func TestParseDay(t *testing.T) {
	day, ok := parseDay("2026-09-07")
	if !ok {
		t.Fatal("expected valid date")
	}
	want := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	if !day.Equal(want) {
		t.Fatalf("expected midnight UTC, got %s", day.Format(time.RFC3339))
	}

	for _, bad := range []string{"", "2026-9-7", "07-09-2026", "2026-09-07T10:00:00Z", "not-a-date"} {
		if _, ok := parseDay(bad); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestDayBounds(t *testing.T) {
	start, end := dayBounds(time.Date(2026, 9, 7, 15, 42, 3, 0, time.UTC))
	if !start.Equal(time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected day start %s", start.Format(time.RFC3339))
	}
	if !end.Equal(time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected day end %s", end.Format(time.RFC3339))
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in     string
		minute int
		ok     bool
	}{
		{"09:00", 540, true},
		{"00:00", 0, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"09:60", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		minute, ok := parseClock(tc.in)
		if ok != tc.ok || minute != tc.minute {
			t.Fatalf("parseClock(%q) = (%d, %v), want (%d, %v)", tc.in, minute, ok, tc.minute, tc.ok)
		}
	}
	if got := formatClock(540); got != "09:00" {
		t.Fatalf("formatClock(540) = %q", got)
	}
}

func TestWriteDomainError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeDomainError(rec, schederr.ConflictWith(schederr.CodeOverlapsExisting, []string{"iv-1"}, "slot overlaps"))

	if rec.Code != 409 {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid error body: %v", err)
	}
	if body.Error.Code != schederr.CodeOverlapsExisting {
		t.Fatalf("expected code %s, got %s", schederr.CodeOverlapsExisting, body.Error.Code)
	}
	if len(body.Error.ConflictIDs) != 1 || body.Error.ConflictIDs[0] != "iv-1" {
		t.Fatalf("expected conflicting ids, got %v", body.Error.ConflictIDs)
	}
}

func TestWriteDomainErrorOpaqueOn500(t *testing.T) {
	rec := httptest.NewRecorder()
	writeDomainError(rec, json.Unmarshal([]byte("{"), &struct{}{}))
	if rec.Code != 500 {
		t.Fatalf("expected 500 for untyped errors, got %d", rec.Code)
	}
}
