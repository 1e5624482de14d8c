package handlers

import (
	"testing"
	"time"
)

func TestCandidateRange(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)

	from, to, err := candidateRange("", "", now)
	if err != nil {
		t.Fatalf("default range: %v", err)
	}
	if !from.Equal(now) || !to.Equal(now.AddDate(0, 3, 0)) {
		t.Fatalf("default range = [%s, %s), want now to three months out", from, to)
	}

	from, to, err = candidateRange("2026-10-01", "2026-10-15", now)
	if err != nil {
		t.Fatalf("explicit range: %v", err)
	}
	if !from.Equal(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("from = %s", from)
	}
	// The window closes at the end of the "to" day, so the 15th is included.
	if !to.Equal(time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("to = %s", to)
	}

	from, to, err = candidateRange("2026-10-01", "", now)
	if err != nil {
		t.Fatalf("from only: %v", err)
	}
	if !to.Equal(from.AddDate(0, 3, 0)) {
		t.Fatalf("from-only horizon = [%s, %s)", from, to)
	}

	if _, _, err := candidateRange("2026/10/01", "", now); err == nil {
		t.Fatal("malformed from must be rejected")
	}
	if _, _, err := candidateRange("2026-10-15", "2026-10-01", now); err == nil {
		t.Fatal("inverted range must be rejected")
	}
}
