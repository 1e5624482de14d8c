package conflict

import (
	"errors"
	"testing"
	"time"

	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/availability"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/schederr"
)

func mondayProposal(startHour, startMin, durationMin int) Proposal {
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	return Proposal{
		Now:      day.Add(-12 * time.Hour),
		Start:    day.Add(time.Duration(startHour)*time.Hour + time.Duration(startMin)*time.Minute),
		Duration: time.Duration(durationMin) * time.Minute,
		Free: []availability.Interval{
			{Start: day.Add(9 * time.Hour), End: day.Add(12 * time.Hour)},
			{Start: day.Add(13 * time.Hour), End: day.Add(17 * time.Hour)},
		},
		Buffer:    15 * time.Minute,
		MaxPerDay: 8,
	}
}

func wantCode(t *testing.T, err error, code string) {
	t.Helper()
	var e *schederr.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected a typed rejection, got %v", err)
	}
	if e.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, e.Code, e.Message)
	}
}

func TestEvaluateAccepts(t *testing.T) {
	if err := Evaluate(mondayProposal(10, 0, 60)); err != nil {
		t.Fatalf("expected accept, got %v", err)
	}
}

func TestEvaluateRejectsPastStart(t *testing.T) {
	p := mondayProposal(10, 0, 60)
	p.Now = p.Start.Add(time.Minute)
	wantCode(t, Evaluate(p), schederr.CodePastDate)
}

func TestEvaluateRejectsBadDuration(t *testing.T) {
	p := mondayProposal(10, 0, 0)
	wantCode(t, Evaluate(p), schederr.CodeInvalidDuration)

	p = mondayProposal(10, 0, 9*60)
	wantCode(t, Evaluate(p), schederr.CodeInvalidDuration)
}

func TestEvaluateRejectsOutsideWorkingHours(t *testing.T) {
	// 16:45 + 60m runs past the 17:00 close.
	wantCode(t, Evaluate(mondayProposal(16, 45, 60)), schederr.CodeOutsideWorkingHours)
	// 11:30 + 60m straddles lunch.
	wantCode(t, Evaluate(mondayProposal(11, 30, 60)), schederr.CodeOutsideWorkingHours)
	// Sunday: no free intervals at all.
	p := mondayProposal(10, 0, 60)
	p.Free = nil
	wantCode(t, Evaluate(p), schederr.CodeOutsideWorkingHours)
}

func TestEvaluateRejectsBufferedOverlap(t *testing.T) {
	p := mondayProposal(10, 10, 30)
	p.Existing = []Booking{{ID: "iv-1", Start: p.Start.Add(-70 * time.Minute), End: p.Start.Add(-10 * time.Minute)}}

	err := Evaluate(p)
	wantCode(t, err, schederr.CodeOverlapsExisting)
	var e *schederr.Error
	errors.As(err, &e)
	if len(e.ConflictIDs) != 1 || e.ConflictIDs[0] != "iv-1" {
		t.Fatalf("expected conflicting id iv-1, got %v", e.ConflictIDs)
	}
}

func TestEvaluateBufferExactlyRespected(t *testing.T) {
	// Booking ends 09:45; with a 15 minute buffer a 10:00 start is the
	// earliest acceptable slot.
	p := mondayProposal(10, 0, 30)
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	p.Existing = []Booking{{ID: "iv-1", Start: day.Add(9 * time.Hour), End: day.Add(9*time.Hour + 45*time.Minute)}}
	if err := Evaluate(p); err != nil {
		t.Fatalf("start exactly one buffer after the previous booking should pass, got %v", err)
	}

	p.Start = p.Start.Add(-time.Minute)
	wantCode(t, Evaluate(p), schederr.CodeOverlapsExisting)
}

func TestEvaluateRejectsDailyCap(t *testing.T) {
	p := mondayProposal(10, 0, 30)
	p.MaxPerDay = 2
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	p.Existing = []Booking{
		{ID: "iv-1", Start: day.Add(13 * time.Hour), End: day.Add(14 * time.Hour)},
		{ID: "iv-2", Start: day.Add(15 * time.Hour), End: day.Add(16 * time.Hour)},
	}
	wantCode(t, Evaluate(p), schederr.CodeDailyCapReached)
}

func TestEvaluateRejectsCandidateDoubleBooking(t *testing.T) {
	p := mondayProposal(10, 0, 60)
	p.CandidateBusy = []Booking{{ID: "iv-9", Start: p.Start.Add(30 * time.Minute), End: p.Start.Add(90 * time.Minute)}}

	err := Evaluate(p)
	wantCode(t, err, schederr.CodeCandidateDoubleBooked)
	var e *schederr.Error
	errors.As(err, &e)
	if len(e.ConflictIDs) != 1 || e.ConflictIDs[0] != "iv-9" {
		t.Fatalf("expected conflicting id iv-9, got %v", e.ConflictIDs)
	}
}

func TestEvaluateExcludesRetiringRow(t *testing.T) {
	// Rescheduling onto a window only blocked by the row being moved.
	p := mondayProposal(10, 0, 60)
	p.ExcludeID = "iv-old"
	p.Existing = []Booking{{ID: "iv-old", Start: p.Start, End: p.Start.Add(time.Hour)}}
	p.CandidateBusy = []Booking{{ID: "iv-old", Start: p.Start, End: p.Start.Add(time.Hour)}}

	if err := Evaluate(p); err != nil {
		t.Fatalf("retiring row must not conflict with itself, got %v", err)
	}
}

func TestEvaluateCapIgnoresRetiringRow(t *testing.T) {
	p := mondayProposal(10, 0, 30)
	p.MaxPerDay = 1
	p.ExcludeID = "iv-old"
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	p.Existing = []Booking{{ID: "iv-old", Start: day.Add(15 * time.Hour), End: day.Add(16 * time.Hour)}}

	if err := Evaluate(p); err != nil {
		t.Fatalf("cap should not count the retiring row, got %v", err)
	}
}
