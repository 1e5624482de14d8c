// Package conflict decides whether a proposed interview slot is bookable.
// Evaluation is pure and read-only; callers must re-run it inside the same
// transaction that inserts the row (with the recruiter-day lock held) so the
// check and the commit see the same state.
package conflict

import (
	"time"

	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/availability"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/schederr"
)

// MaxDuration caps a single interview's length.
const MaxDuration = 8 * time.Hour

// Booking is an existing non-terminal interview interval.
type Booking struct {
	ID    string
	Start time.Time
	End   time.Time
}

// Proposal carries everything Evaluate needs, pre-loaded by the caller:
// the recruiter's free intervals for the date, the recruiter's non-terminal
// bookings on that date, and the candidate's non-terminal bookings (any
// recruiter) overlapping the proposed window.
type Proposal struct {
	Now           time.Time
	Start         time.Time
	Duration      time.Duration
	Free          []availability.Interval
	Existing      []Booking
	CandidateBusy []Booking
	Buffer        time.Duration
	MaxPerDay     int
	// ExcludeID is skipped during overlap and cap checks; set when
	// rescheduling so the retiring row does not conflict with itself.
	ExcludeID string
}

// Evaluate returns nil when the proposal is bookable, or a *schederr.Error
// naming the first failed rule. Rules run in order and short-circuit.
func Evaluate(p Proposal) error {
	if !p.Start.After(p.Now) {
		return schederr.Invalid(schederr.CodePastDate, "proposed time %s is not in the future", p.Start.Format(time.RFC3339))
	}
	if p.Duration <= 0 || p.Duration > MaxDuration {
		return schederr.Invalid(schederr.CodeInvalidDuration, "duration must be between 1 minute and %s", MaxDuration)
	}

	end := p.Start.Add(p.Duration)
	if !containedInFree(p.Free, p.Start, end) {
		return schederr.Conflict(schederr.CodeOutsideWorkingHours, "slot is outside working hours, lunch break, or approved time off")
	}

	existing := withoutID(p.Existing, p.ExcludeID)
	if p.MaxPerDay > 0 && len(existing) >= p.MaxPerDay {
		return schederr.Conflict(schederr.CodeDailyCapReached, "recruiter already has %d interviews that day", len(existing))
	}

	padded := availability.Interval{Start: p.Start, End: end}.Pad(p.Buffer)
	if ids := overlapping(existing, padded); len(ids) > 0 {
		return schederr.ConflictWith(schederr.CodeOverlapsExisting, ids, "slot overlaps an existing interview (buffer %s)", p.Buffer)
	}

	proposed := availability.Interval{Start: p.Start, End: end}
	if ids := overlapping(withoutID(p.CandidateBusy, p.ExcludeID), proposed); len(ids) > 0 {
		return schederr.ConflictWith(schederr.CodeCandidateDoubleBooked, ids, "candidate already has an interview in this window")
	}
	return nil
}

func containedInFree(free []availability.Interval, start, end time.Time) bool {
	for _, iv := range free {
		if iv.Contains(start, end) {
			return true
		}
	}
	return false
}

func overlapping(bookings []Booking, window availability.Interval) []string {
	var ids []string
	for _, b := range bookings {
		if window.Overlaps(availability.Interval{Start: b.Start, End: b.End}) {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

func withoutID(bookings []Booking, id string) []Booking {
	if id == "" {
		return bookings
	}
	out := make([]Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.ID != id {
			out = append(out, b)
		}
	}
	return out
}
