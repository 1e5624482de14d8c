package availability

import "time"

// DefaultGranularity is the step between enumerated slot starts.
const DefaultGranularity = 15 * time.Minute

// Slots returns the offerable start times for a booking of length duration
// within the given free intervals, stepping at the given granularity.
// A candidate is kept when [start, start+duration) fits inside one free
// interval, starts at or after now, and does not intersect any busy interval
// (callers pad busy intervals with the recruiter's buffer beforehand).
//
// All times are expected to be in the same location (timezone).
func Slots(free []Interval, duration, step time.Duration, busy []Interval, now time.Time) []time.Time {
	if duration <= 0 || step <= 0 {
		return nil
	}

	var slots []time.Time
	for _, win := range free {
		if !win.IsValid() || win.Start.Add(duration).After(win.End) {
			continue
		}
		for t := win.Start; !t.Add(duration).After(win.End); t = t.Add(step) {
			if t.Before(now) {
				continue
			}
			if !overlapsAny(t, t.Add(duration), busy) {
				slots = append(slots, t)
			}
		}
	}
	return slots
}

func overlapsAny(start, end time.Time, busy []Interval) bool {
	for _, b := range busy {
		// Half-open intervals: [start,end) overlaps [b.Start,b.End) iff start < b.End && b.Start < end.
		if start.Before(b.End) && b.Start.Before(end) {
			return true
		}
	}
	return false
}
