package availability

import "time"

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func (iv Interval) IsValid() bool {
	return iv.End.After(iv.Start)
}

// Contains reports whether [start, end) lies fully inside the interval.
func (iv Interval) Contains(start, end time.Time) bool {
	return !start.Before(iv.Start) && !end.After(iv.End)
}

// Overlaps reports whether two half-open intervals intersect.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Pad expands the interval by d on both sides. Used to enforce the idle
// buffer between consecutive interviews.
func (iv Interval) Pad(d time.Duration) Interval {
	return Interval{Start: iv.Start.Add(-d), End: iv.End.Add(d)}
}

// Subtract removes cut from each interval in the list, splitting intervals
// that straddle it. The input must be sorted and disjoint; the output stays
// sorted and disjoint.
func Subtract(intervals []Interval, cut Interval) []Interval {
	if !cut.IsValid() {
		return intervals
	}
	var out []Interval
	for _, iv := range intervals {
		if !iv.Overlaps(cut) {
			out = append(out, iv)
			continue
		}
		if cut.Start.After(iv.Start) {
			out = append(out, Interval{Start: iv.Start, End: cut.Start})
		}
		if cut.End.Before(iv.End) {
			out = append(out, Interval{Start: cut.End, End: iv.End})
		}
	}
	return out
}
