// Package suggest ranks offerable slots. The ranking is advisory only; it
// never blocks a booking the conflict detector would accept.
package suggest

import (
	"sort"
	"time"

	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/availability"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/conflict"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/stats"
)

// minHistorySamples is the per-hour attendance history required before the
// no-show component participates in the score.
const minHistorySamples = 5

const (
	weightMidday = 1.0
	weightGap    = 0.5
	weightNoShow = 0.5
)

type Suggestion struct {
	Start time.Time `json:"start"`
	Score float64   `json:"score"`
}

// Rank scores each slot and returns the top n, best first. Ties break on the
// earlier start so the output is deterministic.
//
// Score components:
//   - midday preference: slots near the middle of the working window beat
//     slots at the day's edges
//   - breathing room: slots not immediately adjacent to another booking score
//     higher (less interviewer fatigue)
//   - attendance history: hours with a lower historical no-show rate score
//     higher, once enough samples exist
func Rank(slots []time.Time, duration time.Duration, free []availability.Interval, existing []conflict.Booking, buffer time.Duration, history stats.HourStats, n int) []Suggestion {
	if len(slots) == 0 || n <= 0 {
		return nil
	}

	window := span(free)
	out := make([]Suggestion, 0, len(slots))
	for _, s := range slots {
		score := weightMidday * middayScore(s, duration, window)
		score += weightGap * gapScore(s, duration, existing, buffer)
		if rate, samples := history.Rate(s.UTC().Hour()); samples >= minHistorySamples {
			score += weightNoShow * (1 - rate)
		}
		out = append(out, Suggestion{Start: s, Score: score})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Start.Before(out[j].Start)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// middayScore is 1 at the center of the working window and falls linearly to
// 0 at the edges.
func middayScore(start time.Time, duration time.Duration, window availability.Interval) float64 {
	if !window.IsValid() {
		return 0
	}
	mid := window.Start.Add(window.End.Sub(window.Start) / 2)
	slotMid := start.Add(duration / 2)
	offset := slotMid.Sub(mid)
	if offset < 0 {
		offset = -offset
	}
	half := window.End.Sub(window.Start) / 2
	if half <= 0 || offset >= half {
		return 0
	}
	return 1 - float64(offset)/float64(half)
}

// gapScore is 0 when another booking sits within one buffer of the slot,
// 1 otherwise.
func gapScore(start time.Time, duration time.Duration, existing []conflict.Booking, buffer time.Duration) float64 {
	if buffer <= 0 {
		buffer = time.Minute
	}
	near := availability.Interval{Start: start, End: start.Add(duration)}.Pad(2 * buffer)
	for _, b := range existing {
		if near.Overlaps(availability.Interval{Start: b.Start, End: b.End}) {
			return 0
		}
	}
	return 1
}

func span(free []availability.Interval) availability.Interval {
	var out availability.Interval
	for _, iv := range free {
		if !iv.IsValid() {
			continue
		}
		if out.Start.IsZero() || iv.Start.Before(out.Start) {
			out.Start = iv.Start
		}
		if iv.End.After(out.End) {
			out.End = iv.End
		}
	}
	return out
}
