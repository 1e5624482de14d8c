package availability

import (
	"time"

	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/model"
)

// FreeIntervals computes the ordered, disjoint free intervals for one
// recruiter-day: the working window minus the lunch break minus approved
// time off. A non-working day (including a missing config) yields nil;
// absence of availability is a valid business state, not an error.
//
// day must be midnight UTC of the date in question.
func FreeIntervals(cfg model.WorkingHoursConfig, day time.Time, timeOff []model.TimeOff) []Interval {
	if !cfg.IsWorkingDay || cfg.EndMinute <= cfg.StartMinute {
		return nil
	}

	window := Interval{
		Start: day.Add(time.Duration(cfg.StartMinute) * time.Minute),
		End:   day.Add(time.Duration(cfg.EndMinute) * time.Minute),
	}
	free := []Interval{window}

	if cfg.HasLunchBreak() {
		lunch := Interval{
			Start: day.Add(time.Duration(cfg.LunchStartMinute) * time.Minute),
			End:   day.Add(time.Duration(cfg.LunchEndMinute) * time.Minute),
		}
		free = Subtract(free, lunch)
	}

	for _, t := range timeOff {
		if t.Suppresses(day) {
			// Time off is day-granular: an approved entry covering this date
			// removes the whole day.
			return nil
		}
	}
	return free
}

// WorkingMinutes is the bookable minutes for the day: the working window
// minus lunch, zero when approved time off covers the date. Feeds the
// utilization denominator in statistics.
func WorkingMinutes(cfg model.WorkingHoursConfig, day time.Time, timeOff []model.TimeOff) int {
	total := 0
	for _, iv := range FreeIntervals(cfg, day, timeOff) {
		total += int(iv.End.Sub(iv.Start) / time.Minute)
	}
	return total
}
