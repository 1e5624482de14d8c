package handlers

import (
	"context"
	"time"

	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/availability"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/conflict"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/model"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/storage"
)

// schedulingDeps bundles the stores every calendar computation needs.
type schedulingDeps struct {
	workingHours *storage.WorkingHoursRepository
	timeOff      *storage.TimeOffRepository
	interviews   *storage.InterviewRepository
}

// dayContext loads one recruiter-day: the weekday config, the free intervals
// after lunch and approved time off, and the active bookings. Interview reads
// go through q so callers inside the booking transaction see locked state;
// config/time-off reads tolerate slightly stale views per the availability
// model (any real booking re-checks at commit time).
func (d schedulingDeps) dayContext(ctx context.Context, q storage.Querier, recruiterID string, day time.Time) (model.WorkingHoursConfig, []availability.Interval, []conflict.Booking, error) {
	cfg, err := d.workingHours.Get(ctx, recruiterID, day.UTC().Weekday())
	if err != nil {
		return model.WorkingHoursConfig{}, nil, nil, err
	}
	timeOff, err := d.timeOff.ApprovedForDay(ctx, recruiterID, day)
	if err != nil {
		return model.WorkingHoursConfig{}, nil, nil, err
	}
	free := availability.FreeIntervals(cfg, day, timeOff)

	dayStart, dayEnd := dayBounds(day)
	active, err := d.interviews.ListActiveByRecruiter(ctx, q, recruiterID, dayStart, dayEnd)
	if err != nil {
		return model.WorkingHoursConfig{}, nil, nil, err
	}
	return cfg, free, bookingsOf(active), nil
}

func bookingsOf(interviews []model.Interview) []conflict.Booking {
	out := make([]conflict.Booking, 0, len(interviews))
	for _, iv := range interviews {
		out = append(out, conflict.Booking{ID: iv.ID, Start: iv.ScheduledAt, End: iv.EndsAt()})
	}
	return out
}

// paddedBusy expands bookings by the recruiter's buffer for slot enumeration.
func paddedBusy(bookings []conflict.Booking, buffer time.Duration) []availability.Interval {
	out := make([]availability.Interval, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, availability.Interval{Start: b.Start, End: b.End}.Pad(buffer))
	}
	return out
}
