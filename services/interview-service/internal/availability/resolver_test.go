package availability

import (
	"testing"
	"time"

	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/model"
)

func weekdayConfig() model.WorkingHoursConfig {
	return model.WorkingHoursConfig{
		RecruiterID:         "rec-1",
		Weekday:             time.Monday,
		IsWorkingDay:        true,
		StartMinute:         9 * 60,
		EndMinute:           17 * 60,
		LunchStartMinute:    12 * 60,
		LunchEndMinute:      13 * 60,
		BufferMinutes:       15,
		MaxInterviewsPerDay: 8,
	}
}

func TestFreeIntervalsSplitsAroundLunch(t *testing.T) {
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC) // a Monday
	free := FreeIntervals(weekdayConfig(), day, nil)

	if len(free) != 2 {
		t.Fatalf("expected 2 free intervals, got %d", len(free))
	}
	if !free[0].Start.Equal(at(day, 9, 0)) || !free[0].End.Equal(at(day, 12, 0)) {
		t.Fatalf("unexpected morning interval: %+v", free[0])
	}
	if !free[1].Start.Equal(at(day, 13, 0)) || !free[1].End.Equal(at(day, 17, 0)) {
		t.Fatalf("unexpected afternoon interval: %+v", free[1])
	}
}

func TestFreeIntervalsNonWorkingDay(t *testing.T) {
	day := time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC) // a Sunday
	cfg := model.NonWorkingDay("rec-1", time.Sunday)
	if free := FreeIntervals(cfg, day, nil); free != nil {
		t.Fatalf("expected no free intervals on a non-working day, got %+v", free)
	}
}

func TestFreeIntervalsNoLunch(t *testing.T) {
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	cfg := weekdayConfig()
	cfg.LunchStartMinute = -1
	cfg.LunchEndMinute = -1

	free := FreeIntervals(cfg, day, nil)
	if len(free) != 1 {
		t.Fatalf("expected 1 free interval without lunch, got %d", len(free))
	}
	if !free[0].Start.Equal(at(day, 9, 0)) || !free[0].End.Equal(at(day, 17, 0)) {
		t.Fatalf("unexpected interval: %+v", free[0])
	}
}

func TestFreeIntervalsApprovedTimeOffRemovesDay(t *testing.T) {
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	off := []model.TimeOff{{
		RecruiterID: "rec-1",
		StartDate:   day,
		EndDate:     day.AddDate(0, 0, 2),
		Type:        model.TimeOffVacation,
		IsApproved:  true,
	}}

	if free := FreeIntervals(weekdayConfig(), day, off); free != nil {
		t.Fatalf("expected no availability under approved time off, got %+v", free)
	}
}

func TestFreeIntervalsPendingTimeOffIgnored(t *testing.T) {
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	off := []model.TimeOff{{
		RecruiterID: "rec-1",
		StartDate:   day,
		EndDate:     day,
		Type:        model.TimeOffVacation,
		IsApproved:  false,
	}}

	if free := FreeIntervals(weekdayConfig(), day, off); len(free) != 2 {
		t.Fatalf("pending time off must not suppress availability, got %+v", free)
	}
}

func TestWorkingMinutes(t *testing.T) {
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	// 8h window minus 1h lunch
	if got := WorkingMinutes(weekdayConfig(), day, nil); got != 7*60 {
		t.Fatalf("expected 420 working minutes, got %d", got)
	}
	if got := WorkingMinutes(model.NonWorkingDay("rec-1", time.Sunday), day, nil); got != 0 {
		t.Fatalf("expected 0 working minutes on non-working day, got %d", got)
	}
}
