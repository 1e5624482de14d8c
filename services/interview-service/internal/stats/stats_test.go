package stats

import (
	"math"
	"testing"
	"time"

	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/model"
)

func iv(status model.InterviewStatus, start time.Time, durationMin int, leadTime time.Duration) model.Interview {
	return model.Interview{
		Status:          status,
		ScheduledAt:     start,
		DurationMinutes: durationMin,
		CreatedAt:       start.Add(-leadTime),
	}
}

func TestSummarize(t *testing.T) {
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	interviews := []model.Interview{
		iv(model.StatusCompleted, day.Add(10*time.Hour), 60, 48*time.Hour),
		iv(model.StatusCompleted, day.Add(14*time.Hour), 60, 24*time.Hour),
		iv(model.StatusNoShow, day.Add(16*time.Hour), 30, 24*time.Hour),
		iv(model.StatusCancelled, day.Add(11*time.Hour), 60, 24*time.Hour),
		iv(model.StatusScheduled, day.AddDate(0, 0, 1).Add(10*time.Hour), 45, 72*time.Hour),
	}
	avail := map[string]int{
		"2026-09-07": 420,
		"2026-09-08": 420,
	}

	s := Summarize(interviews, avail)

	if s.Total != 5 {
		t.Fatalf("expected total 5, got %d", s.Total)
	}
	if s.ByStatus[model.StatusCompleted] != 2 || s.ByStatus[model.StatusNoShow] != 1 {
		t.Fatalf("unexpected status counts: %+v", s.ByStatus)
	}
	// 1 no-show out of 3 attendance-terminal interviews.
	if math.Abs(s.NoShowRate-1.0/3.0) > 1e-9 {
		t.Fatalf("expected no-show rate 1/3, got %f", s.NoShowRate)
	}
	// (48 + 24 + 24 + 24 + 72) / 5 hours
	if math.Abs(s.AvgLeadTimeHours-38.4) > 1e-9 {
		t.Fatalf("expected avg lead time 38.4h, got %f", s.AvgLeadTimeHours)
	}

	if len(s.Utilization) != 2 {
		t.Fatalf("expected 2 utilization days, got %d", len(s.Utilization))
	}
	if s.Utilization[0].Date != "2026-09-07" || s.Utilization[1].Date != "2026-09-08" {
		t.Fatalf("utilization must be date-ordered: %+v", s.Utilization)
	}
	// Completed 60+60 and no-show 30 count as booked; the cancelled hour
	// does not.
	if s.Utilization[0].BookedMinutes != 150 {
		t.Fatalf("expected 150 booked minutes on day one, got %d", s.Utilization[0].BookedMinutes)
	}
	if math.Abs(s.Utilization[0].Ratio-150.0/420.0) > 1e-9 {
		t.Fatalf("unexpected ratio: %f", s.Utilization[0].Ratio)
	}
	if s.Utilization[1].BookedMinutes != 45 {
		t.Fatalf("expected 45 booked minutes on day two, got %d", s.Utilization[1].BookedMinutes)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, nil)
	if s.Total != 0 || s.NoShowRate != 0 || s.AvgLeadTimeHours != 0 || len(s.Utilization) != 0 {
		t.Fatalf("expected zero-valued summary, got %+v", s)
	}
}

func TestNoShowByHour(t *testing.T) {
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	history := []model.Interview{
		iv(model.StatusCompleted, day.Add(9*time.Hour), 60, time.Hour),
		iv(model.StatusCompleted, day.Add(9*time.Hour+30*time.Minute), 30, time.Hour),
		iv(model.StatusNoShow, day.Add(9*time.Hour), 60, time.Hour),
		iv(model.StatusNoShow, day.Add(16*time.Hour), 60, time.Hour),
		// Cancelled rows carry no attendance signal.
		iv(model.StatusCancelled, day.Add(9*time.Hour), 60, time.Hour),
	}

	hs := NoShowByHour(history)
	rate, n := hs.Rate(9)
	if n != 3 {
		t.Fatalf("expected 3 samples at 09:00, got %d", n)
	}
	if math.Abs(rate-1.0/3.0) > 1e-9 {
		t.Fatalf("expected rate 1/3 at 09:00, got %f", rate)
	}
	rate, n = hs.Rate(16)
	if n != 1 || rate != 1 {
		t.Fatalf("expected rate 1 with 1 sample at 16:00, got %f/%d", rate, n)
	}
	if _, n := hs.Rate(11); n != 0 {
		t.Fatalf("expected no samples at 11:00, got %d", n)
	}
}
