package suggest

import (
	"testing"
	"time"

	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/availability"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/conflict"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/model"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/stats"
)

func workdayFree(day time.Time) []availability.Interval {
	return []availability.Interval{
		{Start: day.Add(9 * time.Hour), End: day.Add(12 * time.Hour)},
		{Start: day.Add(13 * time.Hour), End: day.Add(17 * time.Hour)},
	}
}

func TestRankPrefersMidday(t *testing.T) {
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	free := workdayFree(day)
	slots := []time.Time{
		day.Add(9 * time.Hour),
		day.Add(13 * time.Hour),
		day.Add(16 * time.Hour),
	}

	ranked := Rank(slots, time.Hour, free, nil, 15*time.Minute, stats.HourStats{}, 3)
	if len(ranked) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(ranked))
	}
	// The 13:00 slot sits closest to the 13:00 center of the 09:00-17:00 span.
	if !ranked[0].Start.Equal(day.Add(13 * time.Hour)) {
		t.Fatalf("expected 13:00 ranked first, got %s", ranked[0].Start.Format(time.RFC3339))
	}
	if ranked[0].Score <= ranked[len(ranked)-1].Score {
		t.Fatalf("scores must be descending: %+v", ranked)
	}
}

func TestRankPenalizesAdjacentBookings(t *testing.T) {
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	free := workdayFree(day)
	// Two slots symmetric around the midpoint; only one is next to a booking.
	slots := []time.Time{
		day.Add(11 * time.Hour),
		day.Add(14 * time.Hour),
	}
	existing := []conflict.Booking{
		{ID: "iv-1", Start: day.Add(15*time.Hour + 15*time.Minute), End: day.Add(16 * time.Hour)},
	}

	ranked := Rank(slots, time.Hour, free, existing, 15*time.Minute, stats.HourStats{}, 2)
	if !ranked[0].Start.Equal(day.Add(11 * time.Hour)) {
		t.Fatalf("expected the slot with breathing room first, got %s", ranked[0].Start.Format(time.RFC3339))
	}
}

func TestRankUsesAttendanceHistoryWithEnoughSamples(t *testing.T) {
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	free := workdayFree(day)
	// 10:00 and 15:00 sit equally far from the 13:00 span center, so only
	// the attendance history separates them.
	slots := []time.Time{
		day.Add(10 * time.Hour),
		day.Add(15 * time.Hour),
	}

	var history []model.Interview
	for i := 0; i < 5; i++ {
		history = append(history, model.Interview{Status: model.StatusCompleted, ScheduledAt: day.Add(10 * time.Hour)})
		history = append(history, model.Interview{Status: model.StatusNoShow, ScheduledAt: day.Add(15 * time.Hour)})
	}

	ranked := Rank(slots, time.Hour, free, nil, 15*time.Minute, stats.NoShowByHour(history), 2)
	if !ranked[0].Start.Equal(day.Add(10 * time.Hour)) {
		t.Fatalf("expected the low no-show hour first, got %s", ranked[0].Start.Format(time.RFC3339))
	}
	if ranked[0].Score <= ranked[1].Score {
		t.Fatalf("history should separate the scores: %+v", ranked)
	}
}

func TestRankIgnoresThinHistory(t *testing.T) {
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	free := workdayFree(day)
	slots := []time.Time{
		day.Add(10 * time.Hour),
		day.Add(15 * time.Hour),
	}

	// 2 samples per hour, below the participation threshold.
	history := []model.Interview{
		{Status: model.StatusNoShow, ScheduledAt: day.Add(10 * time.Hour)},
		{Status: model.StatusNoShow, ScheduledAt: day.Add(10 * time.Hour)},
		{Status: model.StatusCompleted, ScheduledAt: day.Add(15 * time.Hour)},
		{Status: model.StatusCompleted, ScheduledAt: day.Add(15 * time.Hour)},
	}

	ranked := Rank(slots, time.Hour, free, nil, 15*time.Minute, stats.NoShowByHour(history), 2)
	if ranked[0].Score != ranked[1].Score {
		t.Fatalf("thin history must not affect scores: %+v", ranked)
	}
	// Tie breaks on the earlier start.
	if !ranked[0].Start.Equal(day.Add(10 * time.Hour)) {
		t.Fatalf("expected earlier slot first on tie, got %s", ranked[0].Start.Format(time.RFC3339))
	}
}

func TestRankLimitsResults(t *testing.T) {
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	free := workdayFree(day)
	var slots []time.Time
	for h := 9; h < 16; h++ {
		slots = append(slots, day.Add(time.Duration(h)*time.Hour))
	}

	ranked := Rank(slots, time.Hour, free, nil, 15*time.Minute, stats.HourStats{}, 3)
	if len(ranked) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(ranked))
	}
	if Rank(slots, time.Hour, free, nil, 15*time.Minute, stats.HourStats{}, 0) != nil {
		t.Fatal("limit 0 must return nil")
	}
}
