// Package stats aggregates bookings and utilization over a date range.
// Everything here is a pure fold over rows the caller already loaded.
package stats

import (
	"sort"
	"time"

	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/model"
)

type DayUtilization struct {
	Date             string  `json:"date"`
	BookedMinutes    int     `json:"booked_minutes"`
	AvailableMinutes int     `json:"available_minutes"`
	Ratio            float64 `json:"ratio"`
}

type Summary struct {
	Total            int                           `json:"total"`
	ByStatus         map[model.InterviewStatus]int `json:"by_status"`
	NoShowRate       float64                       `json:"no_show_rate"`
	AvgLeadTimeHours float64                       `json:"avg_lead_time_hours"`
	Utilization      []DayUtilization              `json:"utilization"`
}

// Summarize folds the interviews in a range into a report.
// availableMinutesByDate maps YYYY-MM-DD to the recruiter's bookable minutes
// that day (working window minus lunch, zero under approved time off).
// The no-show rate denominator is interviews that reached a terminal outcome
// of attendance (COMPLETED or NO_SHOW); rescheduled and cancelled rows carry
// no attendance signal.
func Summarize(interviews []model.Interview, availableMinutesByDate map[string]int) Summary {
	s := Summary{ByStatus: map[model.InterviewStatus]int{}}

	booked := map[string]int{}
	var attended, noShows int
	var leadTimeTotal time.Duration
	var leadTimeCount int

	for _, iv := range interviews {
		s.Total++
		s.ByStatus[iv.Status]++

		switch iv.Status {
		case model.StatusCompleted:
			attended++
		case model.StatusNoShow:
			noShows++
			attended++
		}

		if !iv.Status.IsTerminal() || iv.Status == model.StatusCompleted || iv.Status == model.StatusNoShow {
			booked[iv.ScheduledAt.UTC().Format("2006-01-02")] += iv.DurationMinutes
		}

		if !iv.CreatedAt.IsZero() && iv.ScheduledAt.After(iv.CreatedAt) {
			leadTimeTotal += iv.ScheduledAt.Sub(iv.CreatedAt)
			leadTimeCount++
		}
	}

	if attended > 0 {
		s.NoShowRate = float64(noShows) / float64(attended)
	}
	if leadTimeCount > 0 {
		s.AvgLeadTimeHours = leadTimeTotal.Hours() / float64(leadTimeCount)
	}

	for date, avail := range availableMinutesByDate {
		du := DayUtilization{
			Date:             date,
			BookedMinutes:    booked[date],
			AvailableMinutes: avail,
		}
		if avail > 0 {
			du.Ratio = float64(du.BookedMinutes) / float64(avail)
		}
		s.Utilization = append(s.Utilization, du)
	}
	sort.Slice(s.Utilization, func(i, j int) bool {
		return s.Utilization[i].Date < s.Utilization[j].Date
	})
	return s
}

// HourStats is per-start-hour no-show history used by the suggestion
// heuristic.
type HourStats struct {
	Attended map[int]int
	NoShows  map[int]int
}

// NoShowByHour buckets historical interviews by their UTC start hour.
func NoShowByHour(history []model.Interview) HourStats {
	hs := HourStats{Attended: map[int]int{}, NoShows: map[int]int{}}
	for _, iv := range history {
		hour := iv.ScheduledAt.UTC().Hour()
		switch iv.Status {
		case model.StatusCompleted:
			hs.Attended[hour]++
		case model.StatusNoShow:
			hs.Attended[hour]++
			hs.NoShows[hour]++
		}
	}
	return hs
}

// Rate returns the no-show rate for an hour and the sample size behind it.
func (hs HourStats) Rate(hour int) (float64, int) {
	n := hs.Attended[hour]
	if n == 0 {
		return 0, 0
	}
	return float64(hs.NoShows[hour]) / float64(n), n
}
