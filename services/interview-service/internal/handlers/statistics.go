package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/availability"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/stats"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/storage"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/suggest"
)

// historyWindow bounds how far back attendance history feeds the no-show
// heuristic.
const historyWindow = 180 * 24 * time.Hour

type StatisticsHandler struct {
	deps   schedulingDeps
	logger *slog.Logger
}

func NewStatisticsHandler(workingHours *storage.WorkingHoursRepository, timeOff *storage.TimeOffRepository, interviews *storage.InterviewRepository, logger *slog.Logger) *StatisticsHandler {
	return &StatisticsHandler{
		deps:   schedulingDeps{workingHours: workingHours, timeOff: timeOff, interviews: interviews},
		logger: logger,
	}
}

// Summary aggregates a recruiter's interviews over a date range: totals by
// status, no-show rate, average scheduling lead time and per-day utilization
// against the configured working minutes.
func (h *StatisticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	recruiterID := strings.TrimSpace(q.Get("recruiter_id"))
	if recruiterID == "" {
		http.Error(w, "recruiter_id required", http.StatusBadRequest)
		return
	}
	from, okF := parseDay(q.Get("from"))
	to, okT := parseDay(q.Get("to"))
	if !okF || !okT || to.Before(from) {
		http.Error(w, "from and to required as YYYY-MM-DD with from <= to", http.StatusBadRequest)
		return
	}
	if to.Sub(from) > maxDateRangeDays*24*time.Hour {
		http.Error(w, "date range too large", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	interviews, err := h.deps.interviews.ListByRecruiterRange(ctx, recruiterID, from, to.AddDate(0, 0, 1))
	if err != nil {
		h.logger.Error("stats load failed", "err", err)
		http.Error(w, "failed to load statistics", http.StatusInternalServerError)
		return
	}

	availableMinutes := make(map[string]int)
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		cfg, err := h.deps.workingHours.Get(ctx, recruiterID, day.Weekday())
		if err != nil {
			h.logger.Error("stats load failed", "err", err)
			http.Error(w, "failed to load statistics", http.StatusInternalServerError)
			return
		}
		timeOff, err := h.deps.timeOff.ApprovedForDay(ctx, recruiterID, day)
		if err != nil {
			h.logger.Error("stats load failed", "err", err)
			http.Error(w, "failed to load statistics", http.StatusInternalServerError)
			return
		}
		if minutes := availability.WorkingMinutes(cfg, day, timeOff); minutes > 0 {
			availableMinutes[day.Format("2006-01-02")] = minutes
		}
	}

	writeJSON(w, http.StatusOK, stats.Summarize(interviews, availableMinutes))
}

type suggestionItem struct {
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Score     float64 `json:"score"`
}

// Suggest ranks a day's open slots by midday preference, schedule packing
// and the recruiter's historical no-show rate per hour.
func (h *StatisticsHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	recruiterID := strings.TrimSpace(q.Get("recruiter_id"))
	if recruiterID == "" {
		http.Error(w, "recruiter_id required", http.StatusBadRequest)
		return
	}
	day, ok := parseDay(q.Get("date"))
	if !ok {
		http.Error(w, "date required as YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	duration, step, ok := parseDurationParams(w, q.Get("duration_minutes"), q.Get("granularity_minutes"))
	if !ok {
		return
	}
	limit := 3
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 20 {
			http.Error(w, "limit must be between 1 and 20", http.StatusBadRequest)
			return
		}
		limit = n
	}

	ctx := r.Context()
	cfg, free, existing, err := h.deps.dayContext(ctx, h.deps.interviews.Pool(), recruiterID, day)
	if err != nil {
		h.logger.Error("suggest load failed", "err", err)
		http.Error(w, "failed to load suggestions", http.StatusInternalServerError)
		return
	}

	buffer := time.Duration(cfg.BufferMinutes) * time.Minute
	slots := availability.Slots(free, duration, step, paddedBusy(existing, buffer), time.Now().UTC())
	if cfg.MaxInterviewsPerDay > 0 && len(existing) >= cfg.MaxInterviewsPerDay {
		slots = nil
	}

	history, err := h.deps.interviews.AttendanceHistory(ctx, recruiterID, time.Now().UTC().Add(-historyWindow))
	if err != nil {
		h.logger.Error("suggest load failed", "err", err)
		http.Error(w, "failed to load suggestions", http.StatusInternalServerError)
		return
	}

	ranked := suggest.Rank(slots, duration, free, existing, buffer, stats.NoShowByHour(history), limit)
	items := make([]suggestionItem, 0, len(ranked))
	for _, s := range ranked {
		items = append(items, suggestionItem{
			StartTime: s.Start.UTC().Format(time.RFC3339),
			EndTime:   s.Start.Add(duration).UTC().Format(time.RFC3339),
			Score:     s.Score,
		})
	}
	writeJSON(w, http.StatusOK, items)
}
