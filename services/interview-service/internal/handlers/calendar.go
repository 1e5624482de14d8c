package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/availability"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/storage"
)

type CalendarHandler struct {
	deps   schedulingDeps
	logger *slog.Logger
}

func NewCalendarHandler(workingHours *storage.WorkingHoursRepository, timeOff *storage.TimeOffRepository, interviews *storage.InterviewRepository, logger *slog.Logger) *CalendarHandler {
	return &CalendarHandler{
		deps:   schedulingDeps{workingHours: workingHours, timeOff: timeOff, interviews: interviews},
		logger: logger,
	}
}

type intervalItem struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func intervalItems(intervals []availability.Interval) []intervalItem {
	out := make([]intervalItem, 0, len(intervals))
	for _, iv := range intervals {
		out = append(out, intervalItem{
			Start: iv.Start.UTC().Format(time.RFC3339),
			End:   iv.End.UTC().Format(time.RFC3339),
		})
	}
	return out
}

type dayView struct {
	Date          string          `json:"date"`
	IsWorkingDay  bool            `json:"is_working_day"`
	FreeIntervals []intervalItem  `json:"free_intervals"`
	Interviews    []interviewItem `json:"interviews"`
}

// Daily shows one recruiter-day: booked interviews plus what remains free
// after lunch, time off and the existing bookings.
func (h *CalendarHandler) Daily(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	recruiterID := strings.TrimSpace(r.URL.Query().Get("recruiter_id"))
	if recruiterID == "" {
		http.Error(w, "recruiter_id required", http.StatusBadRequest)
		return
	}
	day, ok := parseDay(r.URL.Query().Get("date"))
	if !ok {
		http.Error(w, "date required as YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	view, err := h.dayView(r, recruiterID, day)
	if err != nil {
		h.logger.Error("daily view failed", "err", err)
		http.Error(w, "failed to load calendar", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CalendarHandler) dayView(r *http.Request, recruiterID string, day time.Time) (dayView, error) {
	ctx := r.Context()
	cfg, free, _, err := h.deps.dayContext(ctx, h.deps.interviews.Pool(), recruiterID, day)
	if err != nil {
		return dayView{}, err
	}

	dayStart, dayEnd := dayBounds(day)
	interviews, err := h.deps.interviews.ListByRecruiterRange(ctx, recruiterID, dayStart, dayEnd)
	if err != nil {
		return dayView{}, err
	}

	// Remaining free time excludes the active bookings.
	remaining := free
	for _, iv := range interviews {
		if iv.Status.IsTerminal() {
			continue
		}
		remaining = availability.Subtract(remaining, availability.Interval{Start: iv.ScheduledAt, End: iv.EndsAt()})
	}

	items := make([]interviewItem, 0, len(interviews))
	for _, iv := range interviews {
		items = append(items, interviewPayload(iv))
	}
	return dayView{
		Date:          day.Format("2006-01-02"),
		IsWorkingDay:  cfg.IsWorkingDay && len(free) > 0,
		FreeIntervals: intervalItems(remaining),
		Interviews:    items,
	}, nil
}

type weekView struct {
	WeekStart string    `json:"week_start"`
	Days      []dayView `json:"days"`
}

// Weekly renders the Monday-through-Sunday grid containing the given date.
func (h *CalendarHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	recruiterID := strings.TrimSpace(r.URL.Query().Get("recruiter_id"))
	if recruiterID == "" {
		http.Error(w, "recruiter_id required", http.StatusBadRequest)
		return
	}
	day, ok := parseDay(r.URL.Query().Get("date"))
	if !ok {
		http.Error(w, "date required as YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	monday := startOfWeek(day)
	view := weekView{WeekStart: monday.Format("2006-01-02"), Days: make([]dayView, 0, 7)}
	for i := 0; i < 7; i++ {
		dv, err := h.dayView(r, recruiterID, monday.AddDate(0, 0, i))
		if err != nil {
			h.logger.Error("weekly view failed", "err", err)
			http.Error(w, "failed to load calendar", http.StatusInternalServerError)
			return
		}
		view.Days = append(view.Days, dv)
	}
	writeJSON(w, http.StatusOK, view)
}

func startOfWeek(day time.Time) time.Time {
	day = day.UTC()
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

type monthView struct {
	Month       string         `json:"month"`
	CountsByDay map[string]int `json:"counts_by_day"`
}

// Monthly returns booking counts per day, enough for a density overview
// without loading every row.
func (h *CalendarHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	recruiterID := strings.TrimSpace(r.URL.Query().Get("recruiter_id"))
	if recruiterID == "" {
		http.Error(w, "recruiter_id required", http.StatusBadRequest)
		return
	}
	month, err := time.Parse("2006-01", strings.TrimSpace(r.URL.Query().Get("month")))
	if err != nil {
		http.Error(w, "month required as YYYY-MM", http.StatusBadRequest)
		return
	}

	from := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	counts, err := h.deps.interviews.CountByDay(r.Context(), recruiterID, from, to)
	if err != nil {
		h.logger.Error("monthly view failed", "err", err)
		http.Error(w, "failed to load calendar", http.StatusInternalServerError)
		return
	}
	if counts == nil {
		counts = map[string]int{}
	}
	writeJSON(w, http.StatusOK, monthView{Month: from.Format("2006-01"), CountsByDay: counts})
}

// Candidate lists a candidate's upcoming non-terminal interviews.
func (h *CalendarHandler) Candidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	candidateID := strings.TrimSpace(r.URL.Query().Get("candidate_id"))
	if candidateID == "" {
		http.Error(w, "candidate_id required", http.StatusBadRequest)
		return
	}

	from, to, err := candidateRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"), time.Now().UTC())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	interviews, err := h.deps.interviews.ListActiveByCandidate(r.Context(), h.deps.interviews.Pool(), candidateID, from, to)
	if err != nil {
		h.logger.Error("candidate view failed", "err", err)
		http.Error(w, "failed to load calendar", http.StatusInternalServerError)
		return
	}
	items := make([]interviewItem, 0, len(interviews))
	for _, iv := range interviews {
		items = append(items, interviewPayload(iv))
	}
	writeJSON(w, http.StatusOK, items)
}

// candidateRange resolves the optional from/to query dates. With neither set
// the window runs from now to three months out; an explicit from shifts the
// horizon, an explicit to closes the window at the end of that day.
func candidateRange(fromRaw, toRaw string, now time.Time) (time.Time, time.Time, error) {
	from, to := now, now.AddDate(0, 3, 0)
	if raw := strings.TrimSpace(fromRaw); raw != "" {
		day, ok := parseDay(raw)
		if !ok {
			return time.Time{}, time.Time{}, errors.New("from must be YYYY-MM-DD")
		}
		from = day
		to = from.AddDate(0, 3, 0)
	}
	if raw := strings.TrimSpace(toRaw); raw != "" {
		day, ok := parseDay(raw)
		if !ok {
			return time.Time{}, time.Time{}, errors.New("to must be YYYY-MM-DD")
		}
		to = day.AddDate(0, 0, 1)
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, errors.New("to must be after from")
	}
	return from, to, nil
}
