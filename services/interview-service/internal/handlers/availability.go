package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/availability"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/conflict"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/schederr"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/storage"
)

// maxDateRangeDays bounds availableDates scans.
const maxDateRangeDays = 92

type AvailabilityHandler struct {
	deps   schedulingDeps
	logger *slog.Logger
}

func NewAvailabilityHandler(workingHours *storage.WorkingHoursRepository, timeOff *storage.TimeOffRepository, interviews *storage.InterviewRepository, logger *slog.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		deps:   schedulingDeps{workingHours: workingHours, timeOff: timeOff, interviews: interviews},
		logger: logger,
	}
}

type conflictCheckResponse struct {
	Conflict    bool     `json:"conflict"`
	Code        string   `json:"code,omitempty"`
	Message     string   `json:"message,omitempty"`
	ConflictIDs []string `json:"conflicting_interview_ids,omitempty"`
}

// Check is the standalone ACCEPT/REJECT endpoint. It is read-only; a real
// booking re-runs the same evaluation inside the insert transaction.
func (h *AvailabilityHandler) Check(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	recruiterID := strings.TrimSpace(q.Get("recruiter_id"))
	candidateID := strings.TrimSpace(q.Get("candidate_id"))
	if recruiterID == "" || candidateID == "" {
		http.Error(w, "recruiter_id and candidate_id required", http.StatusBadRequest)
		return
	}
	start, err := time.Parse(time.RFC3339, strings.TrimSpace(q.Get("start")))
	if err != nil {
		http.Error(w, "start required as RFC3339", http.StatusBadRequest)
		return
	}
	durationMins, err := strconv.Atoi(strings.TrimSpace(q.Get("duration_minutes")))
	if err != nil {
		http.Error(w, "duration_minutes required", http.StatusBadRequest)
		return
	}

	verdict, err := h.evaluate(r, recruiterID, candidateID, start.UTC(), durationMins, "")
	if err != nil {
		h.logger.Error("conflict check failed", "err", err)
		http.Error(w, "failed to check availability", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, verdict)
}

// evaluate runs the full detector against current state and folds the result
// into the wire shape shared by Check and the schedule flow.
func (h *AvailabilityHandler) evaluate(r *http.Request, recruiterID, candidateID string, start time.Time, durationMins int, excludeID string) (conflictCheckResponse, error) {
	ctx := r.Context()
	day, _ := dayBounds(start)
	cfg, free, existing, err := h.deps.dayContext(ctx, h.deps.interviews.Pool(), recruiterID, day)
	if err != nil {
		return conflictCheckResponse{}, err
	}

	duration := time.Duration(durationMins) * time.Minute
	candidateBusy, err := h.deps.interviews.ListActiveByCandidate(ctx, h.deps.interviews.Pool(), candidateID, start, start.Add(duration))
	if err != nil {
		return conflictCheckResponse{}, err
	}

	verdictErr := conflict.Evaluate(conflict.Proposal{
		Now:           time.Now().UTC(),
		Start:         start,
		Duration:      duration,
		Free:          free,
		Existing:      existing,
		CandidateBusy: bookingsOf(candidateBusy),
		Buffer:        time.Duration(cfg.BufferMinutes) * time.Minute,
		MaxPerDay:     cfg.MaxInterviewsPerDay,
		ExcludeID:     excludeID,
	})
	if verdictErr == nil {
		return conflictCheckResponse{Conflict: false}, nil
	}
	e, ok := schederr.As(verdictErr)
	if !ok {
		return conflictCheckResponse{}, verdictErr
	}
	return conflictCheckResponse{
		Conflict:    true,
		Code:        e.Code,
		Message:     e.Message,
		ConflictIDs: e.ConflictIDs,
	}, nil
}

type slotItem struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func (h *AvailabilityHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	recruiterID, day, duration, step, ok := h.parseSlotQuery(w, r)
	if !ok {
		return
	}

	slots, err := h.slotsForDay(r, recruiterID, day, duration, step)
	if err != nil {
		h.logger.Error("slot enumeration failed", "err", err)
		http.Error(w, "failed to load slots", http.StatusInternalServerError)
		return
	}

	items := make([]slotItem, 0, len(slots))
	for _, s := range slots {
		items = append(items, slotItem{
			StartTime: s.UTC().Format(time.RFC3339),
			EndTime:   s.Add(duration).UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *AvailabilityHandler) Dates(w http.ResponseWriter, r *http.Request) {
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
	duration, step, ok := parseDurationParams(w, q.Get("duration_minutes"), q.Get("granularity_minutes"))
	if !ok {
		return
	}

	var dates []string
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		slots, err := h.slotsForDay(r, recruiterID, day, duration, step)
		if err != nil {
			h.logger.Error("slot enumeration failed", "err", err, "date", day.Format("2006-01-02"))
			http.Error(w, "failed to load available dates", http.StatusInternalServerError)
			return
		}
		if len(slots) > 0 {
			dates = append(dates, day.Format("2006-01-02"))
		}
	}
	if dates == nil {
		dates = []string{}
	}
	writeJSON(w, http.StatusOK, dates)
}

// slotsForDay enumerates offerable starts applying the cap, buffer and
// overlap rules. Candidate double-booking is not considered here; it is
// per-candidate and checked at booking time.
func (h *AvailabilityHandler) slotsForDay(r *http.Request, recruiterID string, day time.Time, duration, step time.Duration) ([]time.Time, error) {
	cfg, free, existing, err := h.deps.dayContext(r.Context(), h.deps.interviews.Pool(), recruiterID, day)
	if err != nil {
		return nil, err
	}
	if cfg.MaxInterviewsPerDay > 0 && len(existing) >= cfg.MaxInterviewsPerDay {
		return nil, nil
	}
	busy := paddedBusy(existing, time.Duration(cfg.BufferMinutes)*time.Minute)
	return availability.Slots(free, duration, step, busy, time.Now().UTC()), nil
}

func (h *AvailabilityHandler) parseSlotQuery(w http.ResponseWriter, r *http.Request) (string, time.Time, time.Duration, time.Duration, bool) {
	q := r.URL.Query()
	recruiterID := strings.TrimSpace(q.Get("recruiter_id"))
	if recruiterID == "" {
		http.Error(w, "recruiter_id required", http.StatusBadRequest)
		return "", time.Time{}, 0, 0, false
	}
	day, ok := parseDay(q.Get("date"))
	if !ok {
		http.Error(w, "date required as YYYY-MM-DD", http.StatusBadRequest)
		return "", time.Time{}, 0, 0, false
	}
	duration, step, ok := parseDurationParams(w, q.Get("duration_minutes"), q.Get("granularity_minutes"))
	if !ok {
		return "", time.Time{}, 0, 0, false
	}
	return recruiterID, day, duration, step, true
}

func parseDurationParams(w http.ResponseWriter, durationRaw, stepRaw string) (time.Duration, time.Duration, bool) {
	durationMins, err := strconv.Atoi(strings.TrimSpace(durationRaw))
	if err != nil || durationMins <= 0 || time.Duration(durationMins)*time.Minute > conflict.MaxDuration {
		http.Error(w, "duration_minutes must be between 1 and 480", http.StatusBadRequest)
		return 0, 0, false
	}
	step := availability.DefaultGranularity
	if raw := strings.TrimSpace(stepRaw); raw != "" {
		stepMins, err := strconv.Atoi(raw)
		if err != nil || stepMins <= 0 || stepMins > 120 {
			http.Error(w, "granularity_minutes must be between 1 and 120", http.StatusBadRequest)
			return 0, 0, false
		}
		step = time.Duration(stepMins) * time.Minute
	}
	return time.Duration(durationMins) * time.Minute, step, true
}
