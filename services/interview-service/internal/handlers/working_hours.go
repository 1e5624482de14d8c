package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/model"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/schederr"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/storage"
)

type WorkingHoursHandler struct {
	repo   *storage.WorkingHoursRepository
	logger *slog.Logger
}

func NewWorkingHoursHandler(repo *storage.WorkingHoursRepository, logger *slog.Logger) *WorkingHoursHandler {
	return &WorkingHoursHandler{repo: repo, logger: logger}
}

type dayConfigPayload struct {
	Weekday             int    `json:"weekday"`
	IsWorkingDay        bool   `json:"is_working_day"`
	StartTime           string `json:"start_time,omitempty"` // "HH:MM"
	EndTime             string `json:"end_time,omitempty"`
	LunchBreakStart     string `json:"lunch_break_start,omitempty"`
	LunchBreakEnd       string `json:"lunch_break_end,omitempty"`
	BufferMinutes       *int   `json:"buffer_minutes,omitempty"`
	MaxInterviewsPerDay *int   `json:"max_interviews_per_day,omitempty"`
}

type setDayRequest struct {
	RecruiterID string           `json:"recruiter_id"`
	Day         dayConfigPayload `json:"day"`
}

type setWeekRequest struct {
	RecruiterID        string             `json:"recruiter_id"`
	Days               []dayConfigPayload `json:"days"`
	ReplaceUnspecified bool               `json:"replace_unspecified"`
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(s string) (int, bool) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

func formatClock(minute int) string {
	return time.Date(2000, 1, 1, minute/60, minute%60, 0, 0, time.UTC).Format("15:04")
}

func (p dayConfigPayload) toConfig(recruiterID string) (model.WorkingHoursConfig, error) {
	if p.Weekday < 0 || p.Weekday > 6 {
		return model.WorkingHoursConfig{}, schederr.Invalid(schederr.CodeInvalidInput, "weekday must be 0 (Sunday) through 6 (Saturday)")
	}
	cfg := model.NonWorkingDay(recruiterID, time.Weekday(p.Weekday))
	if p.BufferMinutes != nil {
		if *p.BufferMinutes < 0 {
			return model.WorkingHoursConfig{}, schederr.Invalid(schederr.CodeInvalidInput, "buffer_minutes must not be negative")
		}
		cfg.BufferMinutes = *p.BufferMinutes
	}
	if p.MaxInterviewsPerDay != nil {
		if *p.MaxInterviewsPerDay < 1 {
			return model.WorkingHoursConfig{}, schederr.Invalid(schederr.CodeInvalidInput, "max_interviews_per_day must be at least 1")
		}
		cfg.MaxInterviewsPerDay = *p.MaxInterviewsPerDay
	}
	if !p.IsWorkingDay {
		return cfg, nil
	}

	start, okS := parseClock(p.StartTime)
	end, okE := parseClock(p.EndTime)
	if !okS || !okE {
		return model.WorkingHoursConfig{}, schederr.Invalid(schederr.CodeInvalidInput, "start_time and end_time are required as HH:MM for a working day")
	}
	if end <= start {
		return model.WorkingHoursConfig{}, schederr.Invalid(schederr.CodeInvalidInput, "end_time must be after start_time")
	}
	cfg.IsWorkingDay = true
	cfg.StartMinute = start
	cfg.EndMinute = end

	if p.LunchBreakStart != "" || p.LunchBreakEnd != "" {
		ls, okLS := parseClock(p.LunchBreakStart)
		le, okLE := parseClock(p.LunchBreakEnd)
		if !okLS || !okLE || le <= ls {
			return model.WorkingHoursConfig{}, schederr.Invalid(schederr.CodeInvalidInput, "lunch break requires valid HH:MM start and end with start before end")
		}
		if ls < start || le > end {
			return model.WorkingHoursConfig{}, schederr.Invalid(schederr.CodeInvalidInput, "lunch break must lie within working hours")
		}
		cfg.LunchStartMinute = ls
		cfg.LunchEndMinute = le
	}
	return cfg, nil
}

func (h *WorkingHoursHandler) SetDay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut && r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req setDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.RecruiterID = strings.TrimSpace(req.RecruiterID)
	if req.RecruiterID == "" {
		http.Error(w, "recruiter_id required", http.StatusBadRequest)
		return
	}

	cfg, err := req.Day.toConfig(req.RecruiterID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.repo.Upsert(r.Context(), cfg); err != nil {
		h.logger.Error("working hours upsert failed", "err", err)
		http.Error(w, "failed to save working hours", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, configPayload(cfg))
}

func (h *WorkingHoursHandler) SetWeek(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut && r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req setWeekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.RecruiterID = strings.TrimSpace(req.RecruiterID)
	if req.RecruiterID == "" || len(req.Days) == 0 {
		http.Error(w, "recruiter_id and days required", http.StatusBadRequest)
		return
	}

	configs := make([]model.WorkingHoursConfig, 0, len(req.Days))
	seen := map[int]bool{}
	for _, d := range req.Days {
		if seen[d.Weekday] {
			writeDomainError(w, schederr.Invalid(schederr.CodeInvalidInput, "duplicate weekday %d in batch", d.Weekday))
			return
		}
		seen[d.Weekday] = true
		cfg, err := d.toConfig(req.RecruiterID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		configs = append(configs, cfg)
	}

	if err := h.repo.UpsertBatch(r.Context(), req.RecruiterID, configs, req.ReplaceUnspecified); err != nil {
		h.logger.Error("working hours batch upsert failed", "err", err)
		http.Error(w, "failed to save working hours", http.StatusInternalServerError)
		return
	}

	week, err := h.repo.ListWeek(r.Context(), req.RecruiterID)
	if err != nil {
		http.Error(w, "failed to load working hours", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, weekPayload(week))
}

func (h *WorkingHoursHandler) GetWeek(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	recruiterID := strings.TrimSpace(r.URL.Query().Get("recruiter_id"))
	if recruiterID == "" {
		http.Error(w, "recruiter_id required", http.StatusBadRequest)
		return
	}

	week, err := h.repo.ListWeek(r.Context(), recruiterID)
	if err != nil {
		h.logger.Error("working hours load failed", "err", err)
		http.Error(w, "failed to load working hours", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, weekPayload(week))
}

type dayConfigItem struct {
	Weekday             int    `json:"weekday"`
	IsWorkingDay        bool   `json:"is_working_day"`
	StartTime           string `json:"start_time,omitempty"`
	EndTime             string `json:"end_time,omitempty"`
	LunchBreakStart     string `json:"lunch_break_start,omitempty"`
	LunchBreakEnd       string `json:"lunch_break_end,omitempty"`
	BufferMinutes       int    `json:"buffer_minutes"`
	MaxInterviewsPerDay int    `json:"max_interviews_per_day"`
}

func configPayload(cfg model.WorkingHoursConfig) dayConfigItem {
	item := dayConfigItem{
		Weekday:             int(cfg.Weekday),
		IsWorkingDay:        cfg.IsWorkingDay,
		BufferMinutes:       cfg.BufferMinutes,
		MaxInterviewsPerDay: cfg.MaxInterviewsPerDay,
	}
	if cfg.IsWorkingDay {
		item.StartTime = formatClock(cfg.StartMinute)
		item.EndTime = formatClock(cfg.EndMinute)
		if cfg.HasLunchBreak() {
			item.LunchBreakStart = formatClock(cfg.LunchStartMinute)
			item.LunchBreakEnd = formatClock(cfg.LunchEndMinute)
		}
	}
	return item
}

func weekPayload(week []model.WorkingHoursConfig) []dayConfigItem {
	out := make([]dayConfigItem, 0, len(week))
	for _, cfg := range week {
		out = append(out, configPayload(cfg))
	}
	return out
}
