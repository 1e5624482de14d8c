package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tanvir-ahmed/hirecal/libs/db"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/model"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/outbox"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/storage"
)

type TimeOffHandler struct {
	repo       *storage.TimeOffRepository
	outboxRepo *outbox.Repository
	pool       *db.Pool
	logger     *slog.Logger
}

func NewTimeOffHandler(repo *storage.TimeOffRepository, outboxRepo *outbox.Repository, pool *db.Pool, logger *slog.Logger) *TimeOffHandler {
	return &TimeOffHandler{repo: repo, outboxRepo: outboxRepo, pool: pool, logger: logger}
}

type requestTimeOffRequest struct {
	RecruiterID string `json:"recruiter_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Type        string `json:"type"`
	Reason      string `json:"reason"`
}

type timeOffItem struct {
	ID          string `json:"id"`
	RecruiterID string `json:"recruiter_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Type        string `json:"type"`
	Reason      string `json:"reason,omitempty"`
	IsApproved  bool   `json:"is_approved"`
	ApprovedBy  string `json:"approved_by,omitempty"`
	CancelledAt string `json:"cancelled_at,omitempty"`
}

func timeOffPayload(t model.TimeOff) timeOffItem {
	item := timeOffItem{
		ID:          t.ID,
		RecruiterID: t.RecruiterID,
		StartDate:   t.StartDate.UTC().Format("2006-01-02"),
		EndDate:     t.EndDate.UTC().Format("2006-01-02"),
		Type:        string(t.Type),
		Reason:      t.Reason,
		IsApproved:  t.IsApproved,
		ApprovedBy:  t.ApprovedBy,
	}
	if t.CancelledAt != nil {
		item.CancelledAt = t.CancelledAt.UTC().Format(time.RFC3339)
	}
	return item
}

func (h *TimeOffHandler) Request(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req requestTimeOffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.RecruiterID = strings.TrimSpace(req.RecruiterID)
	if req.RecruiterID == "" {
		http.Error(w, "recruiter_id required", http.StatusBadRequest)
		return
	}
	start, okS := parseDay(req.StartDate)
	end, okE := parseDay(req.EndDate)
	if !okS || !okE {
		http.Error(w, "start_date and end_date required as YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if end.Before(start) {
		http.Error(w, "end_date must not be before start_date", http.StatusBadRequest)
		return
	}
	toType, ok := model.ParseTimeOffType(strings.TrimSpace(req.Type))
	if !ok {
		http.Error(w, "type must be one of VACATION, SICK_LEAVE, HOLIDAY, OTHER", http.StatusBadRequest)
		return
	}

	entry := model.TimeOff{
		RecruiterID: req.RecruiterID,
		StartDate:   start,
		EndDate:     end,
		Type:        toType,
		Reason:      strings.TrimSpace(req.Reason),
	}
	id, err := h.repo.Create(r.Context(), entry)
	if err != nil {
		h.logger.Error("time off create failed", "err", err)
		http.Error(w, "failed to create time off request", http.StatusInternalServerError)
		return
	}
	entry.ID = id

	h.emit(r, outbox.EventTimeOffRequested, entry)
	writeJSON(w, http.StatusCreated, timeOffPayload(entry))
}

func (h *TimeOffHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	recruiterID := strings.TrimSpace(r.URL.Query().Get("recruiter_id"))
	if recruiterID == "" {
		http.Error(w, "recruiter_id required", http.StatusBadRequest)
		return
	}
	filter := storage.TimeOffFilter{}
	switch strings.TrimSpace(r.URL.Query().Get("approval")) {
	case "approved":
		filter.ApprovedOnly = true
	case "pending":
		filter.PendingOnly = true
	case "":
	default:
		http.Error(w, "approval must be approved or pending", http.StatusBadRequest)
		return
	}

	entries, err := h.repo.List(r.Context(), recruiterID, filter)
	if err != nil {
		h.logger.Error("time off list failed", "err", err)
		http.Error(w, "failed to list time off", http.StatusInternalServerError)
		return
	}
	items := make([]timeOffItem, 0, len(entries))
	for _, t := range entries {
		items = append(items, timeOffPayload(t))
	}
	writeJSON(w, http.StatusOK, items)
}

type approveTimeOffRequest struct {
	TimeOffID string `json:"time_off_id"`
}

func (h *TimeOffHandler) Approve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Approval is an admin action; the gateway authenticates and forwards the
	// admin identity.
	adminID := strings.TrimSpace(r.Header.Get("X-Admin-Id"))
	if adminID == "" {
		http.Error(w, "admin identity required", http.StatusForbidden)
		return
	}

	var req approveTimeOffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.TimeOffID = strings.TrimSpace(req.TimeOffID)
	if req.TimeOffID == "" {
		http.Error(w, "time_off_id required", http.StatusBadRequest)
		return
	}

	entry, err := h.repo.Approve(r.Context(), req.TimeOffID, adminID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "time off not found", http.StatusNotFound)
			return
		}
		h.logger.Error("time off approve failed", "err", err)
		http.Error(w, "failed to approve time off", http.StatusInternalServerError)
		return
	}

	h.emit(r, outbox.EventTimeOffApproved, entry)
	writeJSON(w, http.StatusOK, timeOffPayload(entry))
}

type cancelTimeOffRequest struct {
	TimeOffID string `json:"time_off_id"`
}

func (h *TimeOffHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req cancelTimeOffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.TimeOffID = strings.TrimSpace(req.TimeOffID)
	if req.TimeOffID == "" {
		http.Error(w, "time_off_id required", http.StatusBadRequest)
		return
	}

	entry, err := h.repo.Cancel(r.Context(), req.TimeOffID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "time off not found", http.StatusNotFound)
			return
		}
		h.logger.Error("time off cancel failed", "err", err)
		http.Error(w, "failed to cancel time off", http.StatusInternalServerError)
		return
	}

	h.emit(r, outbox.EventTimeOffCancelled, entry)
	writeJSON(w, http.StatusOK, timeOffPayload(entry))
}

// emit writes a time-off event through the outbox in its own short
// transaction. Time-off rows are already committed at this point.
func (h *TimeOffHandler) emit(r *http.Request, eventType string, entry model.TimeOff) {
	payload, err := json.Marshal(map[string]any{
		"time_off_id":  entry.ID,
		"recruiter_id": entry.RecruiterID,
		"start_date":   entry.StartDate.UTC().Format("2006-01-02"),
		"end_date":     entry.EndDate.UTC().Format("2006-01-02"),
		"type":         string(entry.Type),
		"is_approved":  entry.IsApproved,
	})
	if err != nil {
		h.logger.Error("failed to build time off event", "err", err)
		return
	}
	err = h.pool.WithinTx(r.Context(), func(tx pgx.Tx) error {
		return h.outboxRepo.Insert(r.Context(), tx, outbox.Event{
			AggregateType: "time_off",
			AggregateID:   entry.ID,
			EventType:     eventType,
			Payload:       payload,
		})
	})
	if err != nil {
		h.logger.Error("failed to enqueue time off event", "err", err)
	}
}
