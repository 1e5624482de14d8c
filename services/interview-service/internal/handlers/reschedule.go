package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/lifecycle"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/model"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/outbox"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/schederr"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/storage"
)

type rescheduleRequest struct {
	InterviewID        string `json:"interview_id"`
	NewScheduledAt     string `json:"new_scheduled_at"`
	NewDurationMinutes int    `json:"new_duration_minutes"`
	Reason             string `json:"reason"`
	RequestedBy        string `json:"requested_by"`
}

// Reschedule moves an interview. A recruiter-initiated request applies
// immediately; a candidate-initiated one is staged as a PENDING consent
// request for the recruiter to respond to. Both require the lead-time guard
// on the current slot.
func (h *InterviewHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.InterviewID = strings.TrimSpace(req.InterviewID)
	if req.InterviewID == "" {
		http.Error(w, "interview_id required", http.StatusBadRequest)
		return
	}
	newStart, err := time.Parse(time.RFC3339, strings.TrimSpace(req.NewScheduledAt))
	if err != nil {
		http.Error(w, "new_scheduled_at must be RFC3339", http.StatusBadRequest)
		return
	}
	party, ok := model.ParseRescheduleParty(strings.TrimSpace(req.RequestedBy))
	if !ok {
		http.Error(w, "requested_by must be RECRUITER or CANDIDATE", http.StatusBadRequest)
		return
	}
	if req.NewDurationMinutes < 0 {
		http.Error(w, "new_duration_minutes must be positive", http.StatusBadRequest)
		return
	}

	switch party {
	case model.ByRecruiter:
		h.rescheduleNow(w, r, req, newStart.UTC())
	case model.ByCandidate:
		h.stageReschedule(w, r, req, newStart.UTC())
	}
}

func (h *InterviewHandler) rescheduleNow(w http.ResponseWriter, r *http.Request, req rescheduleRequest, newStart time.Time) {
	authorize := actorRecruiter(r)
	var result model.Interview
	err := h.pool.WithinTx(r.Context(), func(tx pgx.Tx) error {
		ctx := r.Context()
		iv, err := h.lockForReschedule(ctx, tx, req.InterviewID, authorize, newStart)
		if err != nil {
			return err
		}
		duration := iv.DurationMinutes
		if req.NewDurationMinutes > 0 {
			duration = req.NewDurationMinutes
		}
		result, err = h.swap(ctx, tx, iv, newStart, duration)
		return err
	})
	if err != nil {
		h.writeScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, interviewPayload(result))
}

func (h *InterviewHandler) stageReschedule(w http.ResponseWriter, r *http.Request, req rescheduleRequest, newStart time.Time) {
	authorize := actorCandidate(r)
	var result model.RescheduleRequest
	err := h.pool.WithinTx(r.Context(), func(tx pgx.Tx) error {
		ctx := r.Context()
		iv, err := h.deps.interviews.GetForUpdate(ctx, tx, req.InterviewID)
		if err != nil {
			if storage.IsNotFound(err) {
				return schederr.NotFound("interview %s not found", req.InterviewID)
			}
			return err
		}
		if err := authorize(iv); err != nil {
			return err
		}
		if err := lifecycle.GuardReschedule(iv.Status, time.Now().UTC(), iv.ScheduledAt); err != nil {
			return err
		}

		result = model.RescheduleRequest{
			InterviewID: iv.ID,
			RequestedBy: model.ByCandidate,
			NewDate:     newStart,
			Reason:      strings.TrimSpace(req.Reason),
			Status:      model.ReschedulePending,
		}
		id, err := h.reschedules.Create(ctx, tx, result)
		if err != nil {
			return err
		}
		result.ID = id
		result.CreatedAt = time.Now().UTC()

		payload, err := json.Marshal(reschedulePayload(result))
		if err != nil {
			return err
		}
		return h.outboxRepo.Insert(ctx, tx, outbox.Event{
			AggregateType: "interview",
			AggregateID:   iv.ID,
			EventType:     outbox.EventRescheduleRequested,
			Payload:       payload,
		})
	})
	if err != nil {
		if _, ok := schederr.As(err); ok {
			writeDomainError(w, err)
			return
		}
		h.logger.Error("reschedule request failed", "err", err, "interview_id", req.InterviewID)
		http.Error(w, "failed to stage reschedule request", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, reschedulePayload(result))
}

// lockForReschedule takes the participant-day locks for the target day,
// loads the row FOR UPDATE and runs authorization plus the lead-time guard.
func (h *InterviewHandler) lockForReschedule(ctx context.Context, tx pgx.Tx, interviewID string, authorize func(model.Interview) error, newStart time.Time) (model.Interview, error) {
	iv, err := h.deps.interviews.GetForUpdate(ctx, tx, interviewID)
	if err != nil {
		if storage.IsNotFound(err) {
			return model.Interview{}, schederr.NotFound("interview %s not found", interviewID)
		}
		return model.Interview{}, err
	}
	if err := authorize(iv); err != nil {
		return model.Interview{}, err
	}
	if err := lifecycle.GuardReschedule(iv.Status, time.Now().UTC(), iv.ScheduledAt); err != nil {
		return model.Interview{}, err
	}

	day, _ := dayBounds(newStart)
	if err := h.deps.interviews.LockSchedulingKeys(ctx, tx,
		schedKey("recruiter", iv.RecruiterID, day),
		schedKey("candidate", iv.CandidateID, day),
	); err != nil {
		return model.Interview{}, err
	}
	return iv, nil
}

// swap retires the old row and inserts its replacement in one transaction.
// The old row goes terminal before the insert so the active-application
// index and the interval exclusion never see both rows at once.
func (h *InterviewHandler) swap(ctx context.Context, tx pgx.Tx, old model.Interview, newStart time.Time, durationMinutes int) (model.Interview, error) {
	if err := h.checkConflicts(ctx, tx, old.RecruiterID, old.CandidateID, newStart,
		time.Duration(durationMinutes)*time.Minute, old.ID); err != nil {
		return model.Interview{}, err
	}

	newID := uuid.NewString()
	if err := h.deps.interviews.MarkRescheduled(ctx, tx, old.ID, newID); err != nil {
		return model.Interview{}, err
	}
	if err := h.reschedules.InvalidatePending(ctx, tx, old.ID); err != nil {
		return model.Interview{}, err
	}

	replacement := old
	replacement.ID = newID
	replacement.ScheduledAt = newStart
	replacement.DurationMinutes = durationMinutes
	replacement.Status = model.StatusScheduled
	replacement.Outcome = nil
	replacement.OutcomeNotes = ""
	replacement.CancelReason = ""
	replacement.RescheduledTo = ""
	if _, err := h.deps.interviews.Create(ctx, tx, &replacement); err != nil {
		return model.Interview{}, err
	}

	stored, err := h.deps.interviews.Get(ctx, tx, newID)
	if err != nil {
		return model.Interview{}, err
	}
	if err := h.emit(ctx, tx, outbox.EventInterviewRescheduled, stored); err != nil {
		return model.Interview{}, err
	}
	return stored, nil
}

type rescheduleItem struct {
	ID            string `json:"id"`
	InterviewID   string `json:"interview_id"`
	RequestedBy   string `json:"requested_by"`
	NewDate       string `json:"new_date"`
	Reason        string `json:"reason,omitempty"`
	ResponseNotes string `json:"response_notes,omitempty"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
	RespondedAt   string `json:"responded_at,omitempty"`
}

func reschedulePayload(rr model.RescheduleRequest) rescheduleItem {
	item := rescheduleItem{
		ID:            rr.ID,
		InterviewID:   rr.InterviewID,
		RequestedBy:   string(rr.RequestedBy),
		NewDate:       rr.NewDate.UTC().Format(time.RFC3339),
		Reason:        rr.Reason,
		ResponseNotes: rr.ResponseNotes,
		Status:        string(rr.Status),
		CreatedAt:     rr.CreatedAt.UTC().Format(time.RFC3339),
	}
	if rr.RespondedAt != nil {
		item.RespondedAt = rr.RespondedAt.UTC().Format(time.RFC3339)
	}
	return item
}

type respondRescheduleRequest struct {
	RequestID string `json:"request_id"`
	Approve   bool   `json:"approve"`
	Notes     string `json:"notes"`
}

type respondRescheduleResponse struct {
	Request   rescheduleItem `json:"request"`
	Interview *interviewItem `json:"interview,omitempty"`
}

// RespondReschedule lets the recruiter approve or decline a pending
// candidate request. Approval re-runs the full conflict check at the
// requested time and performs the swap atomically; a slot gone stale since
// the request rejects with the usual conflict codes and the request stays
// pending.
func (h *InterviewHandler) RespondReschedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req respondRescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.RequestID = strings.TrimSpace(req.RequestID)
	if req.RequestID == "" {
		http.Error(w, "request_id required", http.StatusBadRequest)
		return
	}

	authorize := actorRecruiter(r)
	var resp respondRescheduleResponse
	err := h.pool.WithinTx(r.Context(), func(tx pgx.Tx) error {
		ctx := r.Context()
		rr, err := h.reschedules.GetForUpdate(ctx, tx, req.RequestID)
		if err != nil {
			if storage.IsNotFound(err) {
				return schederr.NotFound("reschedule request %s not found", req.RequestID)
			}
			return err
		}
		if rr.Status != model.ReschedulePending {
			return schederr.Transition(schederr.CodeInvalidTransition,
				"reschedule request is %s, only PENDING requests accept a response", rr.Status)
		}

		if !req.Approve {
			iv, err := h.deps.interviews.Get(ctx, tx, rr.InterviewID)
			if err != nil {
				return err
			}
			if err := authorize(iv); err != nil {
				return err
			}
			if err := h.reschedules.Respond(ctx, tx, rr.ID, model.RescheduleDeclined, strings.TrimSpace(req.Notes)); err != nil {
				return err
			}
			rr.Status = model.RescheduleDeclined
			rr.ResponseNotes = strings.TrimSpace(req.Notes)
			resp = respondRescheduleResponse{Request: reschedulePayload(rr)}
			return h.emitRescheduleResponse(ctx, tx, rr)
		}

		iv, err := h.lockForReschedule(ctx, tx, rr.InterviewID, authorize, rr.NewDate)
		if err != nil {
			return err
		}
		moved, err := h.swap(ctx, tx, iv, rr.NewDate, iv.DurationMinutes)
		if err != nil {
			return err
		}
		// InvalidatePending inside swap flipped this row too; the explicit
		// response overrides it.
		if err := h.reschedules.Respond(ctx, tx, rr.ID, model.RescheduleApproved, strings.TrimSpace(req.Notes)); err != nil {
			return err
		}
		rr.Status = model.RescheduleApproved
		rr.ResponseNotes = strings.TrimSpace(req.Notes)
		item := interviewPayload(moved)
		resp = respondRescheduleResponse{Request: reschedulePayload(rr), Interview: &item}
		return h.emitRescheduleResponse(ctx, tx, rr)
	})
	if err != nil {
		h.writeScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *InterviewHandler) emitRescheduleResponse(ctx context.Context, tx pgx.Tx, rr model.RescheduleRequest) error {
	payload, err := json.Marshal(reschedulePayload(rr))
	if err != nil {
		return err
	}
	return h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "interview",
		AggregateID:   rr.InterviewID,
		EventType:     outbox.EventRescheduleResponded,
		Payload:       payload,
	})
}

// ListReschedules returns the consent history for one interview.
func (h *InterviewHandler) ListReschedules(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	interviewID := strings.TrimSpace(r.URL.Query().Get("interview_id"))
	if interviewID == "" {
		http.Error(w, "interview_id required", http.StatusBadRequest)
		return
	}
	entries, err := h.reschedules.ListForInterview(r.Context(), interviewID)
	if err != nil {
		h.logger.Error("reschedule list failed", "err", err, "interview_id", interviewID)
		http.Error(w, "failed to list reschedule requests", http.StatusInternalServerError)
		return
	}
	items := make([]rescheduleItem, 0, len(entries))
	for _, rr := range entries {
		items = append(items, reschedulePayload(rr))
	}
	writeJSON(w, http.StatusOK, items)
}
