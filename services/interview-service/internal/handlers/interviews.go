package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tanvir-ahmed/hirecal/libs/db"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/conflict"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/lifecycle"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/model"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/outbox"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/schederr"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/storage"
)

type InterviewHandler struct {
	deps        schedulingDeps
	reschedules *storage.RescheduleRepository
	outboxRepo  *outbox.Repository
	pool        *db.Pool
	logger      *slog.Logger
}

func NewInterviewHandler(
	workingHours *storage.WorkingHoursRepository,
	timeOff *storage.TimeOffRepository,
	interviews *storage.InterviewRepository,
	reschedules *storage.RescheduleRepository,
	outboxRepo *outbox.Repository,
	pool *db.Pool,
	logger *slog.Logger,
) *InterviewHandler {
	return &InterviewHandler{
		deps:        schedulingDeps{workingHours: workingHours, timeOff: timeOff, interviews: interviews},
		reschedules: reschedules,
		outboxRepo:  outboxRepo,
		pool:        pool,
		logger:      logger,
	}
}

type interviewItem struct {
	ID               string `json:"id"`
	JobApplyID       string `json:"job_apply_id"`
	RecruiterID      string `json:"recruiter_id"`
	CandidateID      string `json:"candidate_id"`
	ScheduledAt      string `json:"scheduled_at"`
	EndsAt           string `json:"ends_at"`
	DurationMinutes  int    `json:"duration_minutes"`
	InterviewType    string `json:"interview_type"`
	Location         string `json:"location,omitempty"`
	MeetingLink      string `json:"meeting_link,omitempty"`
	InterviewerName  string `json:"interviewer_name,omitempty"`
	InterviewerEmail string `json:"interviewer_email,omitempty"`
	Status           string `json:"status"`
	Round            int    `json:"round"`
	PreparationNotes string `json:"preparation_notes,omitempty"`
	Outcome          string `json:"outcome,omitempty"`
	OutcomeNotes     string `json:"outcome_notes,omitempty"`
	CancelReason     string `json:"cancel_reason,omitempty"`
	RescheduledTo    string `json:"rescheduled_to,omitempty"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

func interviewPayload(iv model.Interview) interviewItem {
	item := interviewItem{
		ID:               iv.ID,
		JobApplyID:       iv.JobApplyID,
		RecruiterID:      iv.RecruiterID,
		CandidateID:      iv.CandidateID,
		ScheduledAt:      iv.ScheduledAt.UTC().Format(time.RFC3339),
		EndsAt:           iv.EndsAt().UTC().Format(time.RFC3339),
		DurationMinutes:  iv.DurationMinutes,
		InterviewType:    string(iv.InterviewType),
		Location:         iv.Location,
		MeetingLink:      iv.MeetingLink,
		InterviewerName:  iv.InterviewerName,
		InterviewerEmail: iv.InterviewerEmail,
		Status:           string(iv.Status),
		Round:            iv.Round,
		PreparationNotes: iv.PreparationNotes,
		OutcomeNotes:     iv.OutcomeNotes,
		CancelReason:     iv.CancelReason,
		RescheduledTo:    iv.RescheduledTo,
		CreatedAt:        iv.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        iv.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if iv.Outcome != nil {
		item.Outcome = string(*iv.Outcome)
	}
	return item
}

// schedKey names the advisory lock for one participant-day. Locks are taken
// on both the recruiter and the candidate so two concurrent bookings that
// share either party serialize.
func schedKey(role, id string, day time.Time) string {
	return fmt.Sprintf("%s:%s:%s", role, id, day.UTC().Format("2006-01-02"))
}

// checkConflicts re-runs the detector against state visible to tx. Called
// with the participant-day locks already held.
func (h *InterviewHandler) checkConflicts(ctx context.Context, tx pgx.Tx, recruiterID, candidateID string, start time.Time, duration time.Duration, excludeID string) error {
	day, _ := dayBounds(start)
	cfg, free, existing, err := h.deps.dayContext(ctx, tx, recruiterID, day)
	if err != nil {
		return err
	}
	candidateBusy, err := h.deps.interviews.ListActiveByCandidate(ctx, tx, candidateID, start, start.Add(duration))
	if err != nil {
		return err
	}
	return conflict.Evaluate(conflict.Proposal{
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
}

func (h *InterviewHandler) emit(ctx context.Context, tx pgx.Tx, eventType string, iv model.Interview) error {
	payload, err := json.Marshal(interviewPayload(iv))
	if err != nil {
		return err
	}
	return h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "interview",
		AggregateID:   iv.ID,
		EventType:     eventType,
		Payload:       payload,
	})
}

type scheduleRequest struct {
	JobApplyID       string `json:"job_apply_id"`
	RecruiterID      string `json:"recruiter_id"`
	CandidateID      string `json:"candidate_id"`
	ScheduledAt      string `json:"scheduled_at"`
	DurationMinutes  int    `json:"duration_minutes"`
	InterviewType    string `json:"interview_type"`
	Location         string `json:"location"`
	MeetingLink      string `json:"meeting_link"`
	InterviewerName  string `json:"interviewer_name"`
	InterviewerEmail string `json:"interviewer_email"`
	PreparationNotes string `json:"preparation_notes"`
	Round            int    `json:"round"`
}

func (req *scheduleRequest) toModel() (model.Interview, error) {
	req.JobApplyID = strings.TrimSpace(req.JobApplyID)
	req.RecruiterID = strings.TrimSpace(req.RecruiterID)
	req.CandidateID = strings.TrimSpace(req.CandidateID)
	if req.JobApplyID == "" || req.RecruiterID == "" || req.CandidateID == "" {
		return model.Interview{}, schederr.Invalid(schederr.CodeInvalidInput, "job_apply_id, recruiter_id and candidate_id are required")
	}
	start, err := time.Parse(time.RFC3339, strings.TrimSpace(req.ScheduledAt))
	if err != nil {
		return model.Interview{}, schederr.Invalid(schederr.CodeInvalidInput, "scheduled_at must be RFC3339")
	}
	ivType, ok := model.ParseInterviewType(strings.TrimSpace(req.InterviewType))
	if !ok {
		return model.Interview{}, schederr.Invalid(schederr.CodeInvalidInput, "interview_type must be one of ONLINE, ONSITE, PHONE")
	}
	if req.Round < 0 {
		return model.Interview{}, schederr.Invalid(schederr.CodeInvalidInput, "round must be positive")
	}
	return model.Interview{
		JobApplyID:       req.JobApplyID,
		RecruiterID:      req.RecruiterID,
		CandidateID:      req.CandidateID,
		ScheduledAt:      start.UTC(),
		DurationMinutes:  req.DurationMinutes,
		InterviewType:    ivType,
		Location:         strings.TrimSpace(req.Location),
		MeetingLink:      strings.TrimSpace(req.MeetingLink),
		InterviewerName:  strings.TrimSpace(req.InterviewerName),
		InterviewerEmail: strings.TrimSpace(req.InterviewerEmail),
		PreparationNotes: req.PreparationNotes,
		Status:           model.StatusScheduled,
		Round:            req.Round,
	}, nil
}

// Schedule books an interview. The whole decision runs in one transaction:
// participant-day advisory locks, the one-active-per-application check, the
// conflict detector, the insert and the outbox event. The Idempotency-Key
// header makes retries replay the recorded outcome instead of re-deciding.
func (h *InterviewHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	iv, err := req.toModel()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))

	var (
		status int
		body   []byte
	)
	err = h.pool.WithinTx(r.Context(), func(tx pgx.Tx) error {
		ctx := r.Context()
		if idemKey != "" {
			rec, seen, err := h.deps.interviews.LockIdempotencyKey(ctx, tx, iv.RecruiterID, idemKey)
			if err != nil {
				return err
			}
			if seen {
				status, body = rec.StatusCode, rec.ResponsePayload
				return nil
			}
		}

		day, _ := dayBounds(iv.ScheduledAt)
		if err := h.deps.interviews.LockSchedulingKeys(ctx, tx,
			schedKey("recruiter", iv.RecruiterID, day),
			schedKey("candidate", iv.CandidateID, day),
		); err != nil {
			return err
		}

		decisionErr := h.decideSchedule(ctx, tx, &iv)
		if decisionErr != nil {
			st, payload, ok := marshalDomainError(decisionErr)
			if !ok || idemKey == "" {
				return decisionErr
			}
			// Commit so the retry replays the rejection instead of racing
			// the detector again.
			if err := h.deps.interviews.FinalizeIdempotency(ctx, tx, iv.RecruiterID, idemKey, "", st, payload); err != nil {
				return err
			}
			status, body = st, payload
			return nil
		}

		payload, err := json.Marshal(interviewPayload(iv))
		if err != nil {
			return err
		}
		if idemKey != "" {
			if err := h.deps.interviews.FinalizeIdempotency(ctx, tx, iv.RecruiterID, idemKey, iv.ID, http.StatusCreated, payload); err != nil {
				return err
			}
		}
		status, body = http.StatusCreated, payload
		return nil
	})
	if err != nil {
		h.writeScheduleError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// decideSchedule runs the checks and the insert with the locks held. On
// success iv is filled in with the stored row's id, round and timestamps.
func (h *InterviewHandler) decideSchedule(ctx context.Context, tx pgx.Tx, iv *model.Interview) error {
	activeID, exists, err := h.deps.interviews.ActiveForJobApply(ctx, tx, iv.JobApplyID)
	if err != nil {
		return err
	}
	if exists {
		return schederr.ConflictWith(schederr.CodeAlreadyScheduled, []string{activeID},
			"application already has an active interview")
	}

	duration := time.Duration(iv.DurationMinutes) * time.Minute
	if err := h.checkConflicts(ctx, tx, iv.RecruiterID, iv.CandidateID, iv.ScheduledAt, duration, ""); err != nil {
		return err
	}

	if iv.Round == 0 {
		latest, err := h.deps.interviews.LatestRoundForJobApply(ctx, tx, iv.JobApplyID)
		if err != nil {
			return err
		}
		iv.Round = latest + 1
	}

	id, err := h.deps.interviews.Create(ctx, tx, iv)
	if err != nil {
		return err
	}
	iv.ID = id
	stored, err := h.deps.interviews.Get(ctx, tx, id)
	if err != nil {
		return err
	}
	*iv = stored
	return h.emit(ctx, tx, outbox.EventInterviewScheduled, *iv)
}

// writeScheduleError also maps constraint violations raised by a lost race:
// the exclusion constraint on recruiter intervals and the partial unique
// index on active applications back them up at the storage layer.
func (h *InterviewHandler) writeScheduleError(w http.ResponseWriter, err error) {
	switch {
	case storage.IsConflict(err):
		writeDomainError(w, schederr.Conflict(schederr.CodeOverlapsExisting, "slot overlaps an existing interview"))
	case storage.IsUniqueViolation(err):
		writeDomainError(w, schederr.Conflict(schederr.CodeAlreadyScheduled, "application already has an active interview"))
	default:
		if _, ok := schederr.As(err); ok {
			writeDomainError(w, err)
			return
		}
		h.logger.Error("schedule failed", "err", err)
		http.Error(w, "failed to schedule interview", http.StatusInternalServerError)
	}
}

func (h *InterviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}
	iv, err := h.deps.interviews.Get(r.Context(), h.deps.interviews.Pool(), id)
	if err != nil {
		if storage.IsNotFound(err) {
			writeDomainError(w, schederr.NotFound("interview %s not found", id))
			return
		}
		h.logger.Error("interview get failed", "err", err)
		http.Error(w, "failed to load interview", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, interviewPayload(iv))
}

type actionRequest struct {
	InterviewID string `json:"interview_id"`
	// Outcome fields, complete only.
	Outcome      string `json:"outcome"`
	OutcomeNotes string `json:"outcome_notes"`
	// Cancel only.
	Reason string `json:"reason"`
}

// transition is the shared lifecycle path: load FOR UPDATE, authorize, run
// the guard, mutate, emit. do may return a fresh error to veto the change.
func (h *InterviewHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	interviewID string,
	authorize func(model.Interview) error,
	do func(ctx context.Context, tx pgx.Tx, iv model.Interview) (string, error),
) {
	var result model.Interview
	err := h.pool.WithinTx(r.Context(), func(tx pgx.Tx) error {
		ctx := r.Context()
		iv, err := h.deps.interviews.GetForUpdate(ctx, tx, interviewID)
		if err != nil {
			if storage.IsNotFound(err) {
				return schederr.NotFound("interview %s not found", interviewID)
			}
			return err
		}
		if err := authorize(iv); err != nil {
			return err
		}
		eventType, err := do(ctx, tx, iv)
		if err != nil {
			return err
		}
		result, err = h.deps.interviews.Get(ctx, tx, interviewID)
		if err != nil {
			return err
		}
		return h.emit(ctx, tx, eventType, result)
	})
	if err != nil {
		if _, ok := schederr.As(err); ok {
			writeDomainError(w, err)
			return
		}
		h.logger.Error("interview transition failed", "err", err, "interview_id", interviewID)
		http.Error(w, "failed to update interview", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, interviewPayload(result))
}

func decodeAction(w http.ResponseWriter, r *http.Request) (actionRequest, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return actionRequest{}, false
	}
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return actionRequest{}, false
	}
	req.InterviewID = strings.TrimSpace(req.InterviewID)
	if req.InterviewID == "" {
		http.Error(w, "interview_id required", http.StatusBadRequest)
		return actionRequest{}, false
	}
	return req, true
}

// Identity comes from gateway-forwarded headers. An admin identity may act
// for either party.
func actorRecruiter(r *http.Request) func(model.Interview) error {
	recruiterID := strings.TrimSpace(r.Header.Get("X-Recruiter-Id"))
	adminID := strings.TrimSpace(r.Header.Get("X-Admin-Id"))
	return func(iv model.Interview) error {
		if adminID != "" {
			return nil
		}
		if recruiterID == "" || recruiterID != iv.RecruiterID {
			return schederr.Unauthorized("only the owning recruiter may perform this action")
		}
		return nil
	}
}

func actorCandidate(r *http.Request) func(model.Interview) error {
	candidateID := strings.TrimSpace(r.Header.Get("X-Candidate-Id"))
	adminID := strings.TrimSpace(r.Header.Get("X-Admin-Id"))
	return func(iv model.Interview) error {
		if adminID != "" {
			return nil
		}
		if candidateID == "" || candidateID != iv.CandidateID {
			return schederr.Unauthorized("only the interviewed candidate may perform this action")
		}
		return nil
	}
}

func actorParticipant(r *http.Request) func(model.Interview) error {
	recruiter := actorRecruiter(r)
	candidate := actorCandidate(r)
	return func(iv model.Interview) error {
		if recruiter(iv) == nil || candidate(iv) == nil {
			return nil
		}
		return schederr.Unauthorized("only a participant may perform this action")
	}
}

func (h *InterviewHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAction(w, r)
	if !ok {
		return
	}
	h.transition(w, r, req.InterviewID, actorCandidate(r), func(ctx context.Context, tx pgx.Tx, iv model.Interview) (string, error) {
		if err := lifecycle.GuardConfirm(iv.Status); err != nil {
			return "", err
		}
		return outbox.EventInterviewConfirmed, h.deps.interviews.Confirm(ctx, tx, iv.ID)
	})
}

func (h *InterviewHandler) Complete(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAction(w, r)
	if !ok {
		return
	}
	outcome, okO := model.ParseOutcome(strings.TrimSpace(req.Outcome))
	if !okO {
		http.Error(w, "outcome must be one of PASS, FAIL, PENDING, NEEDS_SECOND_ROUND", http.StatusBadRequest)
		return
	}
	h.transition(w, r, req.InterviewID, actorRecruiter(r), func(ctx context.Context, tx pgx.Tx, iv model.Interview) (string, error) {
		if err := lifecycle.GuardComplete(iv.Status, time.Now().UTC(), iv.ScheduledAt, iv.DurationMinutes); err != nil {
			return "", err
		}
		return outbox.EventInterviewCompleted, h.deps.interviews.Complete(ctx, tx, iv.ID, outcome, req.OutcomeNotes)
	})
}

func (h *InterviewHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAction(w, r)
	if !ok {
		return
	}
	h.transition(w, r, req.InterviewID, actorParticipant(r), func(ctx context.Context, tx pgx.Tx, iv model.Interview) (string, error) {
		if err := lifecycle.GuardCancel(iv.Status); err != nil {
			return "", err
		}
		if err := h.deps.interviews.Cancel(ctx, tx, iv.ID, strings.TrimSpace(req.Reason)); err != nil {
			return "", err
		}
		return outbox.EventInterviewCancelled, h.reschedules.InvalidatePending(ctx, tx, iv.ID)
	})
}

func (h *InterviewHandler) NoShow(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAction(w, r)
	if !ok {
		return
	}
	h.transition(w, r, req.InterviewID, actorRecruiter(r), func(ctx context.Context, tx pgx.Tx, iv model.Interview) (string, error) {
		if err := lifecycle.GuardNoShow(iv.Status, time.Now().UTC(), iv.ScheduledAt); err != nil {
			return "", err
		}
		if err := h.deps.interviews.MarkNoShow(ctx, tx, iv.ID); err != nil {
			return "", err
		}
		return outbox.EventInterviewNoShow, h.reschedules.InvalidatePending(ctx, tx, iv.ID)
	})
}

type updateDetailsRequest struct {
	InterviewID      string `json:"interview_id"`
	Location         string `json:"location"`
	MeetingLink      string `json:"meeting_link"`
	InterviewerName  string `json:"interviewer_name"`
	InterviewerEmail string `json:"interviewer_email"`
	PreparationNotes string `json:"preparation_notes"`
}

// UpdateDetails edits logistics only. Time, duration and participants change
// through the reschedule path so the conflict rules always apply.
func (h *InterviewHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodPatch {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req updateDetailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.InterviewID = strings.TrimSpace(req.InterviewID)
	if req.InterviewID == "" {
		http.Error(w, "interview_id required", http.StatusBadRequest)
		return
	}
	h.transition(w, r, req.InterviewID, actorRecruiter(r), func(ctx context.Context, tx pgx.Tx, iv model.Interview) (string, error) {
		if err := lifecycle.GuardUpdate(iv.Status); err != nil {
			return "", err
		}
		return outbox.EventInterviewDetailsUpdated, h.deps.interviews.UpdateDetails(ctx, tx, iv.ID,
			strings.TrimSpace(req.Location),
			strings.TrimSpace(req.MeetingLink),
			strings.TrimSpace(req.InterviewerName),
			strings.TrimSpace(req.InterviewerEmail),
			req.PreparationNotes,
		)
	})
}
