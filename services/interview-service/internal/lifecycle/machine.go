// Package lifecycle is the interview state machine.
//
// Valid status graph:
//
//	SCHEDULED ──► CONFIRMED ──► COMPLETED
//	    │             │
//	    ├─────────────┼──► CANCELLED
//	    ├─────────────┼──► NO_SHOW
//	    └─────────────┴──► RESCHEDULED (old row; a new SCHEDULED row is created)
//
// COMPLETED, CANCELLED, NO_SHOW and RESCHEDULED are terminal.
package lifecycle

import (
	"time"

	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/model"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/schederr"
)

// RescheduleLeadTime is the minimum notice before the scheduled start for a
// reschedule request to be accepted.
const RescheduleLeadTime = 2 * time.Hour

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[model.InterviewStatus][]model.InterviewStatus{
	model.StatusScheduled: {model.StatusConfirmed, model.StatusCompleted, model.StatusCancelled, model.StatusNoShow, model.StatusRescheduled},
	model.StatusConfirmed: {model.StatusCompleted, model.StatusCancelled, model.StatusNoShow, model.StatusRescheduled},
	// terminal states have no outgoing transitions
}

// CanTransition reports whether moving from → to is permitted by the graph,
// ignoring timing guards.
func CanTransition(from, to model.InterviewStatus) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func ensureActive(status model.InterviewStatus) error {
	if status.IsTerminal() {
		return schederr.Transition(schederr.CodeAlreadyTerminal, "interview is already %s", status)
	}
	if status != model.StatusScheduled && status != model.StatusConfirmed {
		return schederr.Transition(schederr.CodeInvalidTransition, "unexpected status %s", status)
	}
	return nil
}

// GuardConfirm allows the candidate's confirmation only from SCHEDULED.
func GuardConfirm(status model.InterviewStatus) error {
	if status.IsTerminal() {
		return schederr.Transition(schederr.CodeAlreadyTerminal, "interview is already %s", status)
	}
	if status != model.StatusScheduled {
		return schederr.Transition(schederr.CodeInvalidTransition, "only a SCHEDULED interview can be confirmed (is %s)", status)
	}
	return nil
}

// GuardReschedule requires an active row and at least RescheduleLeadTime of
// notice before the scheduled start.
func GuardReschedule(status model.InterviewStatus, now, scheduledAt time.Time) error {
	if err := ensureActive(status); err != nil {
		return err
	}
	if !now.Before(scheduledAt.Add(-RescheduleLeadTime)) {
		return schederr.Transition(schederr.CodeTooLateToReschedule, "reschedule requires %s notice before the interview", RescheduleLeadTime)
	}
	return nil
}

// GuardComplete requires the interview to have started and run for at least
// half its scheduled length.
func GuardComplete(status model.InterviewStatus, now, scheduledAt time.Time, durationMinutes int) error {
	if err := ensureActive(status); err != nil {
		return err
	}
	if now.Before(scheduledAt) {
		return schederr.Transition(schederr.CodeNotStartedYet, "interview has not started yet")
	}
	half := time.Duration(durationMinutes) * time.Minute / 2
	if now.Before(scheduledAt.Add(half)) {
		return schederr.Transition(schederr.CodeTooShortToComplete, "interview must run at least %s before completion", half)
	}
	return nil
}

// GuardCancel allows cancellation only from an active state.
func GuardCancel(status model.InterviewStatus) error {
	return ensureActive(status)
}

// GuardNoShow forbids marking a no-show before the scheduled start.
func GuardNoShow(status model.InterviewStatus, now, scheduledAt time.Time) error {
	if err := ensureActive(status); err != nil {
		return err
	}
	if now.Before(scheduledAt) {
		return schederr.Transition(schederr.CodeNoShowBeforeStart, "cannot mark no-show before the scheduled time")
	}
	return nil
}

// GuardUpdate forbids edits to interviewer/location/meeting-link fields once
// the row is terminal.
func GuardUpdate(status model.InterviewStatus) error {
	if status.IsTerminal() {
		return schederr.Transition(schederr.CodeAlreadyTerminal, "interview is already %s", status)
	}
	return nil
}
