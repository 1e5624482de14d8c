package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/model"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/schederr"
)

func wantCode(t *testing.T, err error, code string) {
	t.Helper()
	var e *schederr.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected a typed rejection, got %v", err)
	}
	if e.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, e.Code, e.Message)
	}
}

func TestCanTransitionTable(t *testing.T) {
	cases := []struct {
		from, to model.InterviewStatus
		want     bool
	}{
		{model.StatusScheduled, model.StatusConfirmed, true},
		{model.StatusScheduled, model.StatusCancelled, true},
		{model.StatusScheduled, model.StatusNoShow, true},
		{model.StatusScheduled, model.StatusRescheduled, true},
		{model.StatusConfirmed, model.StatusCompleted, true},
		{model.StatusConfirmed, model.StatusScheduled, false},
		{model.StatusCompleted, model.StatusCancelled, false},
		{model.StatusCancelled, model.StatusScheduled, false},
		{model.StatusNoShow, model.StatusConfirmed, false},
		{model.StatusRescheduled, model.StatusCompleted, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestGuardConfirm(t *testing.T) {
	if err := GuardConfirm(model.StatusScheduled); err != nil {
		t.Fatalf("confirm from SCHEDULED should pass, got %v", err)
	}
	wantCode(t, GuardConfirm(model.StatusConfirmed), schederr.CodeInvalidTransition)
	wantCode(t, GuardConfirm(model.StatusCompleted), schederr.CodeAlreadyTerminal)
}

func TestGuardRescheduleLeadTime(t *testing.T) {
	scheduled := time.Date(2026, 9, 7, 14, 0, 0, 0, time.UTC)

	if err := GuardReschedule(model.StatusScheduled, scheduled.Add(-3*time.Hour), scheduled); err != nil {
		t.Fatalf("3 hours of notice should pass, got %v", err)
	}
	// Exactly the lead time is too late: the deadline itself is excluded.
	wantCode(t, GuardReschedule(model.StatusScheduled, scheduled.Add(-RescheduleLeadTime), scheduled), schederr.CodeTooLateToReschedule)
	wantCode(t, GuardReschedule(model.StatusConfirmed, scheduled.Add(-time.Hour), scheduled), schederr.CodeTooLateToReschedule)
	wantCode(t, GuardReschedule(model.StatusCancelled, scheduled.Add(-24*time.Hour), scheduled), schederr.CodeAlreadyTerminal)
}

func TestGuardComplete(t *testing.T) {
	scheduled := time.Date(2026, 9, 7, 14, 0, 0, 0, time.UTC)

	wantCode(t, GuardComplete(model.StatusConfirmed, scheduled.Add(-time.Minute), scheduled, 60), schederr.CodeNotStartedYet)
	// 20 minutes into a 60-minute interview is before the halfway mark.
	wantCode(t, GuardComplete(model.StatusConfirmed, scheduled.Add(20*time.Minute), scheduled, 60), schederr.CodeTooShortToComplete)
	if err := GuardComplete(model.StatusConfirmed, scheduled.Add(30*time.Minute), scheduled, 60); err != nil {
		t.Fatalf("halfway through should pass, got %v", err)
	}
	if err := GuardComplete(model.StatusScheduled, scheduled.Add(2*time.Hour), scheduled, 60); err != nil {
		t.Fatalf("completing an unconfirmed interview after the fact should pass, got %v", err)
	}
	wantCode(t, GuardComplete(model.StatusNoShow, scheduled.Add(time.Hour), scheduled, 60), schederr.CodeAlreadyTerminal)
}

func TestGuardNoShow(t *testing.T) {
	scheduled := time.Date(2026, 9, 7, 14, 0, 0, 0, time.UTC)

	wantCode(t, GuardNoShow(model.StatusConfirmed, scheduled.Add(-5*time.Minute), scheduled), schederr.CodeNoShowBeforeStart)
	if err := GuardNoShow(model.StatusConfirmed, scheduled, scheduled); err != nil {
		t.Fatalf("no-show at the scheduled time should pass, got %v", err)
	}
	wantCode(t, GuardNoShow(model.StatusCompleted, scheduled.Add(time.Hour), scheduled), schederr.CodeAlreadyTerminal)
}

func TestGuardCancelAndUpdateOnTerminal(t *testing.T) {
	for _, status := range []model.InterviewStatus{
		model.StatusCompleted, model.StatusCancelled, model.StatusNoShow, model.StatusRescheduled,
	} {
		wantCode(t, GuardCancel(status), schederr.CodeAlreadyTerminal)
		wantCode(t, GuardUpdate(status), schederr.CodeAlreadyTerminal)
	}
	if err := GuardCancel(model.StatusScheduled); err != nil {
		t.Fatalf("cancel from SCHEDULED should pass, got %v", err)
	}
	if err := GuardUpdate(model.StatusConfirmed); err != nil {
		t.Fatalf("update on CONFIRMED should pass, got %v", err)
	}
}
