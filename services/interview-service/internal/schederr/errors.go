// Package schederr defines the typed failures surfaced by the scheduling
// engine. Every rejection carries a stable machine-readable code plus a
// human-readable message; callers must not retry conflicts or transition
// failures automatically.
package schederr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInvalidInput Kind = iota
	KindNotFound
	KindSchedulingConflict
	KindInvalidTransition
	KindUnauthorized
)

// Reason codes. These are part of the API contract; do not rename.
const (
	CodePastDate              = "PAST_DATE"
	CodeInvalidDuration       = "INVALID_DURATION"
	CodeOutsideWorkingHours   = "OUTSIDE_WORKING_HOURS"
	CodeDailyCapReached       = "DAILY_CAP_REACHED"
	CodeOverlapsExisting      = "OVERLAPS_EXISTING_INTERVIEW"
	CodeCandidateDoubleBooked = "CANDIDATE_DOUBLE_BOOKED"
	CodeAlreadyScheduled      = "INTERVIEW_ALREADY_SCHEDULED"
	CodeTooLateToReschedule   = "TOO_LATE_TO_RESCHEDULE"
	CodeTooShortToComplete    = "TOO_SHORT_TO_COMPLETE"
	CodeNotStartedYet         = "NOT_STARTED_YET"
	CodeNoShowBeforeStart     = "NO_SHOW_BEFORE_START"
	CodeAlreadyTerminal       = "ALREADY_TERMINAL"
	CodeInvalidTransition     = "INVALID_TRANSITION"
	CodeNotFound              = "NOT_FOUND"
	CodeInvalidInput          = "INVALID_INPUT"
	CodeUnauthorized          = "UNAUTHORIZED"
)

type Error struct {
	Kind        Kind
	Code        string
	Message     string
	ConflictIDs []string
}

func (e *Error) Error() string {
	if len(e.ConflictIDs) > 0 {
		return fmt.Sprintf("%s: %s (conflicting: %v)", e.Code, e.Message, e.ConflictIDs)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func Invalid(code, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Code: code, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(code, format string, args ...any) *Error {
	return &Error{Kind: KindSchedulingConflict, Code: code, Message: fmt.Sprintf(format, args...)}
}

func ConflictWith(code string, ids []string, format string, args ...any) *Error {
	return &Error{Kind: KindSchedulingConflict, Code: code, Message: fmt.Sprintf(format, args...), ConflictIDs: ids}
}

func Transition(code, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidTransition, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Code: CodeUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// As unwraps err into a *Error when possible.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// HTTPStatus maps an error kind to the status the handlers respond with.
func HTTPStatus(err error) int {
	e, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindSchedulingConflict:
		return http.StatusConflict
	case KindInvalidTransition:
		return http.StatusUnprocessableEntity
	case KindUnauthorized:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
