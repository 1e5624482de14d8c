package model

import "time"

// InterviewStatus values mirror the interview_status enum in PostgreSQL.
type InterviewStatus string

const (
	StatusScheduled   InterviewStatus = "SCHEDULED"
	StatusConfirmed   InterviewStatus = "CONFIRMED"
	StatusCompleted   InterviewStatus = "COMPLETED"
	StatusCancelled   InterviewStatus = "CANCELLED"
	StatusNoShow      InterviewStatus = "NO_SHOW"
	StatusRescheduled InterviewStatus = "RESCHEDULED"
)

// IsTerminal reports whether no further lifecycle transition is permitted.
func (s InterviewStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow, StatusRescheduled:
		return true
	}
	return false
}

// ActiveStatuses are the states that occupy calendar time: they count toward
// daily caps and participate in overlap checks.
var ActiveStatuses = []InterviewStatus{StatusScheduled, StatusConfirmed}

type InterviewOutcome string

const (
	OutcomePass             InterviewOutcome = "PASS"
	OutcomeFail             InterviewOutcome = "FAIL"
	OutcomePending          InterviewOutcome = "PENDING"
	OutcomeNeedsSecondRound InterviewOutcome = "NEEDS_SECOND_ROUND"
)

func ParseOutcome(s string) (InterviewOutcome, bool) {
	switch InterviewOutcome(s) {
	case OutcomePass, OutcomeFail, OutcomePending, OutcomeNeedsSecondRound:
		return InterviewOutcome(s), true
	}
	return "", false
}

type InterviewType string

const (
	TypeOnline InterviewType = "ONLINE"
	TypeOnsite InterviewType = "ONSITE"
	TypePhone  InterviewType = "PHONE"
)

func ParseInterviewType(s string) (InterviewType, bool) {
	switch InterviewType(s) {
	case TypeOnline, TypeOnsite, TypePhone:
		return InterviewType(s), true
	}
	return "", false
}

// Interview is one scheduled interview row. Recruiter, candidate and job
// application IDs are opaque keys owned by external services.
type Interview struct {
	ID               string
	JobApplyID       string
	RecruiterID      string
	CandidateID      string
	ScheduledAt      time.Time
	DurationMinutes  int
	InterviewType    InterviewType
	Location         string
	MeetingLink      string
	InterviewerName  string
	InterviewerEmail string
	Status           InterviewStatus
	Round            int
	PreparationNotes string
	Outcome          *InterviewOutcome
	OutcomeNotes     string
	CancelReason     string
	RescheduledTo    string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// EndsAt is the scheduled end instant (half-open: the interview occupies
// [ScheduledAt, EndsAt)).
func (iv Interview) EndsAt() time.Time {
	return iv.ScheduledAt.Add(time.Duration(iv.DurationMinutes) * time.Minute)
}

type RescheduleParty string

const (
	ByRecruiter RescheduleParty = "RECRUITER"
	ByCandidate RescheduleParty = "CANDIDATE"
)

func ParseRescheduleParty(s string) (RescheduleParty, bool) {
	switch RescheduleParty(s) {
	case ByRecruiter, ByCandidate:
		return RescheduleParty(s), true
	}
	return "", false
}

type RescheduleStatus string

const (
	ReschedulePending  RescheduleStatus = "PENDING"
	RescheduleApproved RescheduleStatus = "APPROVED"
	RescheduleDeclined RescheduleStatus = "DECLINED"
	RescheduleInvalid  RescheduleStatus = "INVALIDATED"
)

// RescheduleRequest stages a proposed time change awaiting the counterpart's
// consent. When consent is not required the change applies immediately and no
// request row is written.
type RescheduleRequest struct {
	ID            string
	InterviewID   string
	RequestedBy   RescheduleParty
	NewDate       time.Time
	Reason        string
	ResponseNotes string
	Status        RescheduleStatus
	CreatedAt     time.Time
	RespondedAt   *time.Time
}
