package model

import "time"

const (
	DefaultBufferMinutes       = 15
	DefaultMaxInterviewsPerDay = 8
)

// WorkingHoursConfig is one recruiter's recurring availability for a single
// weekday. Clock values are minutes since local midnight; a non-working day
// carries zero clocks. LunchStartMinute/LunchEndMinute are -1 when no lunch
// break is configured.
type WorkingHoursConfig struct {
	RecruiterID         string
	Weekday             time.Weekday
	IsWorkingDay        bool
	StartMinute         int
	EndMinute           int
	LunchStartMinute    int
	LunchEndMinute      int
	BufferMinutes       int
	MaxInterviewsPerDay int
	UpdatedAt           time.Time
}

// HasLunchBreak reports whether a lunch interval is configured.
func (c WorkingHoursConfig) HasLunchBreak() bool {
	return c.LunchStartMinute >= 0 && c.LunchEndMinute > c.LunchStartMinute
}

// NonWorkingDay returns the config used when a recruiter has no row for a
// weekday: absence of configuration means not bookable, never an error.
func NonWorkingDay(recruiterID string, weekday time.Weekday) WorkingHoursConfig {
	return WorkingHoursConfig{
		RecruiterID:         recruiterID,
		Weekday:             weekday,
		IsWorkingDay:        false,
		LunchStartMinute:    -1,
		LunchEndMinute:      -1,
		BufferMinutes:       DefaultBufferMinutes,
		MaxInterviewsPerDay: DefaultMaxInterviewsPerDay,
	}
}

type TimeOffType string

const (
	TimeOffVacation TimeOffType = "VACATION"
	TimeOffSick     TimeOffType = "SICK_LEAVE"
	TimeOffHoliday  TimeOffType = "HOLIDAY"
	TimeOffOther    TimeOffType = "OTHER"
)

func ParseTimeOffType(s string) (TimeOffType, bool) {
	switch TimeOffType(s) {
	case TimeOffVacation, TimeOffSick, TimeOffHoliday, TimeOffOther:
		return TimeOffType(s), true
	}
	return "", false
}

// TimeOff is a date-range exception requested by a recruiter. Only approved,
// non-cancelled entries suppress availability. Cancellation is soft; rows are
// never deleted while referenced.
type TimeOff struct {
	ID          string
	RecruiterID string
	StartDate   time.Time // midnight UTC of the first day off
	EndDate     time.Time // midnight UTC of the last day off (inclusive)
	Type        TimeOffType
	Reason      string
	IsApproved  bool
	ApprovedBy  string
	CancelledAt *time.Time
	CreatedAt   time.Time
}

// Suppresses reports whether this entry removes availability on the given day
// (midnight UTC).
func (t TimeOff) Suppresses(day time.Time) bool {
	if !t.IsApproved || t.CancelledAt != nil {
		return false
	}
	return !day.Before(t.StartDate) && !day.After(t.EndDate)
}
