package outbox

// Event is the domain event envelope written to the outbox table.
// The Kafka topic name equals EventType (event per topic).
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// Event types emitted by the scheduling engine. Delivery is fire-and-forget:
// the row is written in the same transaction as the state change, and the
// publisher drains it after commit.
const (
	EventInterviewScheduled      = "interview.scheduled.v1"
	EventInterviewConfirmed      = "interview.confirmed.v1"
	EventInterviewRescheduled    = "interview.rescheduled.v1"
	EventInterviewCompleted      = "interview.completed.v1"
	EventInterviewCancelled      = "interview.cancelled.v1"
	EventInterviewNoShow         = "interview.no_show.v1"
	EventRescheduleRequested     = "interview.reschedule.requested.v1"
	EventRescheduleResponded     = "interview.reschedule.responded.v1"
	EventInterviewDetailsUpdated = "interview.details_updated.v1"
	EventTimeOffRequested        = "timeoff.requested.v1"
	EventTimeOffApproved         = "timeoff.approved.v1"
	EventTimeOffCancelled        = "timeoff.cancelled.v1"
)
