package events

import "time"

const LeaveRequestDecidedTopic = "timeoff.leave.decision.v1"

// LeaveRequestDecidedEvent is emitted whenever a request reaches or leaves a
// terminal review state, including late rejection of an approved request.
type LeaveRequestDecidedEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id"`
	CompanyID   string    `json:"company_id"`
	EmployeeID  string    `json:"employee_id"`
	LeaveTypeID string    `json:"leave_type_id"`
	Status      string    `json:"status"`
	Hours       float64   `json:"hours"`
	DecidedBy   string    `json:"decided_by"`
	OccurredAt  time.Time `json:"occurred_at"`
}
