package events

import "time"

const CompOffLifecycleTopic = "timeoff.compoff.lifecycle.v1"

type CompOffGrantedEvent struct {
	EventType     string    `json:"event_type"`
	CreditID      string    `json:"credit_id"`
	CompanyID     string    `json:"company_id"`
	EmployeeID    string    `json:"employee_id"`
	WorkDate      string    `json:"work_date"`
	CreditedHours float64   `json:"credited_hours"`
	ExpiresAt     string    `json:"expires_at"`
	GrantedBy     string    `json:"granted_by"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type CompOffRevokedEvent struct {
	EventType  string    `json:"event_type"`
	CreditID   string    `json:"credit_id"`
	CompanyID  string    `json:"company_id"`
	EmployeeID string    `json:"employee_id"`
	ClawedBack float64   `json:"clawed_back_hours"`
	RevokedBy  string    `json:"revoked_by"`
	OccurredAt time.Time `json:"occurred_at"`
}
