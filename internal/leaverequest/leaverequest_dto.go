package leaverequest

type CreateLeaveRequestRequest struct {
	LeaveTypeID    string   `json:"leave_type_id" binding:"required,uuid"`
	StartDate      string   `json:"start_date" binding:"required"`
	EndDate        string   `json:"end_date" binding:"required"`
	DurationType   string   `json:"duration_type" binding:"omitempty,oneof=HALF_DAY FULL_DAY CUSTOM"`
	HalfDaySegment *string  `json:"half_day_segment" binding:"omitempty,oneof=FIRST_HALF SECOND_HALF"`
	Hours          *float64 `json:"hours"`
	Reason         *string  `json:"reason"`
}

type ReviewLeaveRequestRequest struct {
	Comment *string `json:"comment"`
}

type BulkReviewRequest struct {
	Action     string   `json:"action" binding:"required,oneof=approve reject"`
	RequestIDs []string `json:"request_ids" binding:"omitempty,dive,uuid"`
	EmployeeID string   `json:"employee_id" binding:"omitempty,uuid"`
	Year       int      `json:"year"`
	Month      int      `json:"month"`
	Comment    *string  `json:"comment"`
}

type LeaveRequestResponse struct {
	ID             string  `json:"id"`
	CompanyID      string  `json:"company_id"`
	EmployeeID     string  `json:"employee_id"`
	LeaveTypeID    string  `json:"leave_type_id"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	DurationType   string  `json:"duration_type"`
	HalfDaySegment *string `json:"half_day_segment,omitempty"`
	Hours          float64 `json:"hours"`
	Reason         *string `json:"reason,omitempty"`
	Status         string  `json:"status"`
	DecidedBy      *string `json:"decided_by,omitempty"`
	DecidedAt      *string `json:"decided_at,omitempty"`
}

type SkippedRequest struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

type BulkReviewResponse struct {
	UpdatedCount        int              `json:"updated_count"`
	UpdatedRequestIDs   []string         `json:"updated_request_ids"`
	EvaluatedRequestIDs []string         `json:"evaluated_request_ids"`
	Skipped             []SkippedRequest `json:"skipped"`
}
