package compoff

type GrantCompOffRequest struct {
	EmployeeID   string  `json:"employee_id" binding:"required,uuid"`
	WorkDate     string  `json:"work_date" binding:"required"`
	DurationType string  `json:"duration_type" binding:"required,oneof=HALF_DAY FULL_DAY"`
	Notes        *string `json:"notes"`
}

type RevokeCompOffRequest struct {
	Reason *string `json:"reason"`
}

type CompOffCreditResponse struct {
	ID             string  `json:"id"`
	EmployeeID     string  `json:"employee_id"`
	LeaveTypeID    string  `json:"leave_type_id"`
	WorkDate       string  `json:"work_date"`
	DurationType   string  `json:"duration_type"`
	CreditedHours  float64 `json:"credited_hours"`
	TimesheetHours float64 `json:"timesheet_hours"`
	Status         string  `json:"status"`
	ExpiresAt      string  `json:"expires_at"`
	CreatedBy      string  `json:"created_by"`
	Notes          *string `json:"notes,omitempty"`
}
