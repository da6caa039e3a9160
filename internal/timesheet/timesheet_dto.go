package timesheet

type RecordTimesheetRequest struct {
	EmployeeID string  `json:"employee_id" binding:"required,uuid"`
	WorkDate   string  `json:"work_date" binding:"required"`
	TotalHours float64 `json:"total_hours" binding:"required,gt=0"`
	Notes      *string `json:"notes"`
}

type TimesheetResponse struct {
	ID         string  `json:"id"`
	CompanyID  string  `json:"company_id"`
	EmployeeID string  `json:"employee_id"`
	WorkDate   string  `json:"work_date"`
	TotalHours float64 `json:"total_hours"`
	Source     string  `json:"source"`
	Notes      *string `json:"notes,omitempty"`
}
