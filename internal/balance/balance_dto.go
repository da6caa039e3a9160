package balance

type BalanceResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	LeaveTypeID  string  `json:"leave_type_id"`
	BalanceHours float64 `json:"balance_hours"`
	PendingHours float64 `json:"pending_hours"`
	BookedHours  float64 `json:"booked_hours"`
	AsOfDate     string  `json:"as_of_date"`
}
