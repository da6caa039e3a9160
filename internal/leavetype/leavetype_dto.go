package leavetype

type CreateLeaveTypeRequest struct {
	Code               string   `json:"code" binding:"required,alphanumunicode|uppercase"`
	Name               string   `json:"name" binding:"required"`
	Paid               bool     `json:"paid"`
	RequiresApproval   bool     `json:"requires_approval"`
	MaxPerRequestHours *float64 `json:"max_per_request_hours"`
}

type CreatePolicyRequest struct {
	AccrualRule      *string `json:"accrual_rule"`
	CarryForwardRule *string `json:"carry_forward_rule"`
}

type LeaveTypeResponse struct {
	ID                 string   `json:"id"`
	CompanyID          string   `json:"company_id"`
	Code               string   `json:"code"`
	Name               string   `json:"name"`
	Paid               bool     `json:"paid"`
	RequiresApproval   bool     `json:"requires_approval"`
	MaxPerRequestHours *float64 `json:"max_per_request_hours,omitempty"`
}

type LeavePolicyResponse struct {
	ID          string `json:"id"`
	CompanyID   string `json:"company_id"`
	LeaveTypeID string `json:"leave_type_id"`
}
