package domain

// EnforceRequest is the tuple the policy engine decides on. The middleware
// fills it from the auth context plus the route's resource/action pair.
type EnforceRequest struct {
	EmployeeID string `json:"employee_id" binding:"required"`
	CompanyID  string `json:"company_id" binding:"required"`
	Resource   string `json:"resource" binding:"required"`
	Action     string `json:"action" binding:"required"`
}
