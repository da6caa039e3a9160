package tenant

import "gorm.io/gorm"

// Scope restricts a query to one company. Every read that crosses a handler
// boundary goes through it so a stray query cannot leak rows across tenants.
func Scope(companyID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("company_id = ?", companyID)
	}
}

// EmployeeScope narrows further to a single employee within the company.
func EmployeeScope(companyID, employeeID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("company_id = ? AND employee_id = ?", companyID, employeeID)
	}
}
