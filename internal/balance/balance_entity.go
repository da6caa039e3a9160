package balance

import (
	"time"

	"github.com/google/uuid"
)

// LeaveBalance is the single source of truth for available hours. One row per
// (employee, leave type); every mutation goes through Apply + SaveHours inside
// a transaction holding the row lock.
type LeaveBalance struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID    uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_leave_balances_employee_type"`
	LeaveTypeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_leave_balances_employee_type"`
	BalanceHours float64   `gorm:"type:decimal(7,2);not null;default:0"`
	PendingHours float64   `gorm:"type:decimal(7,2);not null;default:0"`
	BookedHours  float64   `gorm:"type:decimal(7,2);not null;default:0"`
	AsOfDate     time.Time `gorm:"type:date;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (LeaveBalance) TableName() string {
	return "leave_balances"
}
