package timesheet

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Timesheet struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID      `gorm:"column:company_id;type:uuid;not null;index"`
	EmployeeID uuid.UUID      `gorm:"column:employee_id;type:uuid;not null;uniqueIndex:uq_timesheet_employee_date"`
	WorkDate   time.Time      `gorm:"column:work_date;type:date;not null;uniqueIndex:uq_timesheet_employee_date"`
	TotalHours float64        `gorm:"column:total_hours;type:decimal(5,2);not null"`
	Source     string         `gorm:"column:source;type:varchar(30);not null;default:MANUAL"`
	Notes      *string        `gorm:"column:notes;type:text"`
	CreatedAt  time.Time      `gorm:"column:created_at"`
	UpdatedAt  time.Time      `gorm:"column:updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Timesheet) TableName() string {
	return "timesheets"
}
