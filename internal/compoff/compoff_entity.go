package compoff

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusGranted = "GRANTED"
	StatusExpired = "EXPIRED"
	StatusRevoked = "REVOKED"
)

const (
	DurationHalfDay = "HALF_DAY"
	DurationFullDay = "FULL_DAY"
)

// ExpiryDays is how long a granted credit stays spendable after the work date.
const ExpiryDays = 30

// MaxHoursPerDate caps the total credited hours for one work date.
const MaxHoursPerDate = 8.0

type CompOffCredit struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_compoff_company_status"`
	EmployeeID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	LeaveTypeID    uuid.UUID  `gorm:"type:uuid;not null"`
	TimesheetID    *uuid.UUID `gorm:"type:uuid"`
	WorkDate       time.Time  `gorm:"type:date;not null;index"`
	DurationType   string     `gorm:"type:varchar(20);not null"`
	CreditedHours  float64    `gorm:"type:decimal(5,2);not null"`
	TimesheetHours float64    `gorm:"type:decimal(5,2);not null"`
	Status         string     `gorm:"type:varchar(20);not null;default:'GRANTED';index:idx_compoff_company_status"`
	ExpiresAt      time.Time  `gorm:"type:date;not null;index"`
	CreatedBy      uuid.UUID  `gorm:"type:uuid;not null"`
	Notes          *string    `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (CompOffCredit) TableName() string {
	return "comp_off_credits"
}

func hoursFor(durationType string) float64 {
	if durationType == DurationHalfDay {
		return 4
	}
	return 8
}
