package leavetype

import (
	"time"

	"github.com/google/uuid"
)

// CompOffCode is the synthetic leave type created lazily the first time a
// compensatory credit is granted for a company.
const CompOffCode = "COMP_OFF"

type LeaveType struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_leave_types_company_code"`
	Code                string    `gorm:"type:varchar(30);not null;uniqueIndex:uq_leave_types_company_code"`
	Name                string    `gorm:"type:varchar(100);not null"`
	Paid                bool      `gorm:"not null;default:true"`
	RequiresApproval    bool      `gorm:"not null;default:true"`
	MaxPerRequestHours  *float64  `gorm:"type:decimal(6,2)"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (LeaveType) TableName() string {
	return "leave_types"
}

// LeavePolicy must exist for a type before requests of that type can be
// created. Rule payloads are opaque to this engine.
type LeavePolicy struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_leave_policies_company_type"`
	LeaveTypeID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_leave_policies_company_type"`
	AccrualRule      *string   `gorm:"type:jsonb"`
	CarryForwardRule *string   `gorm:"type:jsonb"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (LeavePolicy) TableName() string {
	return "leave_policies"
}
