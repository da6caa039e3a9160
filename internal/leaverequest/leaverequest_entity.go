package leaverequest

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
)

const (
	DurationHalfDay = "HALF_DAY"
	DurationFullDay = "FULL_DAY"
	DurationCustom  = "CUSTOM"
)

const (
	SegmentFirstHalf  = "FIRST_HALF"
	SegmentSecondHalf = "SECOND_HALF"
)

const HoursPerWorkingDay = 8.0

type LeaveRequest struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_leave_requests_company_status"`
	EmployeeID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_leave_requests_employee_dates"`
	LeaveTypeID    uuid.UUID  `gorm:"type:uuid;not null"`
	StartDate      time.Time  `gorm:"type:date;not null;index:idx_leave_requests_employee_dates"`
	EndDate        time.Time  `gorm:"type:date;not null;index:idx_leave_requests_employee_dates"`
	DurationType   string     `gorm:"type:varchar(20);not null;default:'FULL_DAY'"`
	HalfDaySegment *string    `gorm:"type:varchar(20)"`
	Hours          float64    `gorm:"type:decimal(6,2);not null"`
	Reason         *string    `gorm:"type:text"`
	Status         string     `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_leave_requests_company_status"`
	DecidedBy      *uuid.UUID `gorm:"type:uuid"`
	DecidedAt      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

const (
	SubjectLeaveRequest = "leave_request"

	DecisionPending  = "PENDING"
	DecisionApproved = "APPROVED"
	DecisionRejected = "REJECTED"
)

// Approval is the review row addressed to the requester's manager at creation
// time, updated in lockstep with the request's state.
type Approval struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;index"`
	SubjectType string    `gorm:"type:varchar(30);not null;default:'leave_request'"`
	SubjectID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ApproverID  uuid.UUID `gorm:"type:uuid;not null"`
	Decision    string    `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Comment     *string   `gorm:"type:text"`
	DecidedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Approval) TableName() string {
	return "approvals"
}
