package calendar

import (
	"time"

	"github.com/google/uuid"
)

// CalendarDay is an explicit per-company override of the default working-day
// rule, keyed by date. A row can mark a weekday as a holiday or a weekend day
// as working.
type CalendarDay struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_calendar_company_date"`
	Date         time.Time `gorm:"type:date;not null;uniqueIndex:uq_calendar_company_date"`
	IsWorkingDay bool      `gorm:"not null"`
	Name         string    `gorm:"type:varchar(100)"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (CalendarDay) TableName() string {
	return "calendar_days"
}
