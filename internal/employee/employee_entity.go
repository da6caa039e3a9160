package employee

import (
	"time"

	"github.com/google/uuid"
)

// Employee mirrors the columns this service reads from the shared employees
// table. The core HR service owns the full row; only identity and the
// reporting line matter here.
type Employee struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID  `gorm:"type:uuid;index"`
	ManagerID *uuid.UUID `gorm:"type:uuid;index"`
	FullName  string
	Email     string `gorm:"uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
